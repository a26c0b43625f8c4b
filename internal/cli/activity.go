package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/fieldloop/internal/wire"
)

// ActivityCmd returns the activity command
func ActivityCmd() *cobra.Command {
	var projectID string
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the project activity feed",
		Long: `Show the activity feed for a project, newest first.

Examples:
  fieldloop activity --project PROJ-001
  fieldloop activity --project PROJ-001 --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			unused := ""
			checkContext(&projectID, &unused, &unused)
			if projectID == "" {
				return fmt.Errorf("--project is required (or set a project in .fieldloop/config.json)")
			}

			entries, err := wire.ActivityService().ListActivity(ctx, projectID, limit)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No activity recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tEVENT\tENTITY\tSUMMARY")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.CreatedAt, e.EventType, e.EntityID, truncate(e.Summary, 60))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project ID")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries")

	return cmd
}
