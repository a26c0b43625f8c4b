package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/fieldloop/internal/config"
	"github.com/example/fieldloop/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current work context from config.json",
		Long: `Display the current work context based on .fieldloop/config.json in the
current directory: role, project, current task, and the crew member's
training records.

This provides a focused view of "where am I right now?"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config from current directory
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			cfg, cfgErr := config.LoadConfig(cwd)
			if cfgErr != nil {
				// No config - show minimal status
				fmt.Println("fieldloop Status - No Context")
				fmt.Println()
				fmt.Println("No .fieldloop/config.json found in current directory.")
				fmt.Println("Run `fieldloop init --role CREW --crew <id> --project <id>` to set one up.")
				return nil //nolint:nilerr // Missing config is intentionally not an error
			}

			if config.IsSupervisorRole(cfg.Role) {
				fmt.Println("fieldloop Status - Supervisor Context")
			} else {
				fmt.Println("fieldloop Status - Crew Context")
			}
			fmt.Println()

			if cfg.ProjectID != "" {
				project, err := wire.CallbackService().GetProject(context.Background(), cfg.ProjectID)
				if err != nil {
					fmt.Printf("Project: %s (error loading: %v)\n", cfg.ProjectID, err)
				} else {
					fmt.Printf("Project: %s - %s [%s]\n", project.ID, project.Name, project.Status)
					if project.IntegrationProjectType == "callback" {
						fmt.Printf("   callback for %s\n", project.LinkedProjectID)
					}
				}
			} else {
				fmt.Println("Project: (none active)")
			}
			fmt.Println()

			if cfg.CurrentTask != "" {
				fmt.Printf("Task: %s\n", cfg.CurrentTask)
				fmt.Println()
			}

			if cfg.CrewMemberID != "" {
				fmt.Printf("Crew member: %s\n", cfg.CrewMemberID)
				records, err := wire.TrainingService().ListByCrewMember(context.Background(), cfg.CrewMemberID)
				if err == nil && len(records) > 0 {
					fmt.Println("Training:")
					for _, r := range records {
						fmt.Printf("  - %s [%s]\n", r.SopID, r.Status)
					}
				}
			}

			return nil
		},
	}
}
