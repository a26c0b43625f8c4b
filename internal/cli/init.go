package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/fieldloop/internal/config"
	"github.com/example/fieldloop/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var role, crewMemberID, projectID string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the fieldloop database",
		Long: `Initialize the fieldloop database at ~/.fieldloop/fieldloop.db with the
required schema, and optionally write a .fieldloop/config.json work
context in the current directory.

Examples:
  fieldloop init
  fieldloop init --role CREW --crew crew-7 --project PROJ-001`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}

			fmt.Printf("Initializing fieldloop database at %s\n", dbPath)

			if err := db.InitSchema(); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}

			fmt.Println("✓ Database initialized successfully")

			if role != "" || crewMemberID != "" || projectID != "" {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get working directory: %w", err)
				}
				cfg := &config.Config{
					Version:      "1",
					Role:         role,
					CrewMemberID: crewMemberID,
					ProjectID:    projectID,
				}
				if err := config.SaveConfig(cwd, cfg); err != nil {
					return err
				}
				fmt.Println("✓ Wrote .fieldloop/config.json")
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  fieldloop sop create \"Tile shower pan prep\" TILE-SHOWER-PAN")
			fmt.Println("  fieldloop status")

			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Role for config.json: CREW or SUPERVISOR")
	cmd.Flags().StringVar(&crewMemberID, "crew", "", "Crew member ID for config.json")
	cmd.Flags().StringVar(&projectID, "project", "", "Project ID for config.json")

	return cmd
}
