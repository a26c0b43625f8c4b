package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/fieldloop/internal/db"
)

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development utilities",
		Long: `Development utilities for working with the fieldloop dev database.

These commands require FIELDLOOP_DB_PATH to be set so that fixture data
never lands in the production database.`,
	}

	cmd.AddCommand(devResetCmd())
	return cmd
}

func devResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset dev database with fresh fixtures",
		Long: `Delete the dev database and recreate it with comprehensive fixture data.

This command:
1. Deletes the existing dev database file
2. Creates a fresh database with the current schema
3. Seeds fixture data for development

Safety: requires FIELDLOOP_DB_PATH to be set, to prevent accidental reset
of the production database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := os.Getenv("FIELDLOOP_DB_PATH")
			if dbPath == "" {
				return fmt.Errorf("FIELDLOOP_DB_PATH not set\n\nThis safety check prevents accidental reset of your production database")
			}

			// Confirmation unless --force
			if !force {
				fmt.Printf("This will delete and recreate: %s\n", dbPath)
				fmt.Print("Continue? [y/N] ")
				var response string
				fmt.Scanln(&response)
				if response != "y" && response != "Y" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			// Close any existing DB connection
			db.Close()

			if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to delete database: %w", err)
			}
			fmt.Printf("✓ Deleted %s\n", dbPath)

			database, err := db.GetDB()
			if err != nil {
				return fmt.Errorf("failed to create database: %w", err)
			}
			fmt.Println("✓ Created fresh database with schema")

			if err := db.SeedFixtures(database); err != nil {
				return fmt.Errorf("failed to seed fixtures: %w", err)
			}
			fmt.Println("✓ Seeded fixture data")

			fmt.Println("\nDev database reset complete!")
			fmt.Println("\nSeeded entities:")
			fmt.Println("  - 3 projects (one callback)")
			fmt.Println("  - 2 SOPs, 5 checklist items")
			fmt.Println("  - 3 knowledge items, 2 observations, 1 link")
			fmt.Println("  - 1 training record with 3 supervised completions")

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}
