package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/fieldloop/internal/cli"
	"github.com/example/fieldloop/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "fieldloop",
		Short:   "fieldloop - field knowledge feedback loop for construction crews",
		Version: version.String(),
		Long: `fieldloop turns SOP checklist work into structured observations, links
them to a confidence-scored knowledge base, and tracks crew training
and callback outcomes.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.SopCmd())
	rootCmd.AddCommand(cli.ObservationCmd())
	rootCmd.AddCommand(cli.KnowledgeCmd())
	rootCmd.AddCommand(cli.TrainingCmd())
	rootCmd.AddCommand(cli.CallbackCmd())
	rootCmd.AddCommand(cli.ActivityCmd())

	// Developer tools
	rootCmd.AddCommand(cli.DevCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
