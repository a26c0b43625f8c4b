package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/fieldloop/internal/ports/primary"
	"github.com/example/fieldloop/internal/wire"
)

// CallbackCmd returns the callback command
func CallbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "callback",
		Short: "Manage callback projects and outcome propagation",
		Long: `Remedial work that corrects an earlier project.

A callback project clones the original and links back to it. Propagation
annotates the original project's observations whose outcome recurred on
the callback, so they stop reading as clean successes.`,
	}

	cmd.AddCommand(callbackCreateCmd())
	cmd.AddCommand(callbackPropagateCmd())
	cmd.AddCommand(projectCmd())

	return cmd
}

func callbackCreateCmd() *cobra.Command {
	var reason, name string

	cmd := &cobra.Command{
		Use:   "create [original-project-id]",
		Short: "Create a callback project from an original project",
		Long: `Create a callback project from an original project.

Examples:
  fieldloop callback create PROJ-001 --reason "shower pan leak at drain"
  fieldloop callback create PROJ-001 --reason "grout haze" --name "Maple St rework"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			project, err := wire.CallbackService().CreateCallbackProject(ctx, primary.CreateCallbackRequest{
				OriginalProjectID: args[0],
				Reason:            reason,
				Name:              name,
			})
			if err != nil {
				return err
			}

			fmt.Printf("✓ Created callback project %s linked to %s\n", project.ID, project.LinkedProjectID)
			fmt.Printf("Run 'fieldloop callback propagate %s' after capturing observations.\n", project.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Why the callback happened (required)")
	cmd.Flags().StringVar(&name, "name", "", "Project name (defaults to original name + \" (callback)\")")

	return cmd
}

func callbackPropagateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "propagate [callback-project-id]",
		Short: "Annotate original observations matched by callback observations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			report, err := wire.CallbackService().PropagateCallbackOutcomes(ctx, args[0])
			if err != nil {
				return err
			}

			if report.Annotated == 0 {
				fmt.Printf("No observations on %s matched %s.\n", report.OriginalProjectID, report.CallbackProjectID)
				return nil
			}
			fmt.Printf("✓ Annotated %d observations on %s\n", report.Annotated, report.OriginalProjectID)
			return nil
		},
	}
}

func projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create [name]",
		Short: "Create a standard project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			project, err := wire.CallbackService().CreateProject(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("✓ Created project %s: %s\n", project.ID, project.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show [project-id]",
		Short: "Show a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			project, err := wire.CallbackService().GetProject(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s: %s\n", project.ID, project.Name)
			fmt.Printf("  Type:   %s\n", project.IntegrationProjectType)
			fmt.Printf("  Status: %s\n", project.Status)
			if project.LinkedProjectID != "" {
				fmt.Printf("  Linked: %s\n", project.LinkedProjectID)
			}
			if project.CallbackReason != "" {
				fmt.Printf("  Reason: %s\n", project.CallbackReason)
			}
			if project.Budget > 0 {
				fmt.Printf("  Budget: %.2f\n", project.Budget)
			}
			return nil
		},
	})

	return cmd
}
