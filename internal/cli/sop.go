package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/fieldloop/internal/ports/primary"
	"github.com/example/fieldloop/internal/wire"
)

// SopCmd returns the sop command
func SopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sop",
		Short: "Manage SOPs and their checklists",
		Long: `Create and manage Standard Operating Procedures.

SOPs are versioned: editing a live procedure means creating a new version,
which supersedes the current one and copies its checklist forward.`,
	}

	cmd.AddCommand(sopCreateCmd())
	cmd.AddCommand(sopListCmd())
	cmd.AddCommand(sopShowCmd())
	cmd.AddCommand(sopHistoryCmd())
	cmd.AddCommand(sopUpdateCmd())
	cmd.AddCommand(sopArchiveCmd())
	cmd.AddCommand(sopVersionCmd())
	cmd.AddCommand(sopChecklistCmd())

	return cmd
}

func sopCreateCmd() *cobra.Command {
	var description, category, trade, mode string
	var required int

	cmd := &cobra.Command{
		Use:   "create [sop-code] [title]",
		Short: "Create version 1 of a new SOP",
		Long: `Create a new SOP under a stable sop_code.

Examples:
  fieldloop sop create TILE-SHOWER-PAN "Shower Pan Installation"
  fieldloop sop create TILE-SHOWER-PAN "Shower Pan Installation" --mode detailed --required 5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			resp, err := wire.SopService().CreateSop(ctx, primary.CreateSopRequest{
				SopCode:                       args[0],
				Title:                         args[1],
				Description:                   description,
				Category:                      category,
				Trade:                         trade,
				ObservationMode:               mode,
				RequiredSupervisedCompletions: required,
			})
			if err != nil {
				return fmt.Errorf("failed to create SOP: %w", err)
			}

			fmt.Printf("✓ Created SOP %s: %s (v%d)\n", resp.SopID, resp.Sop.Title, resp.Sop.Version)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "SOP description")
	cmd.Flags().StringVar(&category, "category", "", "Work category (e.g. tile)")
	cmd.Flags().StringVar(&trade, "trade", "", "Trade (e.g. tile, plumbing)")
	cmd.Flags().StringVar(&mode, "mode", "", "Observation mode: standard or detailed")
	cmd.Flags().IntVar(&required, "required", 0, "Supervised completions required for certification (default 3)")

	return cmd
}

func sopListCmd() *cobra.Command {
	var status, category string
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List SOPs",
		Long:  `List SOP versions. By default only current versions are shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			sops, err := wire.SopService().ListSops(ctx, primary.SopFilters{
				Status:      status,
				Category:    category,
				CurrentOnly: !all,
			})
			if err != nil {
				return fmt.Errorf("failed to list SOPs: %w", err)
			}

			if len(sops) == 0 {
				fmt.Println("No SOPs found.")
				fmt.Println()
				fmt.Println("Create your first SOP:")
				fmt.Println("  fieldloop sop create TILE-SHOWER-PAN \"Shower Pan Installation\"")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCODE\tVER\tCURRENT\tSTATUS\tTITLE")
			for _, s := range sops {
				current := ""
				if s.IsCurrent {
					current = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n", s.ID, s.SopCode, s.Version, current, s.Status, s.Title)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (active, archived)")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().BoolVar(&all, "all", false, "Include superseded versions")

	return cmd
}

func sopShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [sop-id]",
		Short: "Show an SOP version and its checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := wire.SopService().GetSop(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s: %s\n", s.ID, s.Title)
			fmt.Printf("  Code:     %s (v%d)\n", s.SopCode, s.Version)
			fmt.Printf("  Status:   %s\n", s.Status)
			fmt.Printf("  Current:  %t\n", s.IsCurrent)
			fmt.Printf("  Mode:     %s\n", s.ObservationMode)
			fmt.Printf("  Required: %d supervised completions\n", s.RequiredSupervisedCompletions)
			if s.Category != "" {
				fmt.Printf("  Category: %s\n", s.Category)
			}
			if s.Trade != "" {
				fmt.Printf("  Trade:    %s\n", s.Trade)
			}
			if s.Description != "" {
				fmt.Printf("  %s\n", s.Description)
			}
			if s.VersionNotes != "" {
				fmt.Printf("  Version notes: %s\n", s.VersionNotes)
			}

			items, err := wire.SopService().GetChecklist(ctx, s.ID)
			if err != nil {
				return err
			}
			if len(items) > 0 {
				fmt.Println()
				fmt.Println("Checklist:")
				for _, item := range items {
					marker := " "
					if item.GeneratesObservation {
						marker = "●"
					}
					fmt.Printf("  %2d. %s %s", item.StepNumber, marker, item.Title)
					if item.GeneratesObservation {
						fmt.Printf(" (%s, %s)", item.KnowledgeType, item.TriggerTiming)
					}
					fmt.Println()
				}
			}
			return nil
		},
	}
}

func sopHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [sop-code]",
		Short: "Show every version of an SOP, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			versions, err := wire.SopService().GetVersionHistory(ctx, args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tVER\tCURRENT\tSUPERSEDED\tNOTES")
			for _, s := range versions {
				current := ""
				if s.IsCurrent {
					current = "*"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", s.ID, s.Version, current, s.SupersededDate, s.VersionNotes)
			}
			return w.Flush()
		},
	}
}

func sopUpdateCmd() *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "update [sop-id]",
		Short: "Update title or description of a current version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if title == "" && description == "" {
				return fmt.Errorf("nothing to update - pass --title or --description")
			}

			err := wire.SopService().UpdateSop(ctx, primary.UpdateSopRequest{
				SopID:       args[0],
				Title:       title,
				Description: description,
			})
			if err != nil {
				return err
			}

			fmt.Printf("✓ Updated SOP %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")

	return cmd
}

func sopArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive [sop-id]",
		Short: "Archive an SOP version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if err := wire.SopService().ArchiveSop(ctx, args[0]); err != nil {
				return err
			}

			fmt.Printf("✓ Archived SOP %s\n", args[0])
			return nil
		},
	}
}

func sopVersionCmd() *cobra.Command {
	var title, description, category, trade, mode, notes string
	var required int

	cmd := &cobra.Command{
		Use:   "version [sop-code]",
		Short: "Create the next version of an SOP",
		Long: `Supersede the current version of an sop_code and create the next one.

Unset flags inherit from the superseded version; the checklist is copied
forward. The old version stays readable for history.

Examples:
  fieldloop sop version TILE-SHOWER-PAN --notes "switched membrane product"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			resp, err := wire.SopService().CreateNewVersion(ctx, primary.CreateVersionRequest{
				SopCode:                       args[0],
				Title:                         title,
				Description:                   description,
				Category:                      category,
				Trade:                         trade,
				ObservationMode:               mode,
				RequiredSupervisedCompletions: required,
				VersionNotes:                  notes,
			})
			if err != nil {
				return err
			}

			fmt.Printf("✓ Created SOP %s: %s (v%d)\n", resp.SopID, resp.Sop.Title, resp.Sop.Version)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title (inherits when unset)")
	cmd.Flags().StringVar(&description, "description", "", "New description (inherits when unset)")
	cmd.Flags().StringVar(&category, "category", "", "New category (inherits when unset)")
	cmd.Flags().StringVar(&trade, "trade", "", "New trade (inherits when unset)")
	cmd.Flags().StringVar(&mode, "mode", "", "New observation mode (inherits when unset)")
	cmd.Flags().IntVar(&required, "required", 0, "New completion requirement (inherits when unset)")
	cmd.Flags().StringVar(&notes, "notes", "", "Version notes")

	return cmd
}

func sopChecklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Manage an SOP version's checklist",
	}

	cmd.AddCommand(checklistAddCmd())
	cmd.AddCommand(checklistInsertCmd())
	cmd.AddCommand(checklistRemoveCmd())
	cmd.AddCommand(checklistShowCmd())

	return cmd
}

func checklistItemFlags(cmd *cobra.Command, instructions, timing, knowledgeType, product, technique, toolMethod, combination *string, generates *bool) {
	cmd.Flags().StringVar(instructions, "instructions", "", "Step instructions")
	cmd.Flags().BoolVar(generates, "observe", false, "Generate an observation when checked")
	cmd.Flags().StringVar(timing, "timing", "", "Trigger timing: on_check or batch (default on_check)")
	cmd.Flags().StringVar(knowledgeType, "type", "", "Knowledge type for generated observations")
	cmd.Flags().StringVar(product, "product", "", "Catalog product ID")
	cmd.Flags().StringVar(technique, "technique", "", "Catalog technique ID")
	cmd.Flags().StringVar(toolMethod, "tool-method", "", "Catalog tool/method ID")
	cmd.Flags().StringVar(combination, "combination", "", "Catalog combination ID")
}

func checklistAddCmd() *cobra.Command {
	var instructions, timing, knowledgeType, product, technique, toolMethod, combination string
	var generates bool

	cmd := &cobra.Command{
		Use:   "add [sop-id] [title]",
		Short: "Append a checklist item at the end",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			item, err := wire.SopService().AddChecklistItem(ctx, primary.AddChecklistItemRequest{
				SopID:                args[0],
				Title:                args[1],
				Instructions:         instructions,
				GeneratesObservation: generates,
				TriggerTiming:        timing,
				KnowledgeType:        knowledgeType,
				ProductID:            product,
				TechniqueID:          technique,
				ToolMethodID:         toolMethod,
				CombinationID:        combination,
			})
			if err != nil {
				return err
			}

			fmt.Printf("✓ Added step %d: %s\n", item.StepNumber, item.Title)
			return nil
		},
	}

	checklistItemFlags(cmd, &instructions, &timing, &knowledgeType, &product, &technique, &toolMethod, &combination, &generates)
	return cmd
}

func checklistInsertCmd() *cobra.Command {
	var instructions, timing, knowledgeType, product, technique, toolMethod, combination string
	var generates bool
	var after int

	cmd := &cobra.Command{
		Use:   "insert [sop-id] [title]",
		Short: "Insert a checklist item after a step, shifting later steps",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			item, err := wire.SopService().InsertChecklistItem(ctx, primary.InsertChecklistItemRequest{
				AddChecklistItemRequest: primary.AddChecklistItemRequest{
					SopID:                args[0],
					Title:                args[1],
					Instructions:         instructions,
					GeneratesObservation: generates,
					TriggerTiming:        timing,
					KnowledgeType:        knowledgeType,
					ProductID:            product,
					TechniqueID:          technique,
					ToolMethodID:         toolMethod,
					CombinationID:        combination,
				},
				AfterStep: after,
			})
			if err != nil {
				return err
			}

			fmt.Printf("✓ Inserted step %d: %s\n", item.StepNumber, item.Title)
			return nil
		},
	}

	checklistItemFlags(cmd, &instructions, &timing, &knowledgeType, &product, &technique, &toolMethod, &combination, &generates)
	cmd.Flags().IntVar(&after, "after", 0, "Insert after this step (0 inserts at the top)")
	return cmd
}

func checklistRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [item-id]",
		Short: "Remove a checklist item and close the gap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if err := wire.SopService().RemoveChecklistItem(ctx, args[0]); err != nil {
				return err
			}

			fmt.Printf("✓ Removed checklist item %s\n", args[0])
			return nil
		},
	}
}

func checklistShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [sop-id]",
		Short: "Show an SOP version's checklist in step order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			items, err := wire.SopService().GetChecklist(ctx, args[0])
			if err != nil {
				return err
			}

			if len(items) == 0 {
				fmt.Println("Checklist is empty.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tID\tOBSERVE\tTIMING\tTITLE")
			for _, item := range items {
				observe := ""
				if item.GeneratesObservation {
					observe = "yes"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", item.StepNumber, item.ID, observe, item.TriggerTiming, item.Title)
			}
			return w.Flush()
		},
	}
}
