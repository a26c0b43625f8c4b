package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/fieldloop/internal/config"
	"github.com/example/fieldloop/internal/ctxutil"
	"github.com/example/fieldloop/internal/ports/primary"
	"github.com/example/fieldloop/internal/wire"
)

// ObservationCmd returns the observation command
func ObservationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "observation",
		Aliases: []string{"obs"},
		Short:   "Capture and review field observations",
		Long: `The observation trigger pipeline.

Checking an observation-generating checklist item produces either an
immediate confirmation prompt or a queued batch draft for end-of-task
review. Observations are immutable once confirmed.`,
	}

	cmd.AddCommand(observationCheckCmd())
	cmd.AddCommand(observationConfirmCmd())
	cmd.AddCommand(observationBatchCmd())
	cmd.AddCommand(observationShowCmd())
	cmd.AddCommand(observationListCmd())

	return cmd
}

// checkContext pulls project/task/crew defaults from .fieldloop/config.json
// so field commands stay short. Flags win over config.
func checkContext(projectID, taskID, crewID *string) {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		return
	}
	if *projectID == "" {
		*projectID = cfg.ProjectID
	}
	if *taskID == "" {
		*taskID = cfg.CurrentTask
	}
	if *crewID == "" {
		*crewID = cfg.CrewMemberID
	}
}

func observationCheckCmd() *cobra.Command {
	var projectID, taskID, crewID, workCategory, trade, stage string

	cmd := &cobra.Command{
		Use:   "check [checklist-item-id]",
		Short: "Report a checklist item as checked",
		Long: `Report a checklist-item check event and see the trigger outcome.

Outcomes:
  no_observation     the item is silent, nothing else to do
  immediate_confirm  confirm now with 'fieldloop observation confirm'
  queued_batch       a draft was queued for end-of-task batch review`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checkContext(&projectID, &taskID, &crewID)
			ctx := ctxutil.WithActorID(context.Background(), crewID)

			resp, err := wire.ObservationService().HandleChecklistCheck(ctx, primary.ChecklistCheckRequest{
				ChecklistItemID: args[0],
				TaskID:          taskID,
				ProjectID:       projectID,
				CrewMemberID:    crewID,
				WorkCategory:    workCategory,
				Trade:           trade,
				Stage:           stage,
			})
			if err != nil {
				return err
			}

			switch resp.Outcome {
			case "no_observation":
				fmt.Println("✓ Checked. No observation required.")
			case "immediate_confirm":
				fmt.Println("Observation ready to confirm:")
				printDraft(resp.Draft)
				fmt.Println()
				fmt.Printf("Confirm with: fieldloop observation confirm %s\n", args[0])
			case "queued_batch":
				fmt.Printf("✓ Checked. Draft queued for batch review (%s).\n", resp.PendingID)
			}

			if crewID != "" && !resp.CrewCertified {
				fmt.Println("  note: crew member is not certified for this SOP")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project ID (defaults from config)")
	cmd.Flags().StringVar(&taskID, "task", "", "Task ID (defaults from config)")
	cmd.Flags().StringVar(&crewID, "crew", "", "Crew member ID (defaults from config)")
	cmd.Flags().StringVar(&workCategory, "category", "", "Work category context")
	cmd.Flags().StringVar(&trade, "trade", "", "Trade context")
	cmd.Flags().StringVar(&stage, "stage", "", "Project stage context")

	return cmd
}

func observationConfirmCmd() *cobra.Command {
	var projectID, taskID, crewID, workCategory, trade, stage string
	var notes, deviationNotes string
	var deviated bool

	cmd := &cobra.Command{
		Use:   "confirm [checklist-item-id]",
		Short: "Confirm an immediate observation for a checklist item",
		Long: `Confirm the observation drafted by checking an on_check item.

The draft is rebuilt from the checklist template, so confirm can run any
time after the check.

Examples:
  fieldloop observation confirm item-123 --notes "membrane cured slower than spec"
  fieldloop observation confirm item-123 --deviated --deviation-notes "substituted sealant"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checkContext(&projectID, &taskID, &crewID)
			ctx := ctxutil.WithActorID(context.Background(), crewID)

			check, err := wire.ObservationService().HandleChecklistCheck(ctx, primary.ChecklistCheckRequest{
				ChecklistItemID: args[0],
				TaskID:          taskID,
				ProjectID:       projectID,
				CrewMemberID:    crewID,
				WorkCategory:    workCategory,
				Trade:           trade,
				Stage:           stage,
			})
			if err != nil {
				return err
			}
			if check.Draft == nil {
				return fmt.Errorf("checklist item %s does not produce an immediate observation (outcome: %s)", args[0], check.Outcome)
			}

			resp, err := wire.ObservationService().ConfirmObservation(ctx, primary.ConfirmObservationRequest{
				Draft:          *check.Draft,
				Notes:          notes,
				Deviated:       deviated,
				DeviationNotes: deviationNotes,
			})
			if err != nil {
				return err
			}

			fmt.Printf("✓ Captured observation %s (%s)\n", resp.ObservationID, resp.Observation.KnowledgeType)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project ID (defaults from config)")
	cmd.Flags().StringVar(&taskID, "task", "", "Task ID (defaults from config)")
	cmd.Flags().StringVar(&crewID, "crew", "", "Crew member ID (defaults from config)")
	cmd.Flags().StringVar(&workCategory, "category", "", "Work category context")
	cmd.Flags().StringVar(&trade, "trade", "", "Trade context")
	cmd.Flags().StringVar(&stage, "stage", "", "Project stage context")
	cmd.Flags().StringVar(&notes, "notes", "", "Observation notes")
	cmd.Flags().BoolVar(&deviated, "deviated", false, "The crew deviated from the SOP")
	cmd.Flags().StringVar(&deviationNotes, "deviation-notes", "", "What the deviation was")

	return cmd
}

func observationBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Review queued batch observation drafts",
	}

	cmd.AddCommand(batchListCmd())
	cmd.AddCommand(batchConfirmCmd())
	cmd.AddCommand(batchConfirmAllCmd())
	cmd.AddCommand(batchSkipCmd())
	cmd.AddCommand(batchClearCmd())

	return cmd
}

func batchListCmd() *cobra.Command {
	var taskID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a task's pending drafts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			var unused string
			checkContext(&unused, &taskID, &unused)
			if taskID == "" {
				return fmt.Errorf("task ID is required - pass --task or set it in config")
			}

			pending, err := wire.ObservationService().ListPendingBatch(ctx, taskID)
			if err != nil {
				return err
			}

			if len(pending) == 0 {
				fmt.Printf("No pending drafts for task %s.\n", taskID)
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tITEM\tCREW\tTYPE")
			for _, p := range pending {
				knowledgeType := ""
				if p.Draft != nil {
					knowledgeType = p.Draft.KnowledgeType
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.ChecklistItemID, p.CrewMemberID, knowledgeType)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&taskID, "task", "", "Task ID (defaults from config)")
	return cmd
}

func batchConfirmCmd() *cobra.Command {
	var notes, deviationNotes string
	var deviated bool

	cmd := &cobra.Command{
		Use:   "confirm [pending-id]",
		Short: "Confirm one pending draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			resp, err := wire.ObservationService().ConfirmBatchItem(ctx, primary.ConfirmBatchItemRequest{
				PendingID:      args[0],
				Notes:          notes,
				Deviated:       deviated,
				DeviationNotes: deviationNotes,
			})
			if err != nil {
				return err
			}

			fmt.Printf("✓ Captured observation %s\n", resp.ObservationID)
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "Observation notes")
	cmd.Flags().BoolVar(&deviated, "deviated", false, "The crew deviated from the SOP")
	cmd.Flags().StringVar(&deviationNotes, "deviation-notes", "", "What the deviation was")

	return cmd
}

func batchConfirmAllCmd() *cobra.Command {
	var taskID string

	cmd := &cobra.Command{
		Use:   "confirm-all",
		Short: "Confirm every pending draft for a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			var unused string
			checkContext(&unused, &taskID, &unused)
			if taskID == "" {
				return fmt.Errorf("task ID is required - pass --task or set it in config")
			}

			summary, err := wire.ObservationService().ConfirmAllBatch(ctx, taskID)
			if err != nil {
				return err
			}

			fmt.Printf("✓ Confirmed %d observations for task %s\n", summary.Confirmed, taskID)
			if summary.Failed > 0 {
				fmt.Printf("⚠ %d drafts failed:\n", summary.Failed)
				for _, msg := range summary.Errors {
					fmt.Printf("  %s\n", msg)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&taskID, "task", "", "Task ID (defaults from config)")
	return cmd
}

func batchSkipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skip [pending-id]",
		Short: "Skip a pending draft without creating an observation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if err := wire.ObservationService().SkipBatchItem(ctx, args[0]); err != nil {
				return err
			}

			fmt.Printf("✓ Skipped draft %s\n", args[0])
			return nil
		},
	}
}

func batchClearCmd() *cobra.Command {
	var taskID string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete confirmed and skipped drafts for a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			var unused string
			checkContext(&unused, &taskID, &unused)
			if taskID == "" {
				return fmt.Errorf("task ID is required - pass --task or set it in config")
			}

			count, err := wire.ObservationService().ClearProcessedBatch(ctx, taskID)
			if err != nil {
				return err
			}

			fmt.Printf("✓ Cleared %d processed drafts for task %s\n", count, taskID)
			return nil
		},
	}

	cmd.Flags().StringVar(&taskID, "task", "", "Task ID (defaults from config)")
	return cmd
}

func observationShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [observation-id]",
		Short: "Show an observation and its knowledge links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			obs, err := wire.ObservationService().GetObservation(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s (%s, captured %s)\n", obs.ID, obs.KnowledgeType, obs.CaptureMethod)
			if obs.ProjectID != "" {
				fmt.Printf("  Project: %s\n", obs.ProjectID)
			}
			if obs.TaskID != "" {
				fmt.Printf("  Task:    %s\n", obs.TaskID)
			}
			if obs.SopID != "" {
				fmt.Printf("  SOP:     %s\n", obs.SopID)
			}
			if obs.ProductID != "" {
				fmt.Printf("  Product: %s\n", obs.ProductID)
			}
			if obs.TechniqueID != "" {
				fmt.Printf("  Technique: %s\n", obs.TechniqueID)
			}
			if obs.Deviated {
				fmt.Printf("  Deviated: %s\n", obs.DeviationNotes)
			}
			if obs.Notes != "" {
				fmt.Printf("  Notes: %s\n", obs.Notes)
			}

			links, err := wire.LinkerService().GetObservationContext(ctx, obs.ID)
			if err != nil {
				return err
			}
			if len(links) > 0 {
				fmt.Println()
				fmt.Println("Knowledge links:")
				for _, link := range links {
					confidence := ""
					if link.LinkConfidence != nil {
						confidence = fmt.Sprintf(" (%d%%)", *link.LinkConfidence)
					}
					fmt.Printf("  %s %s%s\n", link.KnowledgeItemID, link.LinkType, confidence)
				}
			}
			return nil
		},
	}
}

func observationListCmd() *cobra.Command {
	var projectID, taskID, knowledgeType string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List observations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			observations, err := wire.ObservationService().ListObservations(ctx, primary.ObservationFilters{
				ProjectID:     projectID,
				TaskID:        taskID,
				KnowledgeType: knowledgeType,
				Limit:         limit,
			})
			if err != nil {
				return err
			}

			if len(observations) == 0 {
				fmt.Println("No observations found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPROJECT\tTYPE\tCAPTURE\tNOTES")
			for _, obs := range observations {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", obs.ID, obs.ProjectID, obs.KnowledgeType, obs.CaptureMethod, truncate(obs.Notes, 50))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Filter by project")
	cmd.Flags().StringVar(&taskID, "task", "", "Filter by task")
	cmd.Flags().StringVar(&knowledgeType, "type", "", "Filter by knowledge type")
	cmd.Flags().IntVar(&limit, "limit", 0, "Limit results")

	return cmd
}

func printDraft(draft *primary.ObservationDraft) {
	fmt.Printf("  Type:    %s\n", draft.KnowledgeType)
	if draft.ProductID != "" {
		fmt.Printf("  Product: %s\n", draft.ProductID)
	}
	if draft.TechniqueID != "" {
		fmt.Printf("  Technique: %s\n", draft.TechniqueID)
	}
	if draft.ToolMethodID != "" {
		fmt.Printf("  Tool/method: %s\n", draft.ToolMethodID)
	}
	if draft.PhotoRequired || draft.NotesRequired || draft.ConditionRequired {
		fmt.Printf("  Required: photo=%t notes=%t condition=%t\n",
			draft.PhotoRequired, draft.NotesRequired, draft.ConditionRequired)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
