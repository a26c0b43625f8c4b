package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/fieldloop/internal/ctxutil"
	"github.com/example/fieldloop/internal/ports/primary"
	"github.com/example/fieldloop/internal/wire"
)

// TrainingCmd returns the training command
func TrainingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "training",
		Short: "Track SOP training and certification",
		Long: `Per-crew, per-SOP training records.

Supervised completions promote a record to review_ready once the SOP's
requirement is met. Certification is always a manual supervisor action,
and an uncertified crew member is never blocked from working.`,
	}

	cmd.AddCommand(trainingShowCmd())
	cmd.AddCommand(trainingCompleteCmd())
	cmd.AddCommand(trainingReviewCmd())
	cmd.AddCommand(trainingCertifyCmd())
	cmd.AddCommand(trainingListCmd())

	return cmd
}

func trainingShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [crew-member-id] [sop-id]",
		Short: "Show a training record, creating it if missing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			record, err := wire.TrainingService().GetOrCreate(ctx, args[0], args[1])
			if err != nil {
				return err
			}

			printTraining(record)
			return nil
		},
	}
}

func trainingCompleteCmd() *cobra.Command {
	var supervisedBy, taskID, notes string

	cmd := &cobra.Command{
		Use:   "complete [crew-member-id] [sop-id]",
		Short: "Record a supervised SOP completion",
		Long: `Record a supervised SOP completion.

Examples:
  fieldloop training complete crew-7 SOP-001 --by sup-2
  fieldloop training complete crew-7 SOP-001 --by sup-2 --task task-14 --notes "clean pan slope"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxutil.WithActorID(context.Background(), supervisedBy)

			record, err := wire.TrainingService().RecordSupervisedCompletion(ctx, primary.SupervisedCompletionRequest{
				CrewMemberID: args[0],
				SopID:        args[1],
				SupervisedBy: supervisedBy,
				TaskID:       taskID,
				Notes:        notes,
			})
			if err != nil {
				return err
			}

			fmt.Printf("✓ Recorded completion %d for %s on %s (%s)\n",
				len(record.SupervisedCompletions), record.CrewMemberID, record.SopID, record.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&supervisedBy, "by", "", "Supervising crew member (required)")
	cmd.Flags().StringVar(&taskID, "task", "", "Task the completion happened on")
	cmd.Flags().StringVar(&notes, "notes", "", "Completion notes")

	return cmd
}

func trainingReviewCmd() *cobra.Command {
	var score int
	var passed bool
	var reviewedBy string

	cmd := &cobra.Command{
		Use:   "review [crew-member-id] [sop-id]",
		Short: "Record a certification review attempt",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			record, err := wire.TrainingService().RecordReviewAttempt(ctx, primary.ReviewAttemptRequest{
				CrewMemberID: args[0],
				SopID:        args[1],
				Score:        score,
				Passed:       passed,
				ReviewedBy:   reviewedBy,
			})
			if err != nil {
				return err
			}

			attempt := record.ReviewAttempts[len(record.ReviewAttempts)-1]
			result := "failed"
			if attempt.Passed {
				result = "passed"
			}
			fmt.Printf("✓ Recorded review attempt %d (%s). Status remains %s.\n", attempt.AttemptNumber, result, record.Status)
			if attempt.Passed && record.Status != "certified" {
				fmt.Printf("Run 'fieldloop training certify %s %s' to certify.\n", args[0], args[1])
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&score, "score", 0, "Review score")
	cmd.Flags().BoolVar(&passed, "passed", false, "Whether the attempt passed")
	cmd.Flags().StringVar(&reviewedBy, "by", "", "Reviewing supervisor")

	return cmd
}

func trainingCertifyCmd() *cobra.Command {
	var certifiedBy string

	cmd := &cobra.Command{
		Use:   "certify [crew-member-id] [sop-id]",
		Short: "Certify a crew member on an SOP",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxutil.WithActorID(context.Background(), certifiedBy)

			record, err := wire.TrainingService().Certify(ctx, primary.CertifyRequest{
				CrewMemberID: args[0],
				SopID:        args[1],
				CertifiedBy:  certifiedBy,
			})
			if err != nil {
				return err
			}

			fmt.Printf("✓ Certified %s on %s at %s\n", record.CrewMemberID, record.SopID, record.CertifiedAt)
			return nil
		},
	}

	cmd.Flags().StringVar(&certifiedBy, "by", "", "Certifying supervisor")
	return cmd
}

func trainingListCmd() *cobra.Command {
	var crewMemberID, sopID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List training records for a crew member or SOP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			var records []*primary.Training
			var err error
			switch {
			case crewMemberID != "":
				records, err = wire.TrainingService().ListByCrewMember(ctx, crewMemberID)
			case sopID != "":
				records, err = wire.TrainingService().ListBySop(ctx, sopID)
			default:
				return fmt.Errorf("either --crew or --sop is required")
			}
			if err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Println("No training records found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CREW\tSOP\tSTATUS\tCOMPLETIONS\tATTEMPTS\tCERTIFIED AT")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
					r.CrewMemberID, r.SopID, r.Status,
					len(r.SupervisedCompletions), len(r.ReviewAttempts), r.CertifiedAt)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&crewMemberID, "crew", "", "List by crew member")
	cmd.Flags().StringVar(&sopID, "sop", "", "List by SOP")

	return cmd
}

func printTraining(record *primary.Training) {
	fmt.Printf("%s: %s on %s\n", record.ID, record.CrewMemberID, record.SopID)
	fmt.Printf("  Status: %s\n", record.Status)
	if record.CertifiedAt != "" {
		fmt.Printf("  Certified: %s by %s\n", record.CertifiedAt, record.CertifiedBy)
	}
	if len(record.SupervisedCompletions) > 0 {
		fmt.Println("  Supervised completions:")
		for i, c := range record.SupervisedCompletions {
			fmt.Printf("    %d. %s by %s", i+1, c.CompletedAt, c.SupervisedBy)
			if c.Notes != "" {
				fmt.Printf(" - %s", c.Notes)
			}
			fmt.Println()
		}
	}
	if len(record.ReviewAttempts) > 0 {
		fmt.Println("  Review attempts:")
		for _, a := range record.ReviewAttempts {
			result := "failed"
			if a.Passed {
				result = "passed"
			}
			fmt.Printf("    %d. %s score %d (%s)\n", a.AttemptNumber, a.AttemptedAt, a.Score, result)
		}
	}
}
