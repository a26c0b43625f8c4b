package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/fieldloop/internal/ports/primary"
	"github.com/example/fieldloop/internal/wire"
)

// KnowledgeCmd returns the knowledge command
func KnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "knowledge",
		Aliases: []string{"know"},
		Short:   "Manage knowledge items and confidence scores",
		Long: `The knowledge base built from field observations.

Items carry a confidence score recomputed on every linked observation,
experiment, and challenge. Drafts publish automatically at score 70;
published items drop to under_review below 50.`,
	}

	cmd.AddCommand(knowledgeCreateCmd())
	cmd.AddCommand(knowledgeListCmd())
	cmd.AddCommand(knowledgeShowCmd())
	cmd.AddCommand(knowledgeScoreCmd())
	cmd.AddCommand(knowledgeHistoryCmd())
	cmd.AddCommand(knowledgeEventCmd())
	cmd.AddCommand(knowledgeChallengeCmd())
	cmd.AddCommand(knowledgePublishCmd())
	cmd.AddCommand(knowledgeDeprecateCmd())
	cmd.AddCommand(knowledgeLinkCmd())

	return cmd
}

func knowledgeStatusMarker(status string) string {
	switch status {
	case "published":
		return color.New(color.FgHiGreen).Sprint("[published]")
	case "under_review":
		return color.New(color.FgHiYellow).Sprint("[under_review]")
	case "deprecated":
		return color.New(color.FgHiBlack).Sprint("[deprecated]")
	default:
		return color.New(color.FgHiCyan).Sprint("[draft]")
	}
}

func knowledgeCreateCmd() *cobra.Command {
	var category, trade string
	var products, techniques, toolMethods []string
	var agreementRate float64

	cmd := &cobra.Command{
		Use:   "create [title] [knowledge-type]",
		Short: "Create a draft knowledge item",
		Long: `Create a draft knowledge item.

Examples:
  fieldloop knowledge create "Membrane cures slow below 10C" product_performance --product PROD-100
  fieldloop knowledge create "Back-butter large format tile" technique_outcome --trade tile`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			req := primary.CreateKnowledgeItemRequest{
				Title:         args[0],
				KnowledgeType: args[1],
				Category:      category,
				Trade:         trade,
				ProductIDs:    products,
				TechniqueIDs:  techniques,
				ToolMethodIDs: toolMethods,
			}
			if cmd.Flags().Changed("agreement") {
				req.CrewAgreementRate = &agreementRate
			}

			item, err := wire.ConfidenceService().CreateKnowledgeItem(ctx, req)
			if err != nil {
				return err
			}

			fmt.Printf("✓ Created knowledge item %s at score %d %s\n", item.ID, item.ConfidenceScore, knowledgeStatusMarker(item.Status))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Work category")
	cmd.Flags().StringVar(&trade, "trade", "", "Trade")
	cmd.Flags().StringSliceVar(&products, "product", nil, "Catalog product IDs (repeatable)")
	cmd.Flags().StringSliceVar(&techniques, "technique", nil, "Catalog technique IDs (repeatable)")
	cmd.Flags().StringSliceVar(&toolMethods, "tool-method", nil, "Catalog tool/method IDs (repeatable)")
	cmd.Flags().Float64Var(&agreementRate, "agreement", 0, "Crew agreement rate in [0,1]")

	return cmd
}

func knowledgeListCmd() *cobra.Command {
	var status, knowledgeType string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List knowledge items",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			items, err := wire.ConfidenceService().ListKnowledgeItems(ctx, primary.KnowledgeFilters{
				Status:        status,
				KnowledgeType: knowledgeType,
				Limit:         limit,
			})
			if err != nil {
				return err
			}

			if len(items) == 0 {
				fmt.Println("No knowledge items found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSCORE\tSTATUS\tTYPE\tOBS\tEXP\tTITLE")
			for _, item := range items {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\t%d\t%s\n",
					item.ID, item.ConfidenceScore, item.Status, item.KnowledgeType,
					item.ObservationCount, item.ExperimentCount, item.Title)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&knowledgeType, "type", "", "Filter by knowledge type")
	cmd.Flags().IntVar(&limit, "limit", 0, "Limit results")

	return cmd
}

func knowledgeShowCmd() *cobra.Command {
	var withEvidence bool

	cmd := &cobra.Command{
		Use:   "show [item-id]",
		Short: "Show a knowledge item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			item, err := wire.ConfidenceService().GetKnowledgeItem(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s: %s %s\n", item.ID, item.Title, knowledgeStatusMarker(item.Status))
			fmt.Printf("  Score:        %d\n", item.ConfidenceScore)
			fmt.Printf("  Type:         %s\n", item.KnowledgeType)
			fmt.Printf("  Observations: %d\n", item.ObservationCount)
			fmt.Printf("  Experiments:  %d\n", item.ExperimentCount)
			if item.CrewAgreementRate != nil {
				fmt.Printf("  Agreement:    %.0f%%\n", *item.CrewAgreementRate*100)
			}
			if len(item.ProductIDs) > 0 {
				fmt.Printf("  Products:     %s\n", strings.Join(item.ProductIDs, ", "))
			}
			if len(item.TechniqueIDs) > 0 {
				fmt.Printf("  Techniques:   %s\n", strings.Join(item.TechniqueIDs, ", "))
			}
			if len(item.ToolMethodIDs) > 0 {
				fmt.Printf("  Tool/methods: %s\n", strings.Join(item.ToolMethodIDs, ", "))
			}
			if item.LastConfidenceUpdate != "" {
				fmt.Printf("  Last update:  %s\n", item.LastConfidenceUpdate)
			}

			if withEvidence {
				evidence, err := wire.LinkerService().GetEvidenceForKnowledgeItem(ctx, item.ID)
				if err != nil {
					return err
				}
				if len(evidence) > 0 {
					fmt.Println()
					fmt.Println("Evidence:")
					for _, e := range evidence {
						confidence := ""
						if e.Link.LinkConfidence != nil {
							confidence = fmt.Sprintf(" %d%%", *e.Link.LinkConfidence)
						}
						fmt.Printf("  %s (%s%s) %s\n", e.Observation.ID, e.Link.LinkType, confidence, truncate(e.Observation.Notes, 60))
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withEvidence, "evidence", false, "Include linked observations")
	return cmd
}

func knowledgeScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score [item-id]",
		Short: "Recompute an item's score without recording anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			score, err := wire.ConfidenceService().CalculateScore(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s would score %d\n", args[0], score)
			return nil
		},
	}
}

func knowledgeHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [item-id]",
		Short: "Show an item's confidence ledger, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			events, err := wire.ConfidenceService().GetHistory(ctx, args[0])
			if err != nil {
				return err
			}

			if len(events) == 0 {
				fmt.Println("No confidence events recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tEVENT\tCHANGE\tSCORE\tNOTES")
			for _, e := range events {
				fmt.Fprintf(w, "%s\t%s\t%+d\t%d\t%s\n", e.CreatedAt, e.EventType, e.ConfidenceChange, e.NewConfidenceScore, truncate(e.Notes, 50))
			}
			return w.Flush()
		},
	}
}

func knowledgeEventCmd() *cobra.Command {
	var sourceID, notes string

	cmd := &cobra.Command{
		Use:   "event [item-id] [event-type]",
		Short: "Record a scoring event",
		Long: `Record a scoring event against a knowledge item.

Event types: observation_linked, experiment_completed, recalculated.
Challenge events are recorded by the challenge commands.

Examples:
  fieldloop knowledge event KNOW-001 experiment_completed --source EXP-042
  fieldloop knowledge event KNOW-001 recalculated`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			event, err := wire.ConfidenceService().RecordEvent(ctx, primary.RecordEventRequest{
				KnowledgeItemID: args[0],
				EventType:       args[1],
				SourceID:        sourceID,
				Notes:           notes,
			})
			if err != nil {
				return err
			}

			fmt.Printf("✓ Recorded %s: score %+d to %d\n", event.EventType, event.ConfidenceChange, event.NewConfidenceScore)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceID, "source", "", "Source entity ID")
	cmd.Flags().StringVar(&notes, "notes", "", "Event notes")

	return cmd
}

func knowledgeChallengeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "challenge",
		Short: "Dispute knowledge items",
	}

	cmd.AddCommand(challengeOpenCmd())
	cmd.AddCommand(challengeResolveCmd())

	return cmd
}

func challengeOpenCmd() *cobra.Command {
	var challengedBy string

	cmd := &cobra.Command{
		Use:   "open [item-id] [reason]",
		Short: "Open a challenge against a knowledge item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			challenge, err := wire.ConfidenceService().OpenChallenge(ctx, primary.OpenChallengeRequest{
				KnowledgeItemID: args[0],
				ChallengedBy:    challengedBy,
				Reason:          args[1],
			})
			if err != nil {
				return err
			}

			fmt.Printf("✓ Opened challenge %s against %s\n", challenge.ID, challenge.KnowledgeItemID)
			return nil
		},
	}

	cmd.Flags().StringVar(&challengedBy, "by", "", "Who is challenging")
	return cmd
}

func challengeResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [challenge-id] [resolution]",
		Short: "Resolve a pending challenge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			err := wire.ConfidenceService().ResolveChallenge(ctx, primary.ResolveChallengeRequest{
				ChallengeID: args[0],
				Resolution:  args[1],
			})
			if err != nil {
				return err
			}

			fmt.Printf("✓ Resolved challenge %s\n", args[0])
			return nil
		},
	}
}

func knowledgePublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish [item-id]",
		Short: "Manually publish a knowledge item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if err := wire.ConfidenceService().PublishKnowledgeItem(ctx, args[0]); err != nil {
				return err
			}

			fmt.Printf("✓ Published %s\n", args[0])
			return nil
		},
	}
}

func knowledgeDeprecateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deprecate [item-id]",
		Short: "Manually deprecate a knowledge item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if err := wire.ConfidenceService().DeprecateKnowledgeItem(ctx, args[0]); err != nil {
				return err
			}

			fmt.Printf("✓ Deprecated %s\n", args[0])
			return nil
		},
	}
}

func knowledgeLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Manage observation-knowledge links",
	}

	cmd.AddCommand(linkRunCmd())
	cmd.AddCommand(linkRelinkCmd())
	cmd.AddCommand(linkManualCmd())

	return cmd
}

func linkRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [observation-id]",
		Short: "Match an observation against the knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			report, err := wire.LinkerService().LinkObservation(ctx, args[0])
			if err != nil {
				return err
			}

			printLinkReport(report)
			return nil
		},
	}
}

func linkRelinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relink [observation-id]",
		Short: "Drop auto-detected links and rerun matching",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			report, err := wire.LinkerService().RelinkObservation(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Removed %d stale links.\n", report.Removed)
			printLinkReport(report)
			return nil
		},
	}
}

func linkManualCmd() *cobra.Command {
	var linkType string

	cmd := &cobra.Command{
		Use:   "manual [observation-id] [item-id]",
		Short: "Create a manual link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			link, err := wire.LinkerService().AddManualLink(ctx, primary.AddManualLinkRequest{
				ObservationID:   args[0],
				KnowledgeItemID: args[1],
				LinkType:        linkType,
			})
			if err != nil {
				return err
			}

			fmt.Printf("✓ Linked %s to %s (%s)\n", link.ObservationID, link.KnowledgeItemID, link.LinkType)
			return nil
		},
	}

	cmd.Flags().StringVar(&linkType, "type", "labs_assigned", "Link type: labs_assigned or experiment_required")
	return cmd
}

func printLinkReport(report *primary.LinkReport) {
	if len(report.Links) == 0 {
		fmt.Printf("No knowledge items matched %s.\n", report.ObservationID)
		return
	}
	fmt.Printf("Linked %s to %d knowledge items:\n", report.ObservationID, len(report.Links))
	for _, link := range report.Links {
		confidence := ""
		if link.LinkConfidence != nil {
			confidence = fmt.Sprintf(", %d%%", *link.LinkConfidence)
		}
		fmt.Printf("  %s (%s%s)\n", link.KnowledgeItemID, link.Rule, confidence)
	}
}
