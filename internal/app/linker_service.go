package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/fieldloop/internal/core/linker"
	"github.com/example/fieldloop/internal/ports/primary"
	"github.com/example/fieldloop/internal/ports/secondary"
)

// LinkerServiceImpl implements the LinkerService interface.
type LinkerServiceImpl struct {
	obsRepo       secondary.ObservationRepository
	knowledgeRepo secondary.KnowledgeRepository
	linkRepo      secondary.LinkRepository
	confidence    primary.ConfidenceService
	combination   linker.CombinationMatcher
}

// NewLinkerService creates a new LinkerService with injected dependencies.
// The confidence service is optional - pass nil to skip score recalculation
// after linking. A nil combination matcher falls back to the default.
func NewLinkerService(
	obsRepo secondary.ObservationRepository,
	knowledgeRepo secondary.KnowledgeRepository,
	linkRepo secondary.LinkRepository,
	confidence primary.ConfidenceService,
	combination linker.CombinationMatcher,
) *LinkerServiceImpl {
	return &LinkerServiceImpl{
		obsRepo:       obsRepo,
		knowledgeRepo: knowledgeRepo,
		linkRepo:      linkRepo,
		confidence:    confidence,
		combination:   combination,
	}
}

// LinkObservation matches an observation against every knowledge item and
// creates auto-detected links for the matches.
func (s *LinkerServiceImpl) LinkObservation(ctx context.Context, observationID string) (*primary.LinkReport, error) {
	return s.link(ctx, observationID, 0, nil)
}

// RelinkObservation deletes an observation's auto-detected links and reruns
// matching. Manual and experiment links survive.
//
// Delete-then-match is not atomic: a crash between the two passes leaves the
// observation with fewer links until the next relink. Links are derived data,
// so a repeated relink always restores them.
func (s *LinkerServiceImpl) RelinkObservation(ctx context.Context, observationID string) (*primary.LinkReport, error) {
	// Verify the observation exists before deleting anything
	if _, err := s.obsRepo.GetByID(ctx, observationID); err != nil {
		return nil, err
	}

	// Remember which items were auto-linked before the delete. A recreated
	// link is not new evidence, so those pairs must not fire another scoring
	// event when the match pass rebuilds them.
	existing, err := s.linkRepo.ListByObservation(ctx, observationID)
	if err != nil {
		return nil, err
	}
	prior := make(map[string]bool)
	for _, l := range existing {
		if l.LinkType == linker.LinkAutoDetected {
			prior[l.KnowledgeItemID] = true
		}
	}

	removed, err := s.linkRepo.DeleteAutoDetected(ctx, observationID)
	if err != nil {
		return nil, err
	}

	return s.link(ctx, observationID, removed, prior)
}

// link matches the observation against every knowledge item and creates the
// auto-detected link rows. priorItems holds the knowledge item IDs that were
// auto-linked before a relink; matches against those items are recreated
// without recording a fresh observation_linked event.
func (s *LinkerServiceImpl) link(ctx context.Context, observationID string, removed int, priorItems map[string]bool) (*primary.LinkReport, error) {
	obs, err := s.obsRepo.GetByID(ctx, observationID)
	if err != nil {
		return nil, err
	}

	items, err := s.knowledgeRepo.List(ctx, secondary.KnowledgeFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge items: %w", err)
	}

	obsInput := linker.ObservationInput{
		KnowledgeType: obs.KnowledgeType,
		ProductID:     obs.ProductID,
		TechniqueID:   obs.TechniqueID,
		ToolMethodID:  obs.ToolMethodID,
		CombinationID: obs.CombinationID,
		WorkCategory:  obs.WorkCategory,
		Trade:         obs.Trade,
	}

	report := &primary.LinkReport{ObservationID: observationID, Removed: removed}
	for _, item := range items {
		result := linker.Match(obsInput, linker.KnowledgeInput{
			ID:            item.ID,
			KnowledgeType: item.KnowledgeType,
			Category:      item.Category,
			Trade:         item.Trade,
			ProductIDs:    item.ProductIDs,
			TechniqueIDs:  item.TechniqueIDs,
			ToolMethodIDs: item.ToolMethodIDs,
		}, s.combination)
		if !result.Matched {
			continue
		}

		confidence := result.Confidence
		record := &secondary.LinkRecord{
			ID:              uuid.NewString(),
			ObservationID:   observationID,
			KnowledgeItemID: item.ID,
			LinkType:        linker.LinkAutoDetected,
			LinkConfidence:  &confidence,
		}
		if err := s.linkRepo.Create(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to create link to %s: %w", item.ID, err)
		}

		report.Links = append(report.Links, &primary.Link{
			ID:              record.ID,
			ObservationID:   observationID,
			KnowledgeItemID: item.ID,
			LinkType:        record.LinkType,
			LinkConfidence:  record.LinkConfidence,
			Rule:            result.Rule,
		})

		// Each new link is a scoring event for the linked item. Failures
		// here do not undo the link - the next event recalculates anyway.
		if s.confidence != nil && !priorItems[item.ID] {
			_, _ = s.confidence.RecordEvent(ctx, primary.RecordEventRequest{
				KnowledgeItemID: item.ID,
				EventType:       "observation_linked",
				SourceID:        observationID,
				Notes:           fmt.Sprintf("auto-linked via %s (confidence %d)", result.Rule, result.Confidence),
			})
		}
	}

	return report, nil
}

// AddManualLink creates a labs_assigned or experiment_required link.
func (s *LinkerServiceImpl) AddManualLink(ctx context.Context, req primary.AddManualLinkRequest) (*primary.Link, error) {
	if req.LinkType != linker.LinkLabsAssigned && req.LinkType != linker.LinkExperimentRequired {
		return nil, fmt.Errorf("invalid link type %q (expected labs_assigned or experiment_required)", req.LinkType)
	}

	if _, err := s.obsRepo.GetByID(ctx, req.ObservationID); err != nil {
		return nil, err
	}
	if _, err := s.knowledgeRepo.GetByID(ctx, req.KnowledgeItemID); err != nil {
		return nil, err
	}

	record := &secondary.LinkRecord{
		ID:              uuid.NewString(),
		ObservationID:   req.ObservationID,
		KnowledgeItemID: req.KnowledgeItemID,
		LinkType:        req.LinkType,
	}
	if err := s.linkRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create manual link: %w", err)
	}

	return &primary.Link{
		ID:              record.ID,
		ObservationID:   record.ObservationID,
		KnowledgeItemID: record.KnowledgeItemID,
		LinkType:        record.LinkType,
	}, nil
}

// GetObservationContext retrieves the links for an observation.
func (s *LinkerServiceImpl) GetObservationContext(ctx context.Context, observationID string) ([]*primary.Link, error) {
	if _, err := s.obsRepo.GetByID(ctx, observationID); err != nil {
		return nil, err
	}

	records, err := s.linkRepo.ListByObservation(ctx, observationID)
	if err != nil {
		return nil, err
	}

	links := make([]*primary.Link, len(records))
	for i, r := range records {
		links[i] = recordToLink(r)
	}
	return links, nil
}

// GetEvidenceForKnowledgeItem retrieves the observations linked to an item,
// with the link that connects each.
func (s *LinkerServiceImpl) GetEvidenceForKnowledgeItem(ctx context.Context, knowledgeItemID string) ([]*primary.Evidence, error) {
	if _, err := s.knowledgeRepo.GetByID(ctx, knowledgeItemID); err != nil {
		return nil, err
	}

	records, err := s.linkRepo.ListByKnowledgeItem(ctx, knowledgeItemID)
	if err != nil {
		return nil, err
	}

	evidence := make([]*primary.Evidence, 0, len(records))
	for _, r := range records {
		obs, err := s.obsRepo.GetByID(ctx, r.ObservationID)
		if err != nil {
			// Dangling link - skip rather than fail the whole evidence view
			continue
		}
		evidence = append(evidence, &primary.Evidence{
			Observation: recordToObservation(obs),
			Link:        recordToLink(r),
		})
	}
	return evidence, nil
}

func recordToLink(r *secondary.LinkRecord) *primary.Link {
	return &primary.Link{
		ID:              r.ID,
		ObservationID:   r.ObservationID,
		KnowledgeItemID: r.KnowledgeItemID,
		LinkType:        r.LinkType,
		LinkConfidence:  r.LinkConfidence,
		CreatedAt:       r.CreatedAt,
	}
}

// Ensure LinkerServiceImpl implements the interface
var _ primary.LinkerService = (*LinkerServiceImpl)(nil)
