package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/fieldloop/internal/core/confidence"
	"github.com/example/fieldloop/internal/ports/primary"
	"github.com/example/fieldloop/internal/ports/secondary"
)

// ConfidenceServiceImpl implements the ConfidenceService interface.
type ConfidenceServiceImpl struct {
	knowledgeRepo secondary.KnowledgeRepository
	eventRepo     secondary.ConfidenceEventRepository
	challengeRepo secondary.ChallengeRepository
	activityLog   secondary.ActivityLogger
	now           func() time.Time
}

// NewConfidenceService creates a new ConfidenceService with injected
// dependencies.
func NewConfidenceService(
	knowledgeRepo secondary.KnowledgeRepository,
	eventRepo secondary.ConfidenceEventRepository,
	challengeRepo secondary.ChallengeRepository,
	activityLog secondary.ActivityLogger,
) *ConfidenceServiceImpl {
	return &ConfidenceServiceImpl{
		knowledgeRepo: knowledgeRepo,
		eventRepo:     eventRepo,
		challengeRepo: challengeRepo,
		activityLog:   activityLog,
		now:           time.Now,
	}
}

// CreateKnowledgeItem creates a draft knowledge item.
func (s *ConfidenceServiceImpl) CreateKnowledgeItem(ctx context.Context, req primary.CreateKnowledgeItemRequest) (*primary.KnowledgeItem, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if req.KnowledgeType == "" {
		return nil, fmt.Errorf("knowledge_type is required")
	}

	nextID, err := s.knowledgeRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate knowledge item ID: %w", err)
	}

	// New items start at the formula's baseline with no evidence
	baseline := confidence.CalculateScore(confidence.ScoreInput{
		CrewAgreementRate: req.CrewAgreementRate,
	}, s.now())

	record := &secondary.KnowledgeRecord{
		ID:                nextID,
		Title:             req.Title,
		KnowledgeType:     req.KnowledgeType,
		Category:          req.Category,
		Trade:             req.Trade,
		ProductIDs:        req.ProductIDs,
		TechniqueIDs:      req.TechniqueIDs,
		ToolMethodIDs:     req.ToolMethodIDs,
		ConfidenceScore:   baseline,
		Status:            string(confidence.StatusDraft),
		CrewAgreementRate: req.CrewAgreementRate,
	}

	if err := s.knowledgeRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create knowledge item: %w", err)
	}

	created, err := s.knowledgeRepo.GetByID(ctx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created knowledge item: %w", err)
	}
	return recordToKnowledgeItem(created), nil
}

// GetKnowledgeItem retrieves a knowledge item by ID.
func (s *ConfidenceServiceImpl) GetKnowledgeItem(ctx context.Context, itemID string) (*primary.KnowledgeItem, error) {
	record, err := s.knowledgeRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return recordToKnowledgeItem(record), nil
}

// ListKnowledgeItems lists items with optional filters.
func (s *ConfidenceServiceImpl) ListKnowledgeItems(ctx context.Context, filters primary.KnowledgeFilters) ([]*primary.KnowledgeItem, error) {
	records, err := s.knowledgeRepo.List(ctx, secondary.KnowledgeFilters{
		Status:        filters.Status,
		KnowledgeType: filters.KnowledgeType,
		Limit:         filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge items: %w", err)
	}

	items := make([]*primary.KnowledgeItem, len(records))
	for i, r := range records {
		items[i] = recordToKnowledgeItem(r)
	}
	return items, nil
}

// CalculateScore computes an item's score without side effects.
func (s *ConfidenceServiceImpl) CalculateScore(ctx context.Context, itemID string) (int, error) {
	record, err := s.knowledgeRepo.GetByID(ctx, itemID)
	if err != nil {
		return 0, err
	}

	input, err := s.scoreInput(ctx, record)
	if err != nil {
		return 0, err
	}
	return confidence.CalculateScore(input, s.now()), nil
}

// RecordEvent recomputes the score, appends one ledger entry, and applies the
// automatic status transition. Event semantics by type:
//
//	observation_linked    increments the observation count
//	experiment_completed  increments the experiment count
//	challenge_opened, challenge_resolved, recalculated - counts unchanged
func (s *ConfidenceServiceImpl) RecordEvent(ctx context.Context, req primary.RecordEventRequest) (*primary.ConfidenceEvent, error) {
	record, err := s.knowledgeRepo.GetByID(ctx, req.KnowledgeItemID)
	if err != nil {
		return nil, err
	}

	switch req.EventType {
	case "observation_linked":
		record.ObservationCount++
	case "experiment_completed":
		record.ExperimentCount++
	case "challenge_opened", "challenge_resolved", "recalculated":
		// counts unchanged
	default:
		return nil, fmt.Errorf("unknown event type %q", req.EventType)
	}

	input, err := s.scoreInput(ctx, record)
	if err != nil {
		return nil, err
	}

	now := s.now()
	oldScore := record.ConfidenceScore
	newScore := confidence.CalculateScore(input, now)
	oldStatus := record.Status
	newStatus := confidence.DetermineStatus(confidence.KnowledgeStatus(record.Status), newScore)

	record.ConfidenceScore = newScore
	record.Status = string(newStatus)
	record.LastConfidenceUpdate = now.UTC().Format(time.RFC3339)

	if err := s.knowledgeRepo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update knowledge item: %w", err)
	}

	event := &secondary.ConfidenceEventRecord{
		ID:                 uuid.NewString(),
		KnowledgeItemID:    record.ID,
		EventType:          req.EventType,
		SourceID:           req.SourceID,
		Notes:              req.Notes,
		ConfidenceChange:   newScore - oldScore,
		NewConfidenceScore: newScore,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to append confidence event: %w", err)
	}

	if oldStatus != record.Status {
		s.logActivity(ctx, statusEventType(record.Status), record.ID,
			fmt.Sprintf("Knowledge item %s moved %s -> %s at score %d", record.ID, oldStatus, record.Status, newScore))
	}

	return &primary.ConfidenceEvent{
		ID:                 event.ID,
		KnowledgeItemID:    event.KnowledgeItemID,
		EventType:          event.EventType,
		SourceID:           event.SourceID,
		Notes:              event.Notes,
		ConfidenceChange:   event.ConfidenceChange,
		NewConfidenceScore: event.NewConfidenceScore,
	}, nil
}

// GetHistory retrieves an item's full confidence ledger, newest first.
func (s *ConfidenceServiceImpl) GetHistory(ctx context.Context, itemID string) ([]*primary.ConfidenceEvent, error) {
	if _, err := s.knowledgeRepo.GetByID(ctx, itemID); err != nil {
		return nil, err
	}

	records, err := s.eventRepo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	events := make([]*primary.ConfidenceEvent, len(records))
	for i, r := range records {
		events[i] = &primary.ConfidenceEvent{
			ID:                 r.ID,
			KnowledgeItemID:    r.KnowledgeItemID,
			EventType:          r.EventType,
			SourceID:           r.SourceID,
			Notes:              r.Notes,
			ConfidenceChange:   r.ConfidenceChange,
			NewConfidenceScore: r.NewConfidenceScore,
			CreatedAt:          r.CreatedAt,
		}
	}
	return events, nil
}

// OpenChallenge opens a dispute against an item and records the score hit.
func (s *ConfidenceServiceImpl) OpenChallenge(ctx context.Context, req primary.OpenChallengeRequest) (*primary.Challenge, error) {
	if req.Reason == "" {
		return nil, fmt.Errorf("reason is required")
	}

	if _, err := s.knowledgeRepo.GetByID(ctx, req.KnowledgeItemID); err != nil {
		return nil, err
	}

	nextID, err := s.challengeRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate challenge ID: %w", err)
	}

	record := &secondary.ChallengeRecord{
		ID:              nextID,
		KnowledgeItemID: req.KnowledgeItemID,
		ChallengedBy:    req.ChallengedBy,
		Reason:          req.Reason,
		Status:          string(confidence.ChallengePending),
	}
	if err := s.challengeRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	if _, err := s.RecordEvent(ctx, primary.RecordEventRequest{
		KnowledgeItemID: req.KnowledgeItemID,
		EventType:       "challenge_opened",
		SourceID:        nextID,
		Notes:           req.Reason,
	}); err != nil {
		return nil, err
	}

	created, err := s.challengeRepo.GetByID(ctx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created challenge: %w", err)
	}
	return recordToChallenge(created), nil
}

// ResolveChallenge resolves a pending challenge and recalculates the item.
func (s *ConfidenceServiceImpl) ResolveChallenge(ctx context.Context, req primary.ResolveChallengeRequest) error {
	record, err := s.challengeRepo.GetByID(ctx, req.ChallengeID)
	if err != nil {
		return err
	}

	guard := confidence.CanResolveChallenge(confidence.ChallengeStateContext{
		ChallengeID: record.ID,
		Status:      confidence.ChallengeStatus(record.Status),
	})
	if err := guard.Error(); err != nil {
		return err
	}

	record.Status = string(confidence.ChallengeResolved)
	record.Resolution = req.Resolution
	record.ResolvedAt = s.now().UTC().Format(time.RFC3339)

	if err := s.challengeRepo.Update(ctx, record); err != nil {
		return err
	}

	_, err = s.RecordEvent(ctx, primary.RecordEventRequest{
		KnowledgeItemID: record.KnowledgeItemID,
		EventType:       "challenge_resolved",
		SourceID:        record.ID,
		Notes:           req.Resolution,
	})
	return err
}

// PublishKnowledgeItem manually publishes an item. This is the external
// action that releases an under_review or draft item regardless of score.
func (s *ConfidenceServiceImpl) PublishKnowledgeItem(ctx context.Context, itemID string) error {
	return s.setStatus(ctx, itemID, confidence.StatusPublished)
}

// DeprecateKnowledgeItem manually deprecates an item.
func (s *ConfidenceServiceImpl) DeprecateKnowledgeItem(ctx context.Context, itemID string) error {
	return s.setStatus(ctx, itemID, confidence.StatusDeprecated)
}

// Helper methods

func (s *ConfidenceServiceImpl) setStatus(ctx context.Context, itemID string, status confidence.KnowledgeStatus) error {
	record, err := s.knowledgeRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	if record.Status == string(status) {
		return fmt.Errorf("knowledge item %s is already %s", itemID, status)
	}

	oldStatus := record.Status
	record.Status = string(status)
	if err := s.knowledgeRepo.Update(ctx, record); err != nil {
		return err
	}

	s.logActivity(ctx, statusEventType(record.Status), record.ID,
		fmt.Sprintf("Knowledge item %s moved %s -> %s manually", record.ID, oldStatus, record.Status))
	return nil
}

// scoreInput assembles the score formula's input from the stored item plus
// the live active-challenge count.
func (s *ConfidenceServiceImpl) scoreInput(ctx context.Context, record *secondary.KnowledgeRecord) (confidence.ScoreInput, error) {
	activeChallenges, err := s.challengeRepo.CountActive(ctx, record.ID)
	if err != nil {
		return confidence.ScoreInput{}, fmt.Errorf("failed to count challenges: %w", err)
	}

	input := confidence.ScoreInput{
		ObservationCount:     record.ObservationCount,
		ExperimentCount:      record.ExperimentCount,
		CrewAgreementRate:    record.CrewAgreementRate,
		ActiveChallengeCount: activeChallenges,
	}
	if record.LastConfidenceUpdate != "" {
		t, err := time.Parse(time.RFC3339, record.LastConfidenceUpdate)
		if err == nil {
			input.LastConfidenceUpdate = &t
		}
	}
	return input, nil
}

func (s *ConfidenceServiceImpl) logActivity(ctx context.Context, eventType, entityID, summary string) {
	if s.activityLog == nil {
		return
	}
	_ = s.activityLog.Log(ctx, secondary.ActivityEvent{
		EventType:  eventType,
		EntityType: "knowledge_item",
		EntityID:   entityID,
		Summary:    summary,
	})
}

func statusEventType(status string) string {
	switch status {
	case string(confidence.StatusPublished):
		return "knowledge_item_published"
	case string(confidence.StatusUnderReview):
		return "knowledge_item_under_review"
	case string(confidence.StatusDeprecated):
		return "knowledge_item_deprecated"
	default:
		return "knowledge_item_updated"
	}
}

func recordToKnowledgeItem(r *secondary.KnowledgeRecord) *primary.KnowledgeItem {
	return &primary.KnowledgeItem{
		ID:                   r.ID,
		Title:                r.Title,
		KnowledgeType:        r.KnowledgeType,
		Category:             r.Category,
		Trade:                r.Trade,
		ProductIDs:           r.ProductIDs,
		TechniqueIDs:         r.TechniqueIDs,
		ToolMethodIDs:        r.ToolMethodIDs,
		ConfidenceScore:      r.ConfidenceScore,
		Status:               r.Status,
		ObservationCount:     r.ObservationCount,
		ExperimentCount:      r.ExperimentCount,
		CrewAgreementRate:    r.CrewAgreementRate,
		LastConfidenceUpdate: r.LastConfidenceUpdate,
		CreatedAt:            r.CreatedAt,
	}
}

func recordToChallenge(r *secondary.ChallengeRecord) *primary.Challenge {
	return &primary.Challenge{
		ID:              r.ID,
		KnowledgeItemID: r.KnowledgeItemID,
		ChallengedBy:    r.ChallengedBy,
		Reason:          r.Reason,
		Status:          r.Status,
		Resolution:      r.Resolution,
		CreatedAt:       r.CreatedAt,
		ResolvedAt:      r.ResolvedAt,
	}
}

// Ensure ConfidenceServiceImpl implements the interface
var _ primary.ConfidenceService = (*ConfidenceServiceImpl)(nil)
