package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/example/fieldloop/internal/core/observation"
	"github.com/example/fieldloop/internal/core/sop"
	"github.com/example/fieldloop/internal/core/training"
	"github.com/example/fieldloop/internal/ports/primary"
	"github.com/example/fieldloop/internal/ports/secondary"
)

// linkTimeout bounds the synchronous linking pass that runs after an
// observation is confirmed.
const linkTimeout = 5 * time.Second

// ObservationServiceImpl implements the ObservationService interface.
type ObservationServiceImpl struct {
	sopRepo       secondary.SopRepository
	checklistRepo secondary.ChecklistRepository
	pendingRepo   secondary.PendingBatchRepository
	obsRepo       secondary.ObservationRepository
	trainingRepo  secondary.TrainingRepository
	linker        primary.LinkerService
	activityLog   secondary.ActivityLogger
}

// NewObservationService creates a new ObservationService with injected
// dependencies. The linker is optional - pass nil to disable auto-linking.
func NewObservationService(
	sopRepo secondary.SopRepository,
	checklistRepo secondary.ChecklistRepository,
	pendingRepo secondary.PendingBatchRepository,
	obsRepo secondary.ObservationRepository,
	trainingRepo secondary.TrainingRepository,
	linker primary.LinkerService,
	activityLog secondary.ActivityLogger,
) *ObservationServiceImpl {
	return &ObservationServiceImpl{
		sopRepo:       sopRepo,
		checklistRepo: checklistRepo,
		pendingRepo:   pendingRepo,
		obsRepo:       obsRepo,
		trainingRepo:  trainingRepo,
		linker:        linker,
		activityLog:   activityLog,
	}
}

// HandleChecklistCheck maps a checked checklist item to a trigger outcome.
func (s *ObservationServiceImpl) HandleChecklistCheck(ctx context.Context, req primary.ChecklistCheckRequest) (*primary.ChecklistCheckResponse, error) {
	item, err := s.checklistRepo.GetByID(ctx, req.ChecklistItemID)
	if err != nil {
		return nil, err
	}

	sopRecord, err := s.sopRepo.GetByID(ctx, item.SopID)
	if err != nil {
		return nil, err
	}

	decision := observation.EvaluateTrigger(observation.TemplateInput{
		ChecklistItemID:      item.ID,
		SopID:                item.SopID,
		Title:                item.Title,
		GeneratesObservation: item.GeneratesObservation,
		TriggerTiming:        observation.TriggerTiming(item.TriggerTiming),
		KnowledgeType:        item.KnowledgeType,
		ProductID:            item.ProductID,
		TechniqueID:          item.TechniqueID,
		ToolMethodID:         item.ToolMethodID,
		CombinationID:        item.CombinationID,
	}, sop.ObservationMode(sopRecord.ObservationMode))

	resp := &primary.ChecklistCheckResponse{
		Outcome:       string(decision.Outcome),
		CrewCertified: s.isCertified(ctx, req.CrewMemberID, item.SopID),
	}

	if decision.Outcome == observation.OutcomeNoObservation {
		return resp, nil
	}

	draft := draftFromDecision(decision, req)

	switch decision.Outcome {
	case observation.OutcomeImmediateConfirm:
		resp.Draft = &draft

	case observation.OutcomeQueuedBatch:
		if req.TaskID == "" {
			return nil, fmt.Errorf("task ID is required for batch-timed checklist items")
		}
		draftJSON, err := json.Marshal(draft)
		if err != nil {
			return nil, fmt.Errorf("failed to encode draft: %w", err)
		}
		pending := &secondary.PendingBatchRecord{
			ID:              uuid.NewString(),
			TaskID:          req.TaskID,
			ChecklistItemID: item.ID,
			CrewMemberID:    req.CrewMemberID,
			Status:          string(observation.PendingPending),
			DraftJSON:       string(draftJSON),
		}
		if err := s.pendingRepo.Create(ctx, pending); err != nil {
			return nil, fmt.Errorf("failed to queue batch observation: %w", err)
		}
		resp.PendingID = pending.ID
	}

	return resp, nil
}

// ConfirmObservation creates exactly one field observation, links it to
// knowledge items, and emits an activity event.
func (s *ObservationServiceImpl) ConfirmObservation(ctx context.Context, req primary.ConfirmObservationRequest) (*primary.ConfirmObservationResponse, error) {
	guard := observation.ValidateConfirm(observation.ConfirmContext{KnowledgeType: req.Draft.KnowledgeType})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	captureMethod := req.CaptureMethod
	if captureMethod == "" {
		captureMethod = string(observation.CaptureAutomatic)
	}

	nextID, err := s.obsRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate observation ID: %w", err)
	}

	record := &secondary.ObservationRecord{
		ID:                nextID,
		ProjectID:         req.Draft.ProjectID,
		TaskID:            req.Draft.TaskID,
		SopID:             req.Draft.SopID,
		ChecklistItemID:   req.Draft.ChecklistItemID,
		CrewMemberID:      req.Draft.CrewMemberID,
		KnowledgeType:     req.Draft.KnowledgeType,
		ProductID:         req.Draft.ProductID,
		TechniqueID:       req.Draft.TechniqueID,
		ToolMethodID:      req.Draft.ToolMethodID,
		CombinationID:     req.Draft.CombinationID,
		Deviated:          req.Deviated,
		DeviationNotes:    req.DeviationNotes,
		Notes:             req.Notes,
		PhotoRequired:     req.Draft.PhotoRequired,
		NotesRequired:     req.Draft.NotesRequired,
		ConditionRequired: req.Draft.ConditionRequired,
		CaptureMethod:     captureMethod,
		WorkCategory:      req.Draft.WorkCategory,
		Trade:             req.Draft.Trade,
		Stage:             req.Draft.Stage,
	}

	if err := s.obsRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create observation: %w", err)
	}

	// Auto-link synchronously with a bounded timeout. Linking failures never
	// fail the confirmation - the observation stands and can be relinked.
	if s.linker != nil {
		linkCtx, cancel := context.WithTimeout(ctx, linkTimeout)
		if _, err := s.linker.LinkObservation(linkCtx, nextID); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to link observation %s: %v\n", nextID, err)
		}
		cancel()
	}

	eventType := "observation_recorded"
	summary := fmt.Sprintf("Field observation %s captured (%s)", nextID, record.KnowledgeType)
	if record.Deviated {
		eventType = "deviation_reported"
		summary = fmt.Sprintf("Deviation reported on observation %s: %s", nextID, record.DeviationNotes)
	}
	s.logActivity(ctx, record.ProjectID, eventType, nextID, summary)

	created, err := s.obsRepo.GetByID(ctx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created observation: %w", err)
	}

	return &primary.ConfirmObservationResponse{
		ObservationID: created.ID,
		Observation:   recordToObservation(created),
	}, nil
}

// ConfirmBatchItem confirms one pending batch draft.
func (s *ObservationServiceImpl) ConfirmBatchItem(ctx context.Context, req primary.ConfirmBatchItemRequest) (*primary.ConfirmObservationResponse, error) {
	pending, err := s.pendingRepo.GetByID(ctx, req.PendingID)
	if err != nil {
		return nil, err
	}

	guard := observation.CanProcessPending(observation.PendingStateContext{
		PendingID: pending.ID,
		Status:    observation.PendingStatus(pending.Status),
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	var draft primary.ObservationDraft
	if err := json.Unmarshal([]byte(pending.DraftJSON), &draft); err != nil {
		return nil, fmt.Errorf("failed to decode pending draft %s: %w", pending.ID, err)
	}

	resp, err := s.ConfirmObservation(ctx, primary.ConfirmObservationRequest{
		Draft:          draft,
		Notes:          req.Notes,
		Deviated:       req.Deviated,
		DeviationNotes: req.DeviationNotes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.pendingRepo.MarkProcessed(ctx, pending.ID, string(observation.PendingConfirmed)); err != nil {
		return nil, fmt.Errorf("observation %s created but draft not marked: %w", resp.ObservationID, err)
	}

	return resp, nil
}

// SkipBatchItem marks a pending batch draft skipped without creating an
// observation.
func (s *ObservationServiceImpl) SkipBatchItem(ctx context.Context, pendingID string) error {
	pending, err := s.pendingRepo.GetByID(ctx, pendingID)
	if err != nil {
		return err
	}

	guard := observation.CanProcessPending(observation.PendingStateContext{
		PendingID: pending.ID,
		Status:    observation.PendingStatus(pending.Status),
	})
	if err := guard.Error(); err != nil {
		return err
	}

	return s.pendingRepo.MarkProcessed(ctx, pendingID, string(observation.PendingSkipped))
}

// ConfirmAllBatch confirms every pending draft for a task sequentially.
// Individual failures do not roll back prior confirmations.
func (s *ObservationServiceImpl) ConfirmAllBatch(ctx context.Context, taskID string) (*primary.BatchSummary, error) {
	drafts, err := s.pendingRepo.ListByTask(ctx, taskID, string(observation.PendingPending))
	if err != nil {
		return nil, err
	}

	summary := &primary.BatchSummary{TaskID: taskID}
	for _, draft := range drafts {
		_, err := s.ConfirmBatchItem(ctx, primary.ConfirmBatchItemRequest{PendingID: draft.ID})
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", draft.ID, err))
			continue
		}
		summary.Confirmed++
	}

	s.logActivity(ctx, "", "batch_observations_confirmed", taskID,
		fmt.Sprintf("Batch review for task %s: %d confirmed, %d failed", taskID, summary.Confirmed, summary.Failed))

	return summary, nil
}

// ClearProcessedBatch deletes confirmed/skipped drafts for a task.
func (s *ObservationServiceImpl) ClearProcessedBatch(ctx context.Context, taskID string) (int, error) {
	return s.pendingRepo.DeleteProcessed(ctx, taskID)
}

// ListPendingBatch lists a task's pending drafts.
func (s *ObservationServiceImpl) ListPendingBatch(ctx context.Context, taskID string) ([]*primary.PendingBatchItem, error) {
	records, err := s.pendingRepo.ListByTask(ctx, taskID, string(observation.PendingPending))
	if err != nil {
		return nil, err
	}

	items := make([]*primary.PendingBatchItem, len(records))
	for i, r := range records {
		item := &primary.PendingBatchItem{
			ID:              r.ID,
			TaskID:          r.TaskID,
			ChecklistItemID: r.ChecklistItemID,
			CrewMemberID:    r.CrewMemberID,
			Status:          r.Status,
			CreatedAt:       r.CreatedAt,
		}
		var draft primary.ObservationDraft
		if err := json.Unmarshal([]byte(r.DraftJSON), &draft); err == nil {
			item.Draft = &draft
		}
		items[i] = item
	}
	return items, nil
}

// GetObservation retrieves an observation by ID.
func (s *ObservationServiceImpl) GetObservation(ctx context.Context, observationID string) (*primary.Observation, error) {
	record, err := s.obsRepo.GetByID(ctx, observationID)
	if err != nil {
		return nil, err
	}
	return recordToObservation(record), nil
}

// ListObservations lists observations with optional filters.
func (s *ObservationServiceImpl) ListObservations(ctx context.Context, filters primary.ObservationFilters) ([]*primary.Observation, error) {
	records, err := s.obsRepo.List(ctx, secondary.ObservationFilters{
		ProjectID:     filters.ProjectID,
		TaskID:        filters.TaskID,
		KnowledgeType: filters.KnowledgeType,
		Limit:         filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}

	observations := make([]*primary.Observation, len(records))
	for i, r := range records {
		observations[i] = recordToObservation(r)
	}
	return observations, nil
}

// Helper methods

// isCertified reports whether the crew member is certified for the SOP.
// Lookup failures read as not certified - the flag is informational and must
// never block a check event.
func (s *ObservationServiceImpl) isCertified(ctx context.Context, crewMemberID, sopID string) bool {
	if s.trainingRepo == nil || crewMemberID == "" {
		return false
	}
	record, err := s.trainingRepo.GetByCrewAndSop(ctx, crewMemberID, sopID)
	if err != nil {
		return false
	}
	return record.Status == string(training.StatusCertified)
}

func (s *ObservationServiceImpl) logActivity(ctx context.Context, projectID, eventType, entityID, summary string) {
	if s.activityLog == nil {
		return
	}
	_ = s.activityLog.Log(ctx, secondary.ActivityEvent{
		EventType:  eventType,
		ProjectID:  projectID,
		EntityType: "observation",
		EntityID:   entityID,
		Summary:    summary,
	})
}

func draftFromDecision(decision observation.TriggerDecision, req primary.ChecklistCheckRequest) primary.ObservationDraft {
	return primary.ObservationDraft{
		ProjectID:         req.ProjectID,
		TaskID:            req.TaskID,
		SopID:             decision.Draft.SopID,
		ChecklistItemID:   decision.Draft.ChecklistItemID,
		CrewMemberID:      req.CrewMemberID,
		KnowledgeType:     decision.Draft.KnowledgeType,
		ProductID:         decision.Draft.ProductID,
		TechniqueID:       decision.Draft.TechniqueID,
		ToolMethodID:      decision.Draft.ToolMethodID,
		CombinationID:     decision.Draft.CombinationID,
		PhotoRequired:     decision.Draft.PhotoRequired,
		NotesRequired:     decision.Draft.NotesRequired,
		ConditionRequired: decision.Draft.ConditionRequired,
		WorkCategory:      req.WorkCategory,
		Trade:             req.Trade,
		Stage:             req.Stage,
	}
}

func recordToObservation(r *secondary.ObservationRecord) *primary.Observation {
	return &primary.Observation{
		ID:                r.ID,
		ProjectID:         r.ProjectID,
		TaskID:            r.TaskID,
		SopID:             r.SopID,
		ChecklistItemID:   r.ChecklistItemID,
		CrewMemberID:      r.CrewMemberID,
		KnowledgeType:     r.KnowledgeType,
		ProductID:         r.ProductID,
		TechniqueID:       r.TechniqueID,
		ToolMethodID:      r.ToolMethodID,
		CombinationID:     r.CombinationID,
		Deviated:          r.Deviated,
		DeviationNotes:    r.DeviationNotes,
		Notes:             r.Notes,
		PhotoRequired:     r.PhotoRequired,
		NotesRequired:     r.NotesRequired,
		ConditionRequired: r.ConditionRequired,
		CaptureMethod:     r.CaptureMethod,
		WorkCategory:      r.WorkCategory,
		Trade:             r.Trade,
		Stage:             r.Stage,
		CreatedAt:         r.CreatedAt,
	}
}

// Ensure ObservationServiceImpl implements the interface
var _ primary.ObservationService = (*ObservationServiceImpl)(nil)
