package app

import (
	"context"
	"fmt"

	"github.com/example/fieldloop/internal/core/callback"
	"github.com/example/fieldloop/internal/ports/primary"
	"github.com/example/fieldloop/internal/ports/secondary"
)

// CallbackServiceImpl implements the CallbackService interface.
type CallbackServiceImpl struct {
	projectRepo secondary.ProjectRepository
	obsRepo     secondary.ObservationRepository
	activityLog secondary.ActivityLogger
}

// NewCallbackService creates a new CallbackService with injected dependencies.
func NewCallbackService(
	projectRepo secondary.ProjectRepository,
	obsRepo secondary.ObservationRepository,
	activityLog secondary.ActivityLogger,
) *CallbackServiceImpl {
	return &CallbackServiceImpl{
		projectRepo: projectRepo,
		obsRepo:     obsRepo,
		activityLog: activityLog,
	}
}

// CreateCallbackProject clones an original project into a callback project
// linked back to it.
func (s *CallbackServiceImpl) CreateCallbackProject(ctx context.Context, req primary.CreateCallbackRequest) (*primary.Project, error) {
	if req.Reason == "" {
		return nil, fmt.Errorf("callback reason is required")
	}

	original, err := s.projectRepo.GetByID(ctx, req.OriginalProjectID)
	if err != nil {
		return nil, err
	}
	if original.IntegrationProjectType == callback.ProjectTypeCallback {
		return nil, fmt.Errorf("project %s is already a callback project", original.ID)
	}

	nextID, err := s.projectRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate project ID: %w", err)
	}

	name := req.Name
	if name == "" {
		name = original.Name + " (callback)"
	}

	// Budget starts at zero - remedial cost is tracked on the callback
	// project itself, not inherited.
	record := &secondary.ProjectRecord{
		ID:                     nextID,
		Name:                   name,
		IntegrationProjectType: callback.ProjectTypeCallback,
		LinkedProjectID:        original.ID,
		CallbackReason:         req.Reason,
		Status:                 "active",
	}
	if err := s.projectRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create callback project: %w", err)
	}

	s.logActivity(ctx, "callback_project_created", original.ID, nextID,
		fmt.Sprintf("callback project %s opened for %s: %s", nextID, original.ID, req.Reason))

	created, err := s.projectRepo.GetByID(ctx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created project: %w", err)
	}
	return recordToProject(created), nil
}

// PropagateCallbackOutcomes annotates original-project observations that
// match the callback project's observations. Idempotence is the caller's
// concern: rerunning propagation appends the annotation again.
func (s *CallbackServiceImpl) PropagateCallbackOutcomes(ctx context.Context, callbackProjectID string) (*primary.PropagationReport, error) {
	project, err := s.projectRepo.GetByID(ctx, callbackProjectID)

	guardCtx := callback.PropagateContext{ProjectID: callbackProjectID}
	if err == nil {
		guardCtx.ProjectExists = true
		guardCtx.ProjectType = project.IntegrationProjectType
		guardCtx.LinkedProjectID = project.LinkedProjectID
	}
	if guardErr := callback.CanPropagate(guardCtx).Error(); guardErr != nil {
		return nil, guardErr
	}

	callbackObs, err := s.obsRepo.List(ctx, secondary.ObservationFilters{ProjectID: callbackProjectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list callback observations: %w", err)
	}
	originalObs, err := s.obsRepo.List(ctx, secondary.ObservationFilters{ProjectID: project.LinkedProjectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list original observations: %w", err)
	}

	report := &primary.PropagationReport{
		CallbackProjectID: callbackProjectID,
		OriginalProjectID: project.LinkedProjectID,
	}

	for _, orig := range originalObs {
		for _, cb := range callbackObs {
			if !callback.IsRelatedObservation(observationFacts(cb), observationFacts(orig)) {
				continue
			}
			// Annotate with the reason the callback project was opened
			notes := callback.AnnotateNotes(orig.Notes, project.CallbackReason)
			if err := s.obsRepo.AnnotateCallback(ctx, orig.ID, notes); err != nil {
				return report, fmt.Errorf("failed to annotate observation %s: %w", orig.ID, err)
			}
			report.Annotated++
			// One annotation per original observation, even when several
			// callback observations relate
			break
		}
	}

	s.logActivity(ctx, "callback_outcomes_propagated", project.LinkedProjectID, callbackProjectID,
		fmt.Sprintf("annotated %d observations on %s from callback %s", report.Annotated, project.LinkedProjectID, callbackProjectID))

	return report, nil
}

// GetProject retrieves a project by ID.
func (s *CallbackServiceImpl) GetProject(ctx context.Context, projectID string) (*primary.Project, error) {
	record, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return recordToProject(record), nil
}

// CreateProject creates a standard project.
func (s *CallbackServiceImpl) CreateProject(ctx context.Context, name string) (*primary.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}

	nextID, err := s.projectRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate project ID: %w", err)
	}

	record := &secondary.ProjectRecord{
		ID:                     nextID,
		Name:                   name,
		IntegrationProjectType: callback.ProjectTypeStandard,
		Status:                 "active",
	}
	if err := s.projectRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	created, err := s.projectRepo.GetByID(ctx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created project: %w", err)
	}
	return recordToProject(created), nil
}

// Helper methods

func (s *CallbackServiceImpl) logActivity(ctx context.Context, eventType, projectID, entityID, summary string) {
	if s.activityLog == nil {
		return
	}
	_ = s.activityLog.Log(ctx, secondary.ActivityEvent{
		EventType:  eventType,
		ProjectID:  projectID,
		EntityType: "project",
		EntityID:   entityID,
		Summary:    summary,
	})
}

func observationFacts(r *secondary.ObservationRecord) callback.ObservationFacts {
	return callback.ObservationFacts{
		KnowledgeType: r.KnowledgeType,
		ProductID:     r.ProductID,
		TechniqueID:   r.TechniqueID,
		ToolMethodID:  r.ToolMethodID,
	}
}

func recordToProject(r *secondary.ProjectRecord) *primary.Project {
	return &primary.Project{
		ID:                     r.ID,
		Name:                   r.Name,
		IntegrationProjectType: r.IntegrationProjectType,
		LinkedProjectID:        r.LinkedProjectID,
		CallbackReason:         r.CallbackReason,
		Budget:                 r.Budget,
		Status:                 r.Status,
		CreatedAt:              r.CreatedAt,
	}
}

// Ensure CallbackServiceImpl implements the interface
var _ primary.CallbackService = (*CallbackServiceImpl)(nil)
