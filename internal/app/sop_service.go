// Package app contains the application services that orchestrate the
// functional core and the repositories.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/fieldloop/internal/core/sop"
	"github.com/example/fieldloop/internal/ports/primary"
	"github.com/example/fieldloop/internal/ports/secondary"
)

// SopServiceImpl implements the SopService interface.
type SopServiceImpl struct {
	sopRepo       secondary.SopRepository
	checklistRepo secondary.ChecklistRepository
	activityLog   secondary.ActivityLogger
}

// NewSopService creates a new SopService with injected dependencies.
func NewSopService(
	sopRepo secondary.SopRepository,
	checklistRepo secondary.ChecklistRepository,
	activityLog secondary.ActivityLogger,
) *SopServiceImpl {
	return &SopServiceImpl{
		sopRepo:       sopRepo,
		checklistRepo: checklistRepo,
		activityLog:   activityLog,
	}
}

// CreateSop creates version 1 of a new SOP.
func (s *SopServiceImpl) CreateSop(ctx context.Context, req primary.CreateSopRequest) (*primary.CreateSopResponse, error) {
	if err := sop.ValidateCreate(sop.CreateContext{SopCode: req.SopCode, Title: req.Title}).Error(); err != nil {
		return nil, err
	}

	// Reject a duplicate code: the current version is the code's identity
	if _, err := s.sopRepo.GetCurrentByCode(ctx, req.SopCode); err == nil {
		return nil, fmt.Errorf("SOP code %s already exists - use version create to supersede it", req.SopCode)
	}

	nextID, err := s.sopRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate SOP ID: %w", err)
	}

	mode := req.ObservationMode
	if mode == "" {
		mode = string(sop.ModeStandard)
	}
	required := req.RequiredSupervisedCompletions
	if required <= 0 {
		required = sop.DefaultRequiredSupervisedCompletions
	}

	record := &secondary.SopRecord{
		ID:                            nextID,
		SopCode:                       req.SopCode,
		Version:                       sop.InitialVersion(),
		IsCurrent:                     true,
		Title:                         req.Title,
		Description:                   req.Description,
		Category:                      req.Category,
		Trade:                         req.Trade,
		ObservationMode:               mode,
		RequiredSupervisedCompletions: required,
		Status:                        string(sop.StatusActive),
	}

	if err := s.sopRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create SOP: %w", err)
	}

	created, err := s.sopRepo.GetByID(ctx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created SOP: %w", err)
	}

	s.logActivity(ctx, "sop_created", created.ID, fmt.Sprintf("SOP %s created (%s v1)", created.ID, created.SopCode))

	return &primary.CreateSopResponse{SopID: created.ID, Sop: recordToSop(created)}, nil
}

// CreateNewVersion supersedes the current version of an sop_code and creates
// the next one, copying the checklist. The supersede, insert, and copy run
// in one repository transaction.
func (s *SopServiceImpl) CreateNewVersion(ctx context.Context, req primary.CreateVersionRequest) (*primary.CreateSopResponse, error) {
	current, err := s.sopRepo.GetCurrentByCode(ctx, req.SopCode)
	if err != nil {
		return nil, err
	}

	guard := sop.CanCreateVersion(sop.VersionStateContext{
		SopID:     current.ID,
		IsCurrent: current.IsCurrent,
		Status:    sop.SopStatus(current.Status),
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	plan := sop.PlanNextVersion(
		sop.Snapshot{
			ID:                            current.ID,
			SopCode:                       current.SopCode,
			Version:                       current.Version,
			Title:                         current.Title,
			Description:                   current.Description,
			Category:                      current.Category,
			Trade:                         current.Trade,
			ObservationMode:               sop.ObservationMode(current.ObservationMode),
			RequiredSupervisedCompletions: current.RequiredSupervisedCompletions,
		},
		sop.Patch{
			Title:                         req.Title,
			Description:                   req.Description,
			Category:                      req.Category,
			Trade:                         req.Trade,
			ObservationMode:               sop.ObservationMode(req.ObservationMode),
			RequiredSupervisedCompletions: req.RequiredSupervisedCompletions,
		},
		req.VersionNotes,
		time.Now(),
	)

	nextID, err := s.sopRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate SOP ID: %w", err)
	}

	next := &secondary.SopRecord{
		ID:                            nextID,
		SopCode:                       plan.SopCode,
		Version:                       plan.Version,
		IsCurrent:                     true,
		PreviousVersionID:             plan.PreviousVersionID,
		VersionNotes:                  plan.VersionNotes,
		Title:                         plan.Title,
		Description:                   plan.Description,
		Category:                      plan.Category,
		Trade:                         plan.Trade,
		ObservationMode:               string(plan.ObservationMode),
		RequiredSupervisedCompletions: plan.RequiredSupervisedCompletions,
		Status:                        string(sop.StatusActive),
	}

	// Copy the checklist into the new version with fresh item IDs
	items, err := s.checklistRepo.GetBySop(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load checklist for copy: %w", err)
	}
	copies := make([]*secondary.ChecklistItemRecord, len(items))
	for i, item := range items {
		c := *item
		c.ID = uuid.NewString()
		c.SopID = nextID
		copies[i] = &c
	}

	if err := s.sopRepo.CreateNextVersion(ctx, current.ID, next, copies); err != nil {
		return nil, err
	}

	created, err := s.sopRepo.GetByID(ctx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created version: %w", err)
	}

	s.logActivity(ctx, "sop_version_created", created.ID,
		fmt.Sprintf("SOP %s superseded by %s (v%d)", current.ID, created.ID, created.Version))

	return &primary.CreateSopResponse{SopID: created.ID, Sop: recordToSop(created)}, nil
}

// GetSop retrieves an SOP version by row ID.
func (s *SopServiceImpl) GetSop(ctx context.Context, sopID string) (*primary.Sop, error) {
	record, err := s.sopRepo.GetByID(ctx, sopID)
	if err != nil {
		return nil, err
	}
	return recordToSop(record), nil
}

// GetVersionHistory retrieves all versions for an sop_code, newest first.
func (s *SopServiceImpl) GetVersionHistory(ctx context.Context, sopCode string) ([]*primary.Sop, error) {
	records, err := s.sopRepo.GetVersionHistory(ctx, sopCode)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("SOP %s not found", sopCode)
	}

	sops := make([]*primary.Sop, len(records))
	for i, r := range records {
		sops[i] = recordToSop(r)
	}
	return sops, nil
}

// ListSops lists SOP versions with optional filters.
func (s *SopServiceImpl) ListSops(ctx context.Context, filters primary.SopFilters) ([]*primary.Sop, error) {
	records, err := s.sopRepo.List(ctx, secondary.SopFilters{
		Status:      filters.Status,
		Category:    filters.Category,
		CurrentOnly: filters.CurrentOnly,
		Limit:       filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list SOPs: %w", err)
	}

	sops := make([]*primary.Sop, len(records))
	for i, r := range records {
		sops[i] = recordToSop(r)
	}
	return sops, nil
}

// UpdateSop updates title/description of a current, active version.
func (s *SopServiceImpl) UpdateSop(ctx context.Context, req primary.UpdateSopRequest) error {
	record, err := s.sopRepo.GetByID(ctx, req.SopID)
	if err != nil {
		return err
	}

	guard := sop.CanModifyChecklist(sop.VersionStateContext{
		SopID:     record.ID,
		IsCurrent: record.IsCurrent,
		Status:    sop.SopStatus(record.Status),
	})
	if err := guard.Error(); err != nil {
		return err
	}

	if req.Title != "" {
		record.Title = req.Title
	}
	if req.Description != "" {
		record.Description = req.Description
	}

	return s.sopRepo.Update(ctx, record)
}

// ArchiveSop archives an SOP version and clears its current flag.
func (s *SopServiceImpl) ArchiveSop(ctx context.Context, sopID string) error {
	record, err := s.sopRepo.GetByID(ctx, sopID)
	if err != nil {
		return err
	}

	if record.Status == string(sop.StatusArchived) {
		return fmt.Errorf("SOP %s is already archived", sopID)
	}

	record.Status = string(sop.StatusArchived)
	record.IsCurrent = false

	if err := s.sopRepo.Update(ctx, record); err != nil {
		return err
	}

	s.logActivity(ctx, "sop_archived", record.ID, fmt.Sprintf("SOP %s archived", record.ID))
	return nil
}

// AddChecklistItem appends a checklist item at the end.
func (s *SopServiceImpl) AddChecklistItem(ctx context.Context, req primary.AddChecklistItemRequest) (*primary.ChecklistItem, error) {
	_, steps, err := s.loadModifiableChecklist(ctx, req.SopID)
	if err != nil {
		return nil, err
	}

	return s.createChecklistItem(ctx, req, sop.AppendStepNumber(steps))
}

// InsertChecklistItem inserts a checklist item after the given step, shifting
// later steps by one so numbering stays contiguous.
func (s *SopServiceImpl) InsertChecklistItem(ctx context.Context, req primary.InsertChecklistItemRequest) (*primary.ChecklistItem, error) {
	_, steps, err := s.loadModifiableChecklist(ctx, req.SopID)
	if err != nil {
		return nil, err
	}

	if req.AfterStep < 0 || req.AfterStep > len(steps) {
		return nil, fmt.Errorf("step %d is out of range (checklist has %d steps)", req.AfterStep, len(steps))
	}

	newStep, shifts := sop.PlanInsertAfter(steps, req.AfterStep)
	if len(shifts) > 0 {
		if err := s.checklistRepo.Renumber(ctx, req.SopID, shifts); err != nil {
			return nil, err
		}
	}

	return s.createChecklistItem(ctx, req.AddChecklistItemRequest, newStep)
}

// RemoveChecklistItem removes a checklist item and closes the gap.
func (s *SopServiceImpl) RemoveChecklistItem(ctx context.Context, itemID string) error {
	item, err := s.checklistRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	_, steps, err := s.loadModifiableChecklist(ctx, item.SopID)
	if err != nil {
		return err
	}

	if err := s.checklistRepo.Delete(ctx, itemID); err != nil {
		return err
	}

	remaining := make([]sop.StepRef, 0, len(steps)-1)
	for _, ref := range steps {
		if ref.ID != itemID {
			remaining = append(remaining, ref)
		}
	}
	shifts := sop.PlanRemove(remaining, item.StepNumber)
	if len(shifts) > 0 {
		if err := s.checklistRepo.Renumber(ctx, item.SopID, shifts); err != nil {
			return err
		}
	}

	return nil
}

// GetChecklist retrieves an SOP version's checklist in step order.
func (s *SopServiceImpl) GetChecklist(ctx context.Context, sopID string) ([]*primary.ChecklistItem, error) {
	if _, err := s.sopRepo.GetByID(ctx, sopID); err != nil {
		return nil, err
	}

	records, err := s.checklistRepo.GetBySop(ctx, sopID)
	if err != nil {
		return nil, err
	}

	items := make([]*primary.ChecklistItem, len(records))
	for i, r := range records {
		items[i] = recordToChecklistItem(r)
	}
	return items, nil
}

// GetObservationConfig returns the SOP, its observation-generating items in
// step order, and the SOP's observation mode.
func (s *SopServiceImpl) GetObservationConfig(ctx context.Context, sopID string) (*primary.ObservationConfig, error) {
	record, err := s.sopRepo.GetByID(ctx, sopID)
	if err != nil {
		return nil, err
	}

	records, err := s.checklistRepo.GetGenerating(ctx, sopID)
	if err != nil {
		return nil, err
	}

	items := make([]*primary.ChecklistItem, len(records))
	for i, r := range records {
		items[i] = recordToChecklistItem(r)
	}

	return &primary.ObservationConfig{
		Sop:             recordToSop(record),
		Items:           items,
		ObservationMode: record.ObservationMode,
	}, nil
}

// Helper methods

// loadModifiableChecklist loads an SOP, verifies its checklist may change,
// and returns the current step refs.
func (s *SopServiceImpl) loadModifiableChecklist(ctx context.Context, sopID string) (*secondary.SopRecord, []sop.StepRef, error) {
	record, err := s.sopRepo.GetByID(ctx, sopID)
	if err != nil {
		return nil, nil, err
	}

	guard := sop.CanModifyChecklist(sop.VersionStateContext{
		SopID:     record.ID,
		IsCurrent: record.IsCurrent,
		Status:    sop.SopStatus(record.Status),
	})
	if err := guard.Error(); err != nil {
		return nil, nil, err
	}

	items, err := s.checklistRepo.GetBySop(ctx, sopID)
	if err != nil {
		return nil, nil, err
	}

	steps := make([]sop.StepRef, len(items))
	for i, item := range items {
		steps[i] = sop.StepRef{ID: item.ID, StepNumber: item.StepNumber}
	}
	return record, steps, nil
}

func (s *SopServiceImpl) createChecklistItem(ctx context.Context, req primary.AddChecklistItemRequest, stepNumber int) (*primary.ChecklistItem, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	timing := req.TriggerTiming
	if timing == "" {
		timing = "on_check"
	}
	if timing != "on_check" && timing != "batch" {
		return nil, fmt.Errorf("invalid trigger timing %q (expected on_check or batch)", timing)
	}

	record := &secondary.ChecklistItemRecord{
		ID:                   uuid.NewString(),
		SopID:                req.SopID,
		StepNumber:           stepNumber,
		Title:                req.Title,
		Instructions:         req.Instructions,
		GeneratesObservation: req.GeneratesObservation,
		TriggerTiming:        timing,
		KnowledgeType:        req.KnowledgeType,
		ProductID:            req.ProductID,
		TechniqueID:          req.TechniqueID,
		ToolMethodID:         req.ToolMethodID,
		CombinationID:        req.CombinationID,
	}

	if err := s.checklistRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	created, err := s.checklistRepo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created checklist item: %w", err)
	}
	return recordToChecklistItem(created), nil
}

// logActivity emits an activity event, swallowing failures - the feed is
// best-effort and never blocks SOP operations.
func (s *SopServiceImpl) logActivity(ctx context.Context, eventType, entityID, summary string) {
	if s.activityLog == nil {
		return
	}
	_ = s.activityLog.Log(ctx, secondary.ActivityEvent{
		EventType:  eventType,
		EntityType: "sop",
		EntityID:   entityID,
		Summary:    summary,
	})
}

func recordToSop(r *secondary.SopRecord) *primary.Sop {
	return &primary.Sop{
		ID:                            r.ID,
		SopCode:                       r.SopCode,
		Version:                       r.Version,
		IsCurrent:                     r.IsCurrent,
		PreviousVersionID:             r.PreviousVersionID,
		SupersededDate:                r.SupersededDate,
		VersionNotes:                  r.VersionNotes,
		Title:                         r.Title,
		Description:                   r.Description,
		Category:                      r.Category,
		Trade:                         r.Trade,
		ObservationMode:               r.ObservationMode,
		RequiredSupervisedCompletions: r.RequiredSupervisedCompletions,
		Status:                        r.Status,
		CreatedAt:                     r.CreatedAt,
	}
}

func recordToChecklistItem(r *secondary.ChecklistItemRecord) *primary.ChecklistItem {
	return &primary.ChecklistItem{
		ID:                   r.ID,
		SopID:                r.SopID,
		StepNumber:           r.StepNumber,
		Title:                r.Title,
		Instructions:         r.Instructions,
		GeneratesObservation: r.GeneratesObservation,
		TriggerTiming:        r.TriggerTiming,
		KnowledgeType:        r.KnowledgeType,
		ProductID:            r.ProductID,
		TechniqueID:          r.TechniqueID,
		ToolMethodID:         r.ToolMethodID,
		CombinationID:        r.CombinationID,
	}
}

// Ensure SopServiceImpl implements the interface
var _ primary.SopService = (*SopServiceImpl)(nil)
