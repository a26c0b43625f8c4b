package primary

import "context"

// ObservationService defines the primary port for the observation trigger
// pipeline.
type ObservationService interface {
	// HandleChecklistCheck maps a checked checklist item to a trigger
	// outcome: nothing, an immediate draft, or a queued batch row.
	HandleChecklistCheck(ctx context.Context, req ChecklistCheckRequest) (*ChecklistCheckResponse, error)

	// ConfirmObservation creates exactly one field observation, links it
	// to knowledge items, and emits an activity event.
	ConfirmObservation(ctx context.Context, req ConfirmObservationRequest) (*ConfirmObservationResponse, error)

	// ConfirmBatchItem confirms one pending batch draft.
	ConfirmBatchItem(ctx context.Context, req ConfirmBatchItemRequest) (*ConfirmObservationResponse, error)

	// SkipBatchItem marks a pending batch draft skipped without creating
	// an observation.
	SkipBatchItem(ctx context.Context, pendingID string) error

	// ConfirmAllBatch confirms every pending draft for a task sequentially.
	// Individual failures do not roll back prior confirmations.
	ConfirmAllBatch(ctx context.Context, taskID string) (*BatchSummary, error)

	// ClearProcessedBatch deletes confirmed/skipped drafts for a task.
	ClearProcessedBatch(ctx context.Context, taskID string) (int, error)

	// ListPendingBatch lists a task's pending drafts.
	ListPendingBatch(ctx context.Context, taskID string) ([]*PendingBatchItem, error)

	// GetObservation retrieves an observation by ID.
	GetObservation(ctx context.Context, observationID string) (*Observation, error)

	// ListObservations lists observations with optional filters.
	ListObservations(ctx context.Context, filters ObservationFilters) ([]*Observation, error)
}

// Observation is the primary-port view of a field observation.
type Observation struct {
	ID                string
	ProjectID         string
	TaskID            string
	SopID             string
	ChecklistItemID   string
	CrewMemberID      string
	KnowledgeType     string
	ProductID         string
	TechniqueID       string
	ToolMethodID      string
	CombinationID     string
	Deviated          bool
	DeviationNotes    string
	Notes             string
	PhotoRequired     bool
	NotesRequired     bool
	ConditionRequired bool
	CaptureMethod     string
	WorkCategory      string
	Trade             string
	Stage             string
	CreatedAt         string
}

// ObservationDraft is a prefilled observation awaiting confirmation.
type ObservationDraft struct {
	ProjectID         string
	TaskID            string
	SopID             string
	ChecklistItemID   string
	CrewMemberID      string
	KnowledgeType     string
	ProductID         string
	TechniqueID       string
	ToolMethodID      string
	CombinationID     string
	PhotoRequired     bool
	NotesRequired     bool
	ConditionRequired bool
	WorkCategory      string
	Trade             string
	Stage             string
}

// ChecklistCheckRequest describes one checklist-item check event.
type ChecklistCheckRequest struct {
	ChecklistItemID string
	TaskID          string
	ProjectID       string
	CrewMemberID    string
	WorkCategory    string
	Trade           string
	Stage           string
}

// ChecklistCheckResponse reports the trigger outcome for one check event.
type ChecklistCheckResponse struct {
	Outcome   string            // no_observation, immediate_confirm, queued_batch
	Draft     *ObservationDraft // set for immediate_confirm
	PendingID string            // set for queued_batch
	// CrewCertified reports whether the crew member is certified for the
	// SOP behind this item. Informational only - never blocks execution.
	CrewCertified bool
}

// ConfirmObservationRequest contains the full observation content.
type ConfirmObservationRequest struct {
	Draft          ObservationDraft
	Notes          string
	Deviated       bool
	DeviationNotes string
	CaptureMethod  string // defaults to automatic
}

// ConfirmObservationResponse contains the created observation.
type ConfirmObservationResponse struct {
	ObservationID string
	Observation   *Observation
}

// ConfirmBatchItemRequest confirms a pending draft with optional overrides.
type ConfirmBatchItemRequest struct {
	PendingID      string
	Notes          string
	Deviated       bool
	DeviationNotes string
}

// PendingBatchItem is the primary-port view of a queued draft.
type PendingBatchItem struct {
	ID              string
	TaskID          string
	ChecklistItemID string
	CrewMemberID    string
	Status          string
	Draft           *ObservationDraft
	CreatedAt       string
}

// BatchSummary reports the aggregate result of ConfirmAllBatch.
type BatchSummary struct {
	TaskID    string
	Confirmed int
	Failed    int
	Errors    []string
}

// ObservationFilters contains filter options for listing observations.
type ObservationFilters struct {
	ProjectID     string
	TaskID        string
	KnowledgeType string
	Limit         int
}
