package secondary

import "context"

// PendingBatchRepository defines the secondary port for queued batch
// observation drafts.
type PendingBatchRepository interface {
	// Create persists a new pending batch draft.
	Create(ctx context.Context, pending *PendingBatchRecord) error

	// GetByID retrieves a pending draft by its ID.
	GetByID(ctx context.Context, id string) (*PendingBatchRecord, error)

	// ListByTask retrieves drafts for a task, optionally filtered by status.
	ListByTask(ctx context.Context, taskID, status string) ([]*PendingBatchRecord, error)

	// MarkProcessed sets a draft's terminal status and processed timestamp.
	MarkProcessed(ctx context.Context, id, status string) error

	// DeleteProcessed removes all non-pending drafts for a task and
	// returns the number deleted.
	DeleteProcessed(ctx context.Context, taskID string) (int, error)
}

// PendingBatchRecord represents a queued observation draft as stored in
// persistence. The draft itself is stored as a JSON payload - it is
// ephemeral and never queried by field.
type PendingBatchRecord struct {
	ID              string
	TaskID          string
	ChecklistItemID string
	CrewMemberID    string
	Status          string // pending, confirmed, skipped
	DraftJSON       string
	CreatedAt       string
	ProcessedAt     string // Empty string means null
}

// ObservationRepository defines the secondary port for field observation
// persistence. Observations are immutable after creation except for the
// callback propagator's note annotations.
type ObservationRepository interface {
	// Create persists a new field observation.
	Create(ctx context.Context, obs *ObservationRecord) error

	// GetByID retrieves an observation by its ID.
	GetByID(ctx context.Context, id string) (*ObservationRecord, error)

	// List retrieves observations matching the given filters.
	List(ctx context.Context, filters ObservationFilters) ([]*ObservationRecord, error)

	// AnnotateCallback appends callback notes and flips the capture method.
	// This is the only mutation permitted on an existing observation.
	AnnotateCallback(ctx context.Context, id, notes string) error

	// GetNextID returns the next available observation ID.
	GetNextID(ctx context.Context) (string, error)
}

// ObservationRecord represents a field observation as stored in persistence.
type ObservationRecord struct {
	ID                string
	ProjectID         string // Empty string means null
	TaskID            string // Empty string means null
	SopID             string // Empty string means null
	ChecklistItemID   string // Empty string means null
	CrewMemberID      string // Empty string means null
	KnowledgeType     string
	ProductID         string // Empty string means null
	TechniqueID       string // Empty string means null
	ToolMethodID      string // Empty string means null
	CombinationID     string // Empty string means null
	Deviated          bool
	DeviationNotes    string
	Notes             string
	PhotoRequired     bool
	NotesRequired     bool
	ConditionRequired bool
	CaptureMethod     string // automatic, callback, manual
	WorkCategory      string
	Trade             string
	Stage             string
	CreatedAt         string
}

// ObservationFilters contains filter options for querying observations.
type ObservationFilters struct {
	ProjectID     string
	TaskID        string
	KnowledgeType string
	Limit         int
}
