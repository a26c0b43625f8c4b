// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application drives
// external systems.
package secondary

import "context"

// SopRepository defines the secondary port for SOP version persistence.
type SopRepository interface {
	// Create persists a new SOP version row.
	Create(ctx context.Context, sop *SopRecord) error

	// GetByID retrieves an SOP version by its row ID.
	GetByID(ctx context.Context, id string) (*SopRecord, error)

	// GetCurrentByCode retrieves the current version for an sop_code.
	GetCurrentByCode(ctx context.Context, sopCode string) (*SopRecord, error)

	// GetVersionHistory retrieves every version for an sop_code in
	// strictly descending version order.
	GetVersionHistory(ctx context.Context, sopCode string) ([]*SopRecord, error)

	// List retrieves SOP versions matching the given filters.
	List(ctx context.Context, filters SopFilters) ([]*SopRecord, error)

	// Update updates an existing SOP version row.
	Update(ctx context.Context, sop *SopRecord) error

	// CreateNextVersion atomically supersedes the current version, inserts
	// the new version row, and copies the given checklist items into it.
	// The whole sequence runs in one storage transaction.
	CreateNextVersion(ctx context.Context, currentID string, next *SopRecord, items []*ChecklistItemRecord) error

	// GetNextID returns the next available SOP row ID.
	GetNextID(ctx context.Context) (string, error)
}

// SopRecord represents one SOP version as stored in persistence.
type SopRecord struct {
	ID                            string
	SopCode                       string
	Version                       int
	IsCurrent                     bool
	PreviousVersionID             string // Empty string means null
	SupersededDate                string // Empty string means null
	VersionNotes                  string
	Title                         string
	Description                   string
	Category                      string
	Trade                         string
	ObservationMode               string // standard, detailed
	RequiredSupervisedCompletions int
	Status                        string // active, archived
	CreatedAt                     string
	UpdatedAt                     string
}

// SopFilters contains filter options for querying SOP versions.
type SopFilters struct {
	Status      string
	Category    string
	CurrentOnly bool
	Limit       int
}

// ChecklistRepository defines the secondary port for checklist item
// template persistence.
type ChecklistRepository interface {
	// Create persists a new checklist item template.
	Create(ctx context.Context, item *ChecklistItemRecord) error

	// GetByID retrieves a checklist item by its ID.
	GetByID(ctx context.Context, id string) (*ChecklistItemRecord, error)

	// GetBySop retrieves all items for an SOP version ordered by step number.
	GetBySop(ctx context.Context, sopID string) ([]*ChecklistItemRecord, error)

	// GetGenerating retrieves the items with generates_observation set,
	// ordered by step number.
	GetGenerating(ctx context.Context, sopID string) ([]*ChecklistItemRecord, error)

	// Delete removes a checklist item.
	Delete(ctx context.Context, id string) error

	// Renumber applies new step numbers to the given items atomically.
	Renumber(ctx context.Context, sopID string, steps map[string]int) error
}

// ChecklistItemRecord represents a checklist item template as stored in
// persistence.
type ChecklistItemRecord struct {
	ID                   string
	SopID                string
	StepNumber           int
	Title                string
	Instructions         string
	GeneratesObservation bool
	TriggerTiming        string // on_check, batch
	KnowledgeType        string
	ProductID            string // Empty string means null
	TechniqueID          string // Empty string means null
	ToolMethodID         string // Empty string means null
	CombinationID        string // Empty string means null
	CreatedAt            string
}
