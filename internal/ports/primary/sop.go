// Package primary defines the primary ports (driving adapters) for the
// application: the service interfaces the CLI and other surfaces call.
package primary

import "context"

// SopService defines the primary port for SOP store operations.
type SopService interface {
	// CreateSop creates version 1 of a new SOP.
	CreateSop(ctx context.Context, req CreateSopRequest) (*CreateSopResponse, error)

	// CreateNewVersion supersedes the current version of an sop_code and
	// creates the next one, copying the checklist.
	CreateNewVersion(ctx context.Context, req CreateVersionRequest) (*CreateSopResponse, error)

	// GetSop retrieves an SOP version by row ID.
	GetSop(ctx context.Context, sopID string) (*Sop, error)

	// GetVersionHistory retrieves all versions for an sop_code, newest first.
	GetVersionHistory(ctx context.Context, sopCode string) ([]*Sop, error)

	// ListSops lists SOP versions with optional filters.
	ListSops(ctx context.Context, filters SopFilters) ([]*Sop, error)

	// UpdateSop updates title/description of a current, active version.
	UpdateSop(ctx context.Context, req UpdateSopRequest) error

	// ArchiveSop archives an SOP version and clears its current flag.
	ArchiveSop(ctx context.Context, sopID string) error

	// AddChecklistItem appends a checklist item at the end.
	AddChecklistItem(ctx context.Context, req AddChecklistItemRequest) (*ChecklistItem, error)

	// InsertChecklistItem inserts a checklist item after the given step,
	// shifting later steps.
	InsertChecklistItem(ctx context.Context, req InsertChecklistItemRequest) (*ChecklistItem, error)

	// RemoveChecklistItem removes a checklist item and closes the gap.
	RemoveChecklistItem(ctx context.Context, itemID string) error

	// GetChecklist retrieves an SOP version's checklist in step order.
	GetChecklist(ctx context.Context, sopID string) ([]*ChecklistItem, error)

	// GetObservationConfig returns the SOP, its observation-generating
	// items in step order, and the SOP's observation mode.
	GetObservationConfig(ctx context.Context, sopID string) (*ObservationConfig, error)
}

// Sop is the primary-port view of one SOP version.
type Sop struct {
	ID                            string
	SopCode                       string
	Version                       int
	IsCurrent                     bool
	PreviousVersionID             string
	SupersededDate                string
	VersionNotes                  string
	Title                         string
	Description                   string
	Category                      string
	Trade                         string
	ObservationMode               string
	RequiredSupervisedCompletions int
	Status                        string
	CreatedAt                     string
}

// ChecklistItem is the primary-port view of one checklist item template.
type ChecklistItem struct {
	ID                   string
	SopID                string
	StepNumber           int
	Title                string
	Instructions         string
	GeneratesObservation bool
	TriggerTiming        string
	KnowledgeType        string
	ProductID            string
	TechniqueID          string
	ToolMethodID         string
	CombinationID        string
}

// ObservationConfig is the SOP-side configuration the trigger pipeline reads.
type ObservationConfig struct {
	Sop             *Sop
	Items           []*ChecklistItem // generates_observation only, step order
	ObservationMode string
}

// CreateSopRequest contains parameters for creating an SOP.
type CreateSopRequest struct {
	SopCode                       string
	Title                         string
	Description                   string
	Category                      string
	Trade                         string
	ObservationMode               string // defaults to standard
	RequiredSupervisedCompletions int    // defaults to 3
}

// CreateSopResponse contains the result of creating an SOP or version.
type CreateSopResponse struct {
	SopID string
	Sop   *Sop
}

// CreateVersionRequest contains parameters for creating a new SOP version.
// Zero-valued patch fields inherit from the superseded version.
type CreateVersionRequest struct {
	SopCode                       string
	Title                         string
	Description                   string
	Category                      string
	Trade                         string
	ObservationMode               string
	RequiredSupervisedCompletions int
	VersionNotes                  string
}

// UpdateSopRequest contains parameters for updating an SOP version.
type UpdateSopRequest struct {
	SopID       string
	Title       string
	Description string
}

// SopFilters contains filter options for listing SOP versions.
type SopFilters struct {
	Status      string
	Category    string
	CurrentOnly bool
	Limit       int
}

// AddChecklistItemRequest contains parameters for appending a checklist item.
type AddChecklistItemRequest struct {
	SopID                string
	Title                string
	Instructions         string
	GeneratesObservation bool
	TriggerTiming        string // defaults to on_check
	KnowledgeType        string
	ProductID            string
	TechniqueID          string
	ToolMethodID         string
	CombinationID        string
}

// InsertChecklistItemRequest contains parameters for inserting a checklist
// item after an existing step.
type InsertChecklistItemRequest struct {
	AddChecklistItemRequest
	AfterStep int
}
