package secondary

import "context"

// KnowledgeRepository defines the secondary port for knowledge item
// persistence.
type KnowledgeRepository interface {
	// Create persists a new knowledge item.
	Create(ctx context.Context, item *KnowledgeRecord) error

	// GetByID retrieves a knowledge item by its ID.
	GetByID(ctx context.Context, id string) (*KnowledgeRecord, error)

	// List retrieves knowledge items matching the given filters.
	List(ctx context.Context, filters KnowledgeFilters) ([]*KnowledgeRecord, error)

	// Update updates an existing knowledge item.
	Update(ctx context.Context, item *KnowledgeRecord) error

	// GetNextID returns the next available knowledge item ID.
	GetNextID(ctx context.Context) (string, error)
}

// KnowledgeRecord represents a knowledge item as stored in persistence.
// Catalog ID arrays are stored as JSON in the adapter.
type KnowledgeRecord struct {
	ID                   string
	Title                string
	KnowledgeType        string
	Category             string
	Trade                string
	ProductIDs           []string
	TechniqueIDs         []string
	ToolMethodIDs        []string
	ConfidenceScore      int
	Status               string // draft, published, under_review, deprecated
	ObservationCount     int
	ExperimentCount      int
	CrewAgreementRate    *float64 // nil when no agreement data exists
	LastConfidenceUpdate string   // Empty string means null
	CreatedAt            string
	UpdatedAt            string
}

// KnowledgeFilters contains filter options for querying knowledge items.
type KnowledgeFilters struct {
	Status        string
	KnowledgeType string
	Limit         int
}

// LinkRepository defines the secondary port for observation-knowledge edges.
type LinkRepository interface {
	// Create persists a new link.
	Create(ctx context.Context, link *LinkRecord) error

	// ListByObservation retrieves links for an observation.
	ListByObservation(ctx context.Context, observationID string) ([]*LinkRecord, error)

	// ListByKnowledgeItem retrieves links pointing at a knowledge item.
	ListByKnowledgeItem(ctx context.Context, knowledgeItemID string) ([]*LinkRecord, error)

	// DeleteAutoDetected removes an observation's auto_detected links only,
	// preserving manual and experiment links, and returns the number deleted.
	DeleteAutoDetected(ctx context.Context, observationID string) (int, error)
}

// LinkRecord represents a directed observation -> knowledge item edge.
type LinkRecord struct {
	ID              string
	ObservationID   string
	KnowledgeItemID string
	LinkType        string // auto_detected, labs_assigned, experiment_required
	LinkConfidence  *int   // nil when unscored (manual links)
	CreatedAt       string
}

// ConfidenceEventRepository defines the secondary port for the append-only
// confidence ledger. Events are never updated or deleted.
type ConfidenceEventRepository interface {
	// Create appends a ledger entry.
	Create(ctx context.Context, event *ConfidenceEventRecord) error

	// ListByItem retrieves an item's full ledger, newest first.
	ListByItem(ctx context.Context, knowledgeItemID string) ([]*ConfidenceEventRecord, error)
}

// ConfidenceEventRecord represents one confidence recalculation.
type ConfidenceEventRecord struct {
	ID                 string
	KnowledgeItemID    string
	EventType          string
	SourceID           string // Empty string means null
	Notes              string
	ConfidenceChange   int
	NewConfidenceScore int
	CreatedAt          string
}

// ChallengeRepository defines the secondary port for knowledge challenges.
type ChallengeRepository interface {
	// Create persists a new challenge.
	Create(ctx context.Context, challenge *ChallengeRecord) error

	// GetByID retrieves a challenge by its ID.
	GetByID(ctx context.Context, id string) (*ChallengeRecord, error)

	// ListByItem retrieves challenges against a knowledge item.
	ListByItem(ctx context.Context, knowledgeItemID string) ([]*ChallengeRecord, error)

	// CountActive returns the number of pending challenges for an item.
	CountActive(ctx context.Context, knowledgeItemID string) (int, error)

	// Update updates an existing challenge (resolution fields).
	Update(ctx context.Context, challenge *ChallengeRecord) error

	// GetNextID returns the next available challenge ID.
	GetNextID(ctx context.Context) (string, error)
}

// ChallengeRecord represents a dispute against a knowledge item.
type ChallengeRecord struct {
	ID              string
	KnowledgeItemID string
	ChallengedBy    string
	Reason          string
	Status          string // pending, resolved
	Resolution      string
	CreatedAt       string
	ResolvedAt      string // Empty string means null
}
