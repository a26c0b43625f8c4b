package primary

import "context"

// LinkerService defines the primary port for the observation-knowledge
// linker.
type LinkerService interface {
	// LinkObservation matches an observation against every knowledge item
	// and creates auto-detected links for the matches.
	LinkObservation(ctx context.Context, observationID string) (*LinkReport, error)

	// RelinkObservation deletes an observation's auto-detected links and
	// reruns matching. Manual and experiment links survive.
	RelinkObservation(ctx context.Context, observationID string) (*LinkReport, error)

	// AddManualLink creates a labs_assigned or experiment_required link.
	AddManualLink(ctx context.Context, req AddManualLinkRequest) (*Link, error)

	// GetObservationContext retrieves the links for an observation.
	GetObservationContext(ctx context.Context, observationID string) ([]*Link, error)

	// GetEvidenceForKnowledgeItem retrieves the observations linked to an
	// item, with the link that connects each.
	GetEvidenceForKnowledgeItem(ctx context.Context, knowledgeItemID string) ([]*Evidence, error)
}

// Link is the primary-port view of an observation-knowledge edge.
type Link struct {
	ID              string
	ObservationID   string
	KnowledgeItemID string
	LinkType        string
	LinkConfidence  *int
	Rule            string // matching rule that created an auto link
	CreatedAt       string
}

// LinkReport summarizes one linking pass.
type LinkReport struct {
	ObservationID string
	Links         []*Link
	Removed       int // auto links deleted before a relink pass
}

// AddManualLinkRequest contains parameters for a manual link.
type AddManualLinkRequest struct {
	ObservationID   string
	KnowledgeItemID string
	LinkType        string // labs_assigned or experiment_required
}

// Evidence pairs an observation with the link that attaches it to an item.
type Evidence struct {
	Observation *Observation
	Link        *Link
}

// ConfidenceService defines the primary port for the confidence scoring
// engine and knowledge item lifecycle.
type ConfidenceService interface {
	// CreateKnowledgeItem creates a draft knowledge item.
	CreateKnowledgeItem(ctx context.Context, req CreateKnowledgeItemRequest) (*KnowledgeItem, error)

	// GetKnowledgeItem retrieves a knowledge item by ID.
	GetKnowledgeItem(ctx context.Context, itemID string) (*KnowledgeItem, error)

	// ListKnowledgeItems lists items with optional filters.
	ListKnowledgeItems(ctx context.Context, filters KnowledgeFilters) ([]*KnowledgeItem, error)

	// CalculateScore computes an item's score without side effects.
	CalculateScore(ctx context.Context, itemID string) (int, error)

	// RecordEvent recomputes the score, appends one ledger entry, and
	// applies the automatic status transition.
	RecordEvent(ctx context.Context, req RecordEventRequest) (*ConfidenceEvent, error)

	// GetHistory retrieves an item's full confidence ledger, newest first.
	GetHistory(ctx context.Context, itemID string) ([]*ConfidenceEvent, error)

	// OpenChallenge opens a dispute against an item.
	OpenChallenge(ctx context.Context, req OpenChallengeRequest) (*Challenge, error)

	// ResolveChallenge resolves a pending challenge.
	ResolveChallenge(ctx context.Context, req ResolveChallengeRequest) error

	// PublishKnowledgeItem manually publishes an item (external action).
	PublishKnowledgeItem(ctx context.Context, itemID string) error

	// DeprecateKnowledgeItem manually deprecates an item (external action).
	DeprecateKnowledgeItem(ctx context.Context, itemID string) error
}

// KnowledgeItem is the primary-port view of a knowledge item.
type KnowledgeItem struct {
	ID                   string
	Title                string
	KnowledgeType        string
	Category             string
	Trade                string
	ProductIDs           []string
	TechniqueIDs         []string
	ToolMethodIDs        []string
	ConfidenceScore      int
	Status               string
	ObservationCount     int
	ExperimentCount      int
	CrewAgreementRate    *float64
	LastConfidenceUpdate string
	CreatedAt            string
}

// KnowledgeFilters contains filter options for listing knowledge items.
type KnowledgeFilters struct {
	Status        string
	KnowledgeType string
	Limit         int
}

// CreateKnowledgeItemRequest contains parameters for creating an item.
type CreateKnowledgeItemRequest struct {
	Title             string
	KnowledgeType     string
	Category          string
	Trade             string
	ProductIDs        []string
	TechniqueIDs      []string
	ToolMethodIDs     []string
	CrewAgreementRate *float64
}

// RecordEventRequest contains parameters for a scoring event.
type RecordEventRequest struct {
	KnowledgeItemID string
	EventType       string // observation_linked, experiment_completed, challenge_opened, ...
	SourceID        string
	Notes           string
}

// ConfidenceEvent is the primary-port view of one ledger entry.
type ConfidenceEvent struct {
	ID                 string
	KnowledgeItemID    string
	EventType          string
	SourceID           string
	Notes              string
	ConfidenceChange   int
	NewConfidenceScore int
	CreatedAt          string
}

// OpenChallengeRequest contains parameters for opening a challenge.
type OpenChallengeRequest struct {
	KnowledgeItemID string
	ChallengedBy    string
	Reason          string
}

// ResolveChallengeRequest contains parameters for resolving a challenge.
type ResolveChallengeRequest struct {
	ChallengeID string
	Resolution  string
}

// Challenge is the primary-port view of a knowledge challenge.
type Challenge struct {
	ID              string
	KnowledgeItemID string
	ChallengedBy    string
	Reason          string
	Status          string
	Resolution      string
	CreatedAt       string
	ResolvedAt      string
}
