package secondary

import "context"

// ActivityLogger defines the interface for emitting activity feed events.
// Emitting services must treat failures as recoverable: log locally and
// continue - pipeline correctness never depends on event delivery.
type ActivityLogger interface {
	// Log writes one event to the activity feed.
	Log(ctx context.Context, event ActivityEvent) error
}

// ActivityEvent is the fixed envelope for activity feed entries.
type ActivityEvent struct {
	EventType        string
	ProjectID        string
	EntityType       string
	EntityID         string
	Summary          string
	EventData        map[string]any
	HomeownerVisible bool
}

// ActivityRepository defines the secondary port for reading the activity
// feed back out (audit/UI surface).
type ActivityRepository interface {
	// Create persists a new activity event row.
	Create(ctx context.Context, record *ActivityRecord) error

	// ListByProject retrieves events for a project, newest first.
	ListByProject(ctx context.Context, projectID string, limit int) ([]*ActivityRecord, error)
}

// ActivityRecord represents an activity event as stored in persistence.
type ActivityRecord struct {
	ID               string
	EventType        string
	ProjectID        string // Empty string means null
	EntityType       string
	EntityID         string
	Summary          string
	EventData        string // JSON payload
	HomeownerVisible bool
	CreatedAt        string
}
