package primary

import "context"

// ActivityService defines the primary port for reading the activity feed.
type ActivityService interface {
	// ListActivity retrieves events for a project, newest first.
	ListActivity(ctx context.Context, projectID string, limit int) ([]*ActivityEntry, error)
}

// ActivityEntry is the primary-port view of one activity event.
type ActivityEntry struct {
	ID               string
	EventType        string
	ProjectID        string
	EntityType       string
	EntityID         string
	Summary          string
	EventData        string
	HomeownerVisible bool
	CreatedAt        string
}
