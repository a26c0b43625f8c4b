package secondary

import "context"

// ProjectRepository defines the secondary port for project persistence.
// Projects are a boundary entity here - full project management lives in
// an external system; this subsystem only needs cloning and lookups for
// callback propagation.
type ProjectRepository interface {
	// Create persists a new project.
	Create(ctx context.Context, project *ProjectRecord) error

	// GetByID retrieves a project by its ID.
	GetByID(ctx context.Context, id string) (*ProjectRecord, error)

	// List retrieves all projects.
	List(ctx context.Context) ([]*ProjectRecord, error)

	// GetNextID returns the next available project ID.
	GetNextID(ctx context.Context) (string, error)
}

// ProjectRecord represents a project as stored in persistence.
type ProjectRecord struct {
	ID                     string
	Name                   string
	IntegrationProjectType string // standard, callback
	LinkedProjectID        string // Empty string means null
	CallbackReason         string // Empty string means null; set on callback projects
	Budget                 float64
	Status                 string // active, complete, archived
	CreatedAt              string
	UpdatedAt              string
}
