package primary

import "context"

// CallbackService defines the primary port for callback outcome
// propagation.
type CallbackService interface {
	// CreateCallbackProject clones an original project into a remedial
	// callback project linked back to it.
	CreateCallbackProject(ctx context.Context, req CreateCallbackRequest) (*Project, error)

	// PropagateCallbackOutcomes annotates original-project observations
	// that match the callback project's observations, and returns the
	// number annotated.
	PropagateCallbackOutcomes(ctx context.Context, callbackProjectID string) (*PropagationReport, error)

	// GetProject retrieves a project by ID.
	GetProject(ctx context.Context, projectID string) (*Project, error)

	// CreateProject creates a standard project (boundary helper).
	CreateProject(ctx context.Context, name string) (*Project, error)
}

// Project is the primary-port view of a project.
type Project struct {
	ID                     string
	Name                   string
	IntegrationProjectType string
	LinkedProjectID        string
	CallbackReason         string
	Budget                 float64
	Status                 string
	CreatedAt              string
}

// CreateCallbackRequest contains parameters for creating a callback project.
type CreateCallbackRequest struct {
	OriginalProjectID string
	Reason            string
	Name              string // defaults to "<original name> (callback)"
}

// PropagationReport summarizes one propagation pass.
type PropagationReport struct {
	CallbackProjectID string
	OriginalProjectID string
	Annotated         int
}
