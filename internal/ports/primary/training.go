package primary

import "context"

// TrainingService defines the primary port for the certification tracker.
// The tracker is a soft gate: it reports status and never blocks execution.
type TrainingService interface {
	// GetOrCreate looks up or creates the record for a (crew member, SOP)
	// pair. Idempotent.
	GetOrCreate(ctx context.Context, crewMemberID, sopID string) (*Training, error)

	// RecordSupervisedCompletion appends a supervised completion and
	// promotes in_progress records that reach the SOP's requirement.
	RecordSupervisedCompletion(ctx context.Context, req SupervisedCompletionRequest) (*Training, error)

	// RecordReviewAttempt appends a numbered review attempt. Never changes
	// the record's status.
	RecordReviewAttempt(ctx context.Context, req ReviewAttemptRequest) (*Training, error)

	// Certify certifies a crew member on an SOP. Always a manual action.
	Certify(ctx context.Context, req CertifyRequest) (*Training, error)

	// IsCertified reports whether a crew member is certified for an SOP.
	IsCertified(ctx context.Context, crewMemberID, sopID string) (bool, error)

	// ListByCrewMember lists a crew member's training records.
	ListByCrewMember(ctx context.Context, crewMemberID string) ([]*Training, error)

	// ListBySop lists training records for an SOP.
	ListBySop(ctx context.Context, sopID string) ([]*Training, error)
}

// Training is the primary-port view of a training record.
type Training struct {
	ID                    string
	CrewMemberID          string
	SopID                 string
	Status                string
	CertifiedAt           string
	CertifiedBy           string
	SupervisedCompletions []*SupervisedCompletion
	ReviewAttempts        []*ReviewAttempt
	CreatedAt             string
}

// SupervisedCompletion is one supervised SOP execution.
type SupervisedCompletion struct {
	ID           string
	SupervisedBy string
	TaskID       string
	Notes        string
	CompletedAt  string
}

// ReviewAttempt is one certification review attempt.
type ReviewAttempt struct {
	ID            string
	AttemptNumber int
	Score         int
	Passed        bool
	ReviewedBy    string
	AttemptedAt   string
}

// SupervisedCompletionRequest contains parameters for recording a
// supervised completion.
type SupervisedCompletionRequest struct {
	CrewMemberID string
	SopID        string
	SupervisedBy string
	TaskID       string
	Notes        string
}

// ReviewAttemptRequest contains parameters for recording a review attempt.
type ReviewAttemptRequest struct {
	CrewMemberID string
	SopID        string
	Score        int
	Passed       bool
	ReviewedBy   string
}

// CertifyRequest contains parameters for certifying a crew member.
type CertifyRequest struct {
	CrewMemberID string
	SopID        string
	CertifiedBy  string
}
