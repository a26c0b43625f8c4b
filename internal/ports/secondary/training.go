package secondary

import "context"

// TrainingRepository defines the secondary port for training record
// persistence.
type TrainingRepository interface {
	// Create persists a new training record.
	Create(ctx context.Context, record *TrainingRecord) error

	// GetByCrewAndSop retrieves the record for a (crew member, SOP) pair.
	GetByCrewAndSop(ctx context.Context, crewMemberID, sopID string) (*TrainingRecord, error)

	// ListByCrewMember retrieves all records for a crew member.
	ListByCrewMember(ctx context.Context, crewMemberID string) ([]*TrainingRecord, error)

	// ListBySop retrieves all records for an SOP.
	ListBySop(ctx context.Context, sopID string) ([]*TrainingRecord, error)

	// Update updates an existing training record.
	Update(ctx context.Context, record *TrainingRecord) error

	// AddSupervisedCompletion appends a supervised completion entry.
	AddSupervisedCompletion(ctx context.Context, entry *SupervisedCompletionRecord) error

	// CountSupervisedCompletions returns the completion count for a record.
	CountSupervisedCompletions(ctx context.Context, trainingRecordID string) (int, error)

	// ListSupervisedCompletions retrieves a record's completion history.
	ListSupervisedCompletions(ctx context.Context, trainingRecordID string) ([]*SupervisedCompletionRecord, error)

	// AddReviewAttempt appends a review attempt entry.
	AddReviewAttempt(ctx context.Context, entry *ReviewAttemptRecord) error

	// CountReviewAttempts returns the review attempt count for a record.
	CountReviewAttempts(ctx context.Context, trainingRecordID string) (int, error)

	// ListReviewAttempts retrieves a record's review attempt history.
	ListReviewAttempts(ctx context.Context, trainingRecordID string) ([]*ReviewAttemptRecord, error)

	// GetNextID returns the next available training record ID.
	GetNextID(ctx context.Context) (string, error)
}

// TrainingRecord represents certification progress for one crew member on
// one SOP.
type TrainingRecord struct {
	ID           string
	CrewMemberID string
	SopID        string
	Status       string // in_progress, review_ready, certified
	CertifiedAt  string // Empty string means null
	CertifiedBy  string // Empty string means null
	CreatedAt    string
	UpdatedAt    string
}

// SupervisedCompletionRecord represents one supervised SOP execution.
// Append-only.
type SupervisedCompletionRecord struct {
	ID               string
	TrainingRecordID string
	SupervisedBy     string
	TaskID           string
	Notes            string
	CompletedAt      string
}

// ReviewAttemptRecord represents one certification review attempt.
// Append-only; attempts never change the record's status by themselves.
type ReviewAttemptRecord struct {
	ID               string
	TrainingRecordID string
	AttemptNumber    int
	Score            int
	Passed           bool
	ReviewedBy       string
	AttemptedAt      string
}
