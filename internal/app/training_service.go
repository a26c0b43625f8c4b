package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/fieldloop/internal/core/training"
	"github.com/example/fieldloop/internal/ports/primary"
	"github.com/example/fieldloop/internal/ports/secondary"
)

// TrainingServiceImpl implements the TrainingService interface.
type TrainingServiceImpl struct {
	trainingRepo secondary.TrainingRepository
	sopRepo      secondary.SopRepository
	activityLog  secondary.ActivityLogger
	now          func() time.Time
}

// NewTrainingService creates a new TrainingService with injected dependencies.
func NewTrainingService(
	trainingRepo secondary.TrainingRepository,
	sopRepo secondary.SopRepository,
	activityLog secondary.ActivityLogger,
) *TrainingServiceImpl {
	return &TrainingServiceImpl{
		trainingRepo: trainingRepo,
		sopRepo:      sopRepo,
		activityLog:  activityLog,
		now:          time.Now,
	}
}

// GetOrCreate looks up or creates the record for a (crew member, SOP) pair.
func (s *TrainingServiceImpl) GetOrCreate(ctx context.Context, crewMemberID, sopID string) (*primary.Training, error) {
	if crewMemberID == "" {
		return nil, fmt.Errorf("crew member ID is required")
	}

	if _, err := s.sopRepo.GetByID(ctx, sopID); err != nil {
		return nil, err
	}

	record, err := s.trainingRepo.GetByCrewAndSop(ctx, crewMemberID, sopID)
	if err == nil {
		return s.loadTraining(ctx, record)
	}

	nextID, err := s.trainingRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate training record ID: %w", err)
	}

	record = &secondary.TrainingRecord{
		ID:           nextID,
		CrewMemberID: crewMemberID,
		SopID:        sopID,
		Status:       string(training.InitialStatus()),
	}
	if err := s.trainingRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create training record: %w", err)
	}

	created, err := s.trainingRepo.GetByCrewAndSop(ctx, crewMemberID, sopID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created training record: %w", err)
	}
	return s.loadTraining(ctx, created)
}

// RecordSupervisedCompletion appends a supervised completion and promotes
// in_progress records that reach the SOP's requirement.
func (s *TrainingServiceImpl) RecordSupervisedCompletion(ctx context.Context, req primary.SupervisedCompletionRequest) (*primary.Training, error) {
	if req.SupervisedBy == "" {
		return nil, fmt.Errorf("supervisor is required")
	}

	if _, err := s.GetOrCreate(ctx, req.CrewMemberID, req.SopID); err != nil {
		return nil, err
	}
	record, err := s.trainingRepo.GetByCrewAndSop(ctx, req.CrewMemberID, req.SopID)
	if err != nil {
		return nil, err
	}

	entry := &secondary.SupervisedCompletionRecord{
		ID:               uuid.NewString(),
		TrainingRecordID: record.ID,
		SupervisedBy:     req.SupervisedBy,
		TaskID:           req.TaskID,
		Notes:            req.Notes,
	}
	if err := s.trainingRepo.AddSupervisedCompletion(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record supervised completion: %w", err)
	}

	count, err := s.trainingRepo.CountSupervisedCompletions(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	required := s.requiredCompletions(ctx, req.SopID)
	next := training.NextStatusAfterCompletion(training.TrainingStatus(record.Status), count, required)
	if string(next) != record.Status {
		record.Status = string(next)
		if err := s.trainingRepo.Update(ctx, record); err != nil {
			return nil, err
		}
		s.logActivity(ctx, "training_review_ready", record.ID,
			fmt.Sprintf("%s is review-ready for %s after %d supervised completions", record.CrewMemberID, record.SopID, count))
	}

	return s.loadTraining(ctx, record)
}

// RecordReviewAttempt appends a numbered review attempt. Never changes the
// record's status - certification stays a manual step even after a pass.
func (s *TrainingServiceImpl) RecordReviewAttempt(ctx context.Context, req primary.ReviewAttemptRequest) (*primary.Training, error) {
	record, err := s.trainingRepo.GetByCrewAndSop(ctx, req.CrewMemberID, req.SopID)
	if err != nil {
		return nil, err
	}

	count, err := s.trainingRepo.CountReviewAttempts(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	entry := &secondary.ReviewAttemptRecord{
		ID:               uuid.NewString(),
		TrainingRecordID: record.ID,
		AttemptNumber:    count + 1,
		Score:            req.Score,
		Passed:           req.Passed,
		ReviewedBy:       req.ReviewedBy,
	}
	if err := s.trainingRepo.AddReviewAttempt(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record review attempt: %w", err)
	}

	return s.loadTraining(ctx, record)
}

// Certify certifies a crew member on an SOP. Always a manual action.
func (s *TrainingServiceImpl) Certify(ctx context.Context, req primary.CertifyRequest) (*primary.Training, error) {
	if req.CertifiedBy == "" {
		return nil, fmt.Errorf("certifier is required")
	}

	record, err := s.trainingRepo.GetByCrewAndSop(ctx, req.CrewMemberID, req.SopID)
	if err != nil {
		return nil, err
	}

	if record.Status == string(training.StatusCertified) {
		return nil, fmt.Errorf("%s is already certified for %s", req.CrewMemberID, req.SopID)
	}

	record.Status = string(training.StatusCertified)
	record.CertifiedAt = s.now().UTC().Format(time.RFC3339)
	record.CertifiedBy = req.CertifiedBy

	if err := s.trainingRepo.Update(ctx, record); err != nil {
		return nil, err
	}

	s.logActivity(ctx, "crew_certified", record.ID,
		fmt.Sprintf("%s certified for %s by %s", record.CrewMemberID, record.SopID, req.CertifiedBy))

	return s.loadTraining(ctx, record)
}

// IsCertified reports whether a crew member is certified for an SOP.
func (s *TrainingServiceImpl) IsCertified(ctx context.Context, crewMemberID, sopID string) (bool, error) {
	record, err := s.trainingRepo.GetByCrewAndSop(ctx, crewMemberID, sopID)
	if err != nil {
		// No record means not certified, not an error
		return false, nil
	}
	return record.Status == string(training.StatusCertified), nil
}

// ListByCrewMember lists a crew member's training records.
func (s *TrainingServiceImpl) ListByCrewMember(ctx context.Context, crewMemberID string) ([]*primary.Training, error) {
	records, err := s.trainingRepo.ListByCrewMember(ctx, crewMemberID)
	if err != nil {
		return nil, err
	}
	return s.loadTrainings(ctx, records)
}

// ListBySop lists training records for an SOP.
func (s *TrainingServiceImpl) ListBySop(ctx context.Context, sopID string) ([]*primary.Training, error) {
	records, err := s.trainingRepo.ListBySop(ctx, sopID)
	if err != nil {
		return nil, err
	}
	return s.loadTrainings(ctx, records)
}

// Helper methods

// requiredCompletions reads the SOP's requirement, falling back to the
// default when the SOP cannot be loaded.
func (s *TrainingServiceImpl) requiredCompletions(ctx context.Context, sopID string) int {
	record, err := s.sopRepo.GetByID(ctx, sopID)
	if err != nil || record.RequiredSupervisedCompletions <= 0 {
		return 3
	}
	return record.RequiredSupervisedCompletions
}

func (s *TrainingServiceImpl) loadTrainings(ctx context.Context, records []*secondary.TrainingRecord) ([]*primary.Training, error) {
	trainings := make([]*primary.Training, len(records))
	for i, r := range records {
		t, err := s.loadTraining(ctx, r)
		if err != nil {
			return nil, err
		}
		trainings[i] = t
	}
	return trainings, nil
}

// loadTraining assembles the full primary view with completion and attempt
// history.
func (s *TrainingServiceImpl) loadTraining(ctx context.Context, r *secondary.TrainingRecord) (*primary.Training, error) {
	completions, err := s.trainingRepo.ListSupervisedCompletions(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.trainingRepo.ListReviewAttempts(ctx, r.ID)
	if err != nil {
		return nil, err
	}

	t := &primary.Training{
		ID:           r.ID,
		CrewMemberID: r.CrewMemberID,
		SopID:        r.SopID,
		Status:       r.Status,
		CertifiedAt:  r.CertifiedAt,
		CertifiedBy:  r.CertifiedBy,
		CreatedAt:    r.CreatedAt,
	}
	for _, c := range completions {
		t.SupervisedCompletions = append(t.SupervisedCompletions, &primary.SupervisedCompletion{
			ID:           c.ID,
			SupervisedBy: c.SupervisedBy,
			TaskID:       c.TaskID,
			Notes:        c.Notes,
			CompletedAt:  c.CompletedAt,
		})
	}
	for _, a := range attempts {
		t.ReviewAttempts = append(t.ReviewAttempts, &primary.ReviewAttempt{
			ID:            a.ID,
			AttemptNumber: a.AttemptNumber,
			Score:         a.Score,
			Passed:        a.Passed,
			ReviewedBy:    a.ReviewedBy,
			AttemptedAt:   a.AttemptedAt,
		})
	}
	return t, nil
}

func (s *TrainingServiceImpl) logActivity(ctx context.Context, eventType, entityID, summary string) {
	if s.activityLog == nil {
		return
	}
	_ = s.activityLog.Log(ctx, secondary.ActivityEvent{
		EventType:  eventType,
		EntityType: "training_record",
		EntityID:   entityID,
		Summary:    summary,
	})
}

// Ensure TrainingServiceImpl implements the interface
var _ primary.TrainingService = (*TrainingServiceImpl)(nil)
