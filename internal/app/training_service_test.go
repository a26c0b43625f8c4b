package app

import (
	"context"
	"testing"

	"github.com/example/fieldloop/internal/ports/primary"
)

// ============================================================================
// Test Helper
// ============================================================================

func newTestTrainingService() (*TrainingServiceImpl, *mockTrainingRepository, *mockSopRepository, *mockActivityLogger) {
	trainingRepo := newMockTrainingRepository()
	sopRepo := newMockSopRepository()
	activityLog := newMockActivityLogger()
	service := NewTrainingService(trainingRepo, sopRepo, activityLog)
	return service, trainingRepo, sopRepo, activityLog
}

func recordCompletions(t *testing.T, service *TrainingServiceImpl, crew, sopID string, count int) *primary.Training {
	t.Helper()
	var training *primary.Training
	for i := 0; i < count; i++ {
		var err error
		training, err = service.RecordSupervisedCompletion(context.Background(), primary.SupervisedCompletionRequest{
			CrewMemberID: crew,
			SopID:        sopID,
			SupervisedBy: "lead-1",
		})
		if err != nil {
			t.Fatalf("failed to record completion %d: %v", i+1, err)
		}
	}
	return training
}

// ============================================================================
// GetOrCreate Tests
// ============================================================================

func TestGetOrCreate_CreatesInProgressRecord(t *testing.T) {
	service, _, sopRepo, _ := newTestTrainingService()
	ctx := context.Background()
	seedMockSop(sopRepo)

	training, err := service.GetOrCreate(ctx, "crew-1", "SOP-001")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if training.Status != "in_progress" {
		t.Errorf("expected in_progress, got '%s'", training.Status)
	}
	if training.CrewMemberID != "crew-1" {
		t.Errorf("expected crew-1, got '%s'", training.CrewMemberID)
	}
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	service, trainingRepo, sopRepo, _ := newTestTrainingService()
	ctx := context.Background()
	seedMockSop(sopRepo)

	first, err := service.GetOrCreate(ctx, "crew-1", "SOP-001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := service.GetOrCreate(ctx, "crew-1", "SOP-001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected same record, got %s and %s", first.ID, second.ID)
	}
	if len(trainingRepo.records) != 1 {
		t.Errorf("expected 1 record, got %d", len(trainingRepo.records))
	}
}

func TestGetOrCreate_UnknownSop(t *testing.T) {
	service, _, _, _ := newTestTrainingService()
	ctx := context.Background()

	_, err := service.GetOrCreate(ctx, "crew-1", "SOP-999")

	if err == nil {
		t.Fatal("expected error for unknown SOP")
	}
}

// ============================================================================
// Supervised Completion Tests
// ============================================================================

func TestRecordSupervisedCompletion_BelowThresholdStaysInProgress(t *testing.T) {
	service, _, sopRepo, _ := newTestTrainingService()
	seedMockSop(sopRepo)

	training := recordCompletions(t, service, "crew-1", "SOP-001", 2)

	if training.Status != "in_progress" {
		t.Errorf("expected in_progress below threshold, got '%s'", training.Status)
	}
	if len(training.SupervisedCompletions) != 2 {
		t.Errorf("expected 2 completions, got %d", len(training.SupervisedCompletions))
	}
}

func TestRecordSupervisedCompletion_PromotesAtThreshold(t *testing.T) {
	service, _, sopRepo, activityLog := newTestTrainingService()
	seedMockSop(sopRepo)

	training := recordCompletions(t, service, "crew-1", "SOP-001", 3)

	if training.Status != "review_ready" {
		t.Errorf("expected review_ready at threshold, got '%s'", training.Status)
	}
	if !activityLog.hasEvent("training_review_ready") {
		t.Error("expected training_review_ready activity event")
	}
}

func TestRecordSupervisedCompletion_HonorsSopRequirement(t *testing.T) {
	service, _, sopRepo, _ := newTestTrainingService()
	sopRecord := seedMockSop(sopRepo)
	sopRecord.RequiredSupervisedCompletions = 5

	training := recordCompletions(t, service, "crew-1", "SOP-001", 3)
	if training.Status != "in_progress" {
		t.Errorf("expected in_progress below a raised threshold, got '%s'", training.Status)
	}

	training = recordCompletions(t, service, "crew-1", "SOP-001", 2)
	if training.Status != "review_ready" {
		t.Errorf("expected review_ready at 5 completions, got '%s'", training.Status)
	}
}

func TestRecordSupervisedCompletion_MissingSupervisor(t *testing.T) {
	service, _, sopRepo, _ := newTestTrainingService()
	ctx := context.Background()
	seedMockSop(sopRepo)

	_, err := service.RecordSupervisedCompletion(ctx, primary.SupervisedCompletionRequest{
		CrewMemberID: "crew-1",
		SopID:        "SOP-001",
	})

	if err == nil {
		t.Fatal("expected error for missing supervisor")
	}
}

// ============================================================================
// Review Attempt Tests
// ============================================================================

func TestRecordReviewAttempt_NumbersSequentially(t *testing.T) {
	service, _, sopRepo, _ := newTestTrainingService()
	ctx := context.Background()
	seedMockSop(sopRepo)
	recordCompletions(t, service, "crew-1", "SOP-001", 3)

	_, err := service.RecordReviewAttempt(ctx, primary.ReviewAttemptRequest{
		CrewMemberID: "crew-1", SopID: "SOP-001", Score: 62, Passed: false, ReviewedBy: "lead-1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	training, err := service.RecordReviewAttempt(ctx, primary.ReviewAttemptRequest{
		CrewMemberID: "crew-1", SopID: "SOP-001", Score: 88, Passed: true, ReviewedBy: "lead-1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(training.ReviewAttempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(training.ReviewAttempts))
	}
	if training.ReviewAttempts[1].AttemptNumber != 2 {
		t.Errorf("expected attempt number 2, got %d", training.ReviewAttempts[1].AttemptNumber)
	}
}

func TestRecordReviewAttempt_PassNeverCertifies(t *testing.T) {
	service, _, sopRepo, _ := newTestTrainingService()
	ctx := context.Background()
	seedMockSop(sopRepo)
	recordCompletions(t, service, "crew-1", "SOP-001", 3)

	training, err := service.RecordReviewAttempt(ctx, primary.ReviewAttemptRequest{
		CrewMemberID: "crew-1", SopID: "SOP-001", Score: 95, Passed: true, ReviewedBy: "lead-1",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if training.Status != "review_ready" {
		t.Errorf("expected a passing attempt to leave status untouched, got '%s'", training.Status)
	}
}

// ============================================================================
// Certify Tests
// ============================================================================

func TestCertify_Success(t *testing.T) {
	service, _, sopRepo, activityLog := newTestTrainingService()
	ctx := context.Background()
	seedMockSop(sopRepo)
	recordCompletions(t, service, "crew-1", "SOP-001", 3)

	training, err := service.Certify(ctx, primary.CertifyRequest{
		CrewMemberID: "crew-1", SopID: "SOP-001", CertifiedBy: "lead-1",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if training.Status != "certified" {
		t.Errorf("expected certified, got '%s'", training.Status)
	}
	if training.CertifiedAt == "" {
		t.Error("expected certification timestamp")
	}
	if training.CertifiedBy != "lead-1" {
		t.Errorf("expected certifier lead-1, got '%s'", training.CertifiedBy)
	}
	if !activityLog.hasEvent("crew_certified") {
		t.Error("expected crew_certified activity event")
	}
}

func TestCertify_AlreadyCertified(t *testing.T) {
	service, _, sopRepo, _ := newTestTrainingService()
	ctx := context.Background()
	seedMockSop(sopRepo)
	recordCompletions(t, service, "crew-1", "SOP-001", 3)
	if _, err := service.Certify(ctx, primary.CertifyRequest{CrewMemberID: "crew-1", SopID: "SOP-001", CertifiedBy: "lead-1"}); err != nil {
		t.Fatalf("first certification failed: %v", err)
	}

	_, err := service.Certify(ctx, primary.CertifyRequest{CrewMemberID: "crew-1", SopID: "SOP-001", CertifiedBy: "lead-2"})

	if err == nil {
		t.Fatal("expected error for repeat certification")
	}
}

func TestCertify_NoRecord(t *testing.T) {
	service, _, sopRepo, _ := newTestTrainingService()
	ctx := context.Background()
	seedMockSop(sopRepo)

	_, err := service.Certify(ctx, primary.CertifyRequest{CrewMemberID: "crew-9", SopID: "SOP-001", CertifiedBy: "lead-1"})

	if err == nil {
		t.Fatal("expected error for missing training record")
	}
}

// ============================================================================
// IsCertified Tests
// ============================================================================

func TestIsCertified(t *testing.T) {
	service, _, sopRepo, _ := newTestTrainingService()
	ctx := context.Background()
	seedMockSop(sopRepo)
	recordCompletions(t, service, "crew-1", "SOP-001", 3)

	certified, err := service.IsCertified(ctx, "crew-1", "SOP-001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if certified {
		t.Error("expected review_ready crew to read as not certified")
	}

	if _, err := service.Certify(ctx, primary.CertifyRequest{CrewMemberID: "crew-1", SopID: "SOP-001", CertifiedBy: "lead-1"}); err != nil {
		t.Fatalf("certification failed: %v", err)
	}

	certified, err = service.IsCertified(ctx, "crew-1", "SOP-001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !certified {
		t.Error("expected certified crew to read as certified")
	}
}

func TestIsCertified_NoRecordIsNotAnError(t *testing.T) {
	service, _, _, _ := newTestTrainingService()
	ctx := context.Background()

	certified, err := service.IsCertified(ctx, "crew-9", "SOP-001")

	if err != nil {
		t.Fatalf("expected no error for missing record, got %v", err)
	}
	if certified {
		t.Error("expected missing record to read as not certified")
	}
}
