package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/example/fieldloop/internal/ports/primary"
	"github.com/example/fieldloop/internal/ports/secondary"
)

// ============================================================================
// Test Helper
// ============================================================================

type observationServiceMocks struct {
	sopRepo       *mockSopRepository
	checklistRepo *mockChecklistRepository
	pendingRepo   *mockPendingBatchRepository
	obsRepo       *mockObservationRepository
	trainingRepo  *mockTrainingRepository
	activityLog   *mockActivityLogger
}

func newTestObservationService() (*ObservationServiceImpl, *observationServiceMocks) {
	mocks := &observationServiceMocks{
		sopRepo:       newMockSopRepository(),
		checklistRepo: newMockChecklistRepository(),
		pendingRepo:   newMockPendingBatchRepository(),
		obsRepo:       newMockObservationRepository(),
		trainingRepo:  newMockTrainingRepository(),
		activityLog:   newMockActivityLogger(),
	}
	service := NewObservationService(
		mocks.sopRepo,
		mocks.checklistRepo,
		mocks.pendingRepo,
		mocks.obsRepo,
		mocks.trainingRepo,
		nil, // no linker in pipeline tests
		mocks.activityLog,
	)
	return service, mocks
}

func testDraft() primary.ObservationDraft {
	return primary.ObservationDraft{
		ProjectID:       "PROJ-001",
		TaskID:          "TASK-001",
		SopID:           "SOP-001",
		ChecklistItemID: "item-1",
		CrewMemberID:    "crew-1",
		KnowledgeType:   "product_performance",
		ProductID:       "PROD-100",
	}
}

// ============================================================================
// HandleChecklistCheck Tests
// ============================================================================

func TestHandleChecklistCheck_NoObservation(t *testing.T) {
	service, mocks := newTestObservationService()
	ctx := context.Background()
	sopRecord := seedMockSop(mocks.sopRepo)
	item := seedMockChecklistItem(mocks.checklistRepo, "item-1", sopRecord.ID, 1)
	item.GeneratesObservation = false

	resp, err := service.HandleChecklistCheck(ctx, primary.ChecklistCheckRequest{ChecklistItemID: "item-1"})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Outcome != "no_observation" {
		t.Errorf("expected outcome 'no_observation', got '%s'", resp.Outcome)
	}
	if resp.Draft != nil {
		t.Error("expected no draft for a silent item")
	}
}

func TestHandleChecklistCheck_ImmediateConfirm(t *testing.T) {
	service, mocks := newTestObservationService()
	ctx := context.Background()
	sopRecord := seedMockSop(mocks.sopRepo)
	seedMockChecklistItem(mocks.checklistRepo, "item-1", sopRecord.ID, 1)

	resp, err := service.HandleChecklistCheck(ctx, primary.ChecklistCheckRequest{
		ChecklistItemID: "item-1",
		ProjectID:       "PROJ-001",
		CrewMemberID:    "crew-1",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Outcome != "immediate_confirm" {
		t.Errorf("expected outcome 'immediate_confirm', got '%s'", resp.Outcome)
	}
	if resp.Draft == nil {
		t.Fatal("expected a draft")
	}
	if resp.Draft.ProjectID != "PROJ-001" {
		t.Errorf("expected draft project PROJ-001, got '%s'", resp.Draft.ProjectID)
	}
	if resp.Draft.KnowledgeType != "product_performance" {
		t.Errorf("expected draft knowledge type from template, got '%s'", resp.Draft.KnowledgeType)
	}
	// Nothing is persisted until the caller confirms
	if len(mocks.obsRepo.observations) != 0 {
		t.Error("expected no observation created by the check event")
	}
}

func TestHandleChecklistCheck_DetailedModeSetsRequiredFlags(t *testing.T) {
	service, mocks := newTestObservationService()
	ctx := context.Background()
	sopRecord := seedMockSop(mocks.sopRepo)
	sopRecord.ObservationMode = "detailed"
	seedMockChecklistItem(mocks.checklistRepo, "item-1", sopRecord.ID, 1)

	resp, err := service.HandleChecklistCheck(ctx, primary.ChecklistCheckRequest{ChecklistItemID: "item-1"})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !resp.Draft.PhotoRequired || !resp.Draft.NotesRequired || !resp.Draft.ConditionRequired {
		t.Error("expected detailed mode to mark photo, notes, and condition required")
	}
}

func TestHandleChecklistCheck_BatchQueuesDraft(t *testing.T) {
	service, mocks := newTestObservationService()
	ctx := context.Background()
	sopRecord := seedMockSop(mocks.sopRepo)
	item := seedMockChecklistItem(mocks.checklistRepo, "item-1", sopRecord.ID, 1)
	item.TriggerTiming = "batch"

	resp, err := service.HandleChecklistCheck(ctx, primary.ChecklistCheckRequest{
		ChecklistItemID: "item-1",
		TaskID:          "TASK-001",
		CrewMemberID:    "crew-1",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Outcome != "queued_batch" {
		t.Errorf("expected outcome 'queued_batch', got '%s'", resp.Outcome)
	}
	if resp.PendingID == "" {
		t.Fatal("expected a pending ID")
	}
	pending := mocks.pendingRepo.pending[resp.PendingID]
	if pending == nil {
		t.Fatal("expected pending draft to be persisted")
	}
	if pending.Status != "pending" {
		t.Errorf("expected pending status, got '%s'", pending.Status)
	}
}

func TestHandleChecklistCheck_BatchWithoutTaskRejected(t *testing.T) {
	service, mocks := newTestObservationService()
	ctx := context.Background()
	sopRecord := seedMockSop(mocks.sopRepo)
	item := seedMockChecklistItem(mocks.checklistRepo, "item-1", sopRecord.ID, 1)
	item.TriggerTiming = "batch"

	_, err := service.HandleChecklistCheck(ctx, primary.ChecklistCheckRequest{ChecklistItemID: "item-1"})

	if err == nil {
		t.Fatal("expected error for batch item without a task")
	}
}

func TestHandleChecklistCheck_ReportsCertification(t *testing.T) {
	service, mocks := newTestObservationService()
	ctx := context.Background()
	sopRecord := seedMockSop(mocks.sopRepo)
	seedMockChecklistItem(mocks.checklistRepo, "item-1", sopRecord.ID, 1)
	mocks.trainingRepo.records["TRAIN-001"] = &secondary.TrainingRecord{
		ID:           "TRAIN-001",
		CrewMemberID: "crew-1",
		SopID:        sopRecord.ID,
		Status:       "certified",
	}

	certified, err := service.HandleChecklistCheck(ctx, primary.ChecklistCheckRequest{
		ChecklistItemID: "item-1",
		CrewMemberID:    "crew-1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !certified.CrewCertified {
		t.Error("expected certified crew member to be reported")
	}

	uncertified, err := service.HandleChecklistCheck(ctx, primary.ChecklistCheckRequest{
		ChecklistItemID: "item-1",
		CrewMemberID:    "crew-2",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if uncertified.CrewCertified {
		t.Error("expected unknown crew member to read as not certified")
	}
}

// ============================================================================
// ConfirmObservation Tests
// ============================================================================

func TestConfirmObservation_Success(t *testing.T) {
	service, mocks := newTestObservationService()
	ctx := context.Background()

	resp, err := service.ConfirmObservation(ctx, primary.ConfirmObservationRequest{
		Draft: testDraft(),
		Notes: "membrane looked good",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.ObservationID == "" {
		t.Fatal("expected an observation ID")
	}
	if resp.Observation.CaptureMethod != "automatic" {
		t.Errorf("expected default capture method 'automatic', got '%s'", resp.Observation.CaptureMethod)
	}
	if resp.Observation.Notes != "membrane looked good" {
		t.Errorf("expected notes to be stored, got '%s'", resp.Observation.Notes)
	}
	if !mocks.activityLog.hasEvent("observation_recorded") {
		t.Error("expected observation_recorded activity event")
	}
}

// failingLinkerService implements primary.LinkerService and fails every
// linking call.
type failingLinkerService struct {
	linkErr error
}

func (f *failingLinkerService) LinkObservation(ctx context.Context, observationID string) (*primary.LinkReport, error) {
	return nil, f.linkErr
}

func (f *failingLinkerService) RelinkObservation(ctx context.Context, observationID string) (*primary.LinkReport, error) {
	return nil, f.linkErr
}

func (f *failingLinkerService) AddManualLink(ctx context.Context, req primary.AddManualLinkRequest) (*primary.Link, error) {
	return nil, f.linkErr
}

func (f *failingLinkerService) GetObservationContext(ctx context.Context, observationID string) ([]*primary.Link, error) {
	return nil, f.linkErr
}

func (f *failingLinkerService) GetEvidenceForKnowledgeItem(ctx context.Context, knowledgeItemID string) ([]*primary.Evidence, error) {
	return nil, f.linkErr
}

var _ primary.LinkerService = (*failingLinkerService)(nil)

func TestConfirmObservation_LinkerFailureDoesNotFailConfirmation(t *testing.T) {
	mocks := &observationServiceMocks{
		sopRepo:       newMockSopRepository(),
		checklistRepo: newMockChecklistRepository(),
		pendingRepo:   newMockPendingBatchRepository(),
		obsRepo:       newMockObservationRepository(),
		trainingRepo:  newMockTrainingRepository(),
		activityLog:   newMockActivityLogger(),
	}
	service := NewObservationService(
		mocks.sopRepo,
		mocks.checklistRepo,
		mocks.pendingRepo,
		mocks.obsRepo,
		mocks.trainingRepo,
		&failingLinkerService{linkErr: fmt.Errorf("knowledge store unavailable")},
		mocks.activityLog,
	)
	ctx := context.Background()

	resp, err := service.ConfirmObservation(ctx, primary.ConfirmObservationRequest{Draft: testDraft()})

	if err != nil {
		t.Fatalf("expected confirmation to survive a linker failure, got %v", err)
	}
	if resp.ObservationID == "" {
		t.Fatal("expected an observation ID")
	}
	if _, ok := mocks.obsRepo.observations[resp.ObservationID]; !ok {
		t.Error("expected observation persisted despite linker failure")
	}
}

func TestConfirmObservation_DeviationEvent(t *testing.T) {
	service, mocks := newTestObservationService()
	ctx := context.Background()

	_, err := service.ConfirmObservation(ctx, primary.ConfirmObservationRequest{
		Draft:          testDraft(),
		Deviated:       true,
		DeviationNotes: "substituted sealant",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !mocks.activityLog.hasEvent("deviation_reported") {
		t.Error("expected deviation_reported activity event")
	}
	if mocks.activityLog.hasEvent("observation_recorded") {
		t.Error("expected no observation_recorded event for a deviation")
	}
}

func TestConfirmObservation_MissingKnowledgeType(t *testing.T) {
	service, _ := newTestObservationService()
	ctx := context.Background()
	draft := testDraft()
	draft.KnowledgeType = ""

	_, err := service.ConfirmObservation(ctx, primary.ConfirmObservationRequest{Draft: draft})

	if err == nil {
		t.Fatal("expected error for missing knowledge type")
	}
}

// ============================================================================
// Batch Processing Tests
// ============================================================================

func queueBatchDraft(t *testing.T, service *ObservationServiceImpl, mocks *observationServiceMocks, itemID, taskID string) string {
	t.Helper()
	resp, err := service.HandleChecklistCheck(context.Background(), primary.ChecklistCheckRequest{
		ChecklistItemID: itemID,
		TaskID:          taskID,
		CrewMemberID:    "crew-1",
	})
	if err != nil {
		t.Fatalf("failed to queue batch draft: %v", err)
	}
	return resp.PendingID
}

func TestConfirmBatchItem_Success(t *testing.T) {
	service, mocks := newTestObservationService()
	ctx := context.Background()
	sopRecord := seedMockSop(mocks.sopRepo)
	item := seedMockChecklistItem(mocks.checklistRepo, "item-1", sopRecord.ID, 1)
	item.TriggerTiming = "batch"
	pendingID := queueBatchDraft(t, service, mocks, "item-1", "TASK-001")

	resp, err := service.ConfirmBatchItem(ctx, primary.ConfirmBatchItemRequest{
		PendingID: pendingID,
		Notes:     "confirmed at end of task",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Observation.Notes != "confirmed at end of task" {
		t.Errorf("expected override notes, got '%s'", resp.Observation.Notes)
	}
	if mocks.pendingRepo.pending[pendingID].Status != "confirmed" {
		t.Errorf("expected draft marked confirmed, got '%s'", mocks.pendingRepo.pending[pendingID].Status)
	}
}

func TestConfirmBatchItem_AlreadyProcessed(t *testing.T) {
	service, mocks := newTestObservationService()
	ctx := context.Background()
	sopRecord := seedMockSop(mocks.sopRepo)
	item := seedMockChecklistItem(mocks.checklistRepo, "item-1", sopRecord.ID, 1)
	item.TriggerTiming = "batch"
	pendingID := queueBatchDraft(t, service, mocks, "item-1", "TASK-001")
	mocks.pendingRepo.pending[pendingID].Status = "skipped"

	_, err := service.ConfirmBatchItem(ctx, primary.ConfirmBatchItemRequest{PendingID: pendingID})

	if err == nil {
		t.Fatal("expected error for already-processed draft")
	}
}

func TestSkipBatchItem_Success(t *testing.T) {
	service, mocks := newTestObservationService()
	ctx := context.Background()
	sopRecord := seedMockSop(mocks.sopRepo)
	item := seedMockChecklistItem(mocks.checklistRepo, "item-1", sopRecord.ID, 1)
	item.TriggerTiming = "batch"
	pendingID := queueBatchDraft(t, service, mocks, "item-1", "TASK-001")

	err := service.SkipBatchItem(ctx, pendingID)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mocks.pendingRepo.pending[pendingID].Status != "skipped" {
		t.Errorf("expected skipped status, got '%s'", mocks.pendingRepo.pending[pendingID].Status)
	}
	if len(mocks.obsRepo.observations) != 0 {
		t.Error("expected no observation from a skipped draft")
	}
}

func TestConfirmAllBatch_ConfirmsEveryPendingDraft(t *testing.T) {
	service, mocks := newTestObservationService()
	ctx := context.Background()
	sopRecord := seedMockSop(mocks.sopRepo)
	for _, id := range []string{"item-1", "item-2", "item-3"} {
		item := seedMockChecklistItem(mocks.checklistRepo, id, sopRecord.ID, 1)
		item.TriggerTiming = "batch"
		queueBatchDraft(t, service, mocks, id, "TASK-001")
	}

	summary, err := service.ConfirmAllBatch(ctx, "TASK-001")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if summary.Confirmed != 3 {
		t.Errorf("expected 3 confirmed, got %d", summary.Confirmed)
	}
	if summary.Failed != 0 {
		t.Errorf("expected 0 failed, got %d", summary.Failed)
	}
	if len(mocks.obsRepo.observations) != 3 {
		t.Errorf("expected 3 observations, got %d", len(mocks.obsRepo.observations))
	}
	if !mocks.activityLog.hasEvent("batch_observations_confirmed") {
		t.Error("expected batch_observations_confirmed summary event")
	}
}

func TestConfirmAllBatch_PartialFailureDoesNotRollBack(t *testing.T) {
	service, mocks := newTestObservationService()
	ctx := context.Background()
	sopRecord := seedMockSop(mocks.sopRepo)
	for _, id := range []string{"item-1", "item-2"} {
		item := seedMockChecklistItem(mocks.checklistRepo, id, sopRecord.ID, 1)
		item.TriggerTiming = "batch"
		queueBatchDraft(t, service, mocks, id, "TASK-001")
	}
	// Corrupt the second draft so its confirmation fails
	for _, id := range mocks.pendingRepo.order[1:] {
		mocks.pendingRepo.pending[id].DraftJSON = "{not json"
	}

	summary, err := service.ConfirmAllBatch(ctx, "TASK-001")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if summary.Confirmed != 1 {
		t.Errorf("expected 1 confirmed, got %d", summary.Confirmed)
	}
	if summary.Failed != 1 {
		t.Errorf("expected 1 failed, got %d", summary.Failed)
	}
	if len(summary.Errors) != 1 {
		t.Errorf("expected 1 error message, got %d", len(summary.Errors))
	}
	if len(mocks.obsRepo.observations) != 1 {
		t.Errorf("expected the confirmed observation to survive, got %d", len(mocks.obsRepo.observations))
	}
}

func TestClearProcessedBatch_RemovesOnlyProcessed(t *testing.T) {
	service, mocks := newTestObservationService()
	ctx := context.Background()
	sopRecord := seedMockSop(mocks.sopRepo)
	for _, id := range []string{"item-1", "item-2"} {
		item := seedMockChecklistItem(mocks.checklistRepo, id, sopRecord.ID, 1)
		item.TriggerTiming = "batch"
		queueBatchDraft(t, service, mocks, id, "TASK-001")
	}
	_ = service.SkipBatchItem(ctx, mocks.pendingRepo.order[0])

	count, err := service.ClearProcessedBatch(ctx, "TASK-001")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 draft cleared, got %d", count)
	}
	if len(mocks.pendingRepo.pending) != 1 {
		t.Errorf("expected the pending draft to survive, got %d", len(mocks.pendingRepo.pending))
	}
}

func TestListPendingBatch_DecodesDrafts(t *testing.T) {
	service, mocks := newTestObservationService()
	ctx := context.Background()
	sopRecord := seedMockSop(mocks.sopRepo)
	item := seedMockChecklistItem(mocks.checklistRepo, "item-1", sopRecord.ID, 1)
	item.TriggerTiming = "batch"
	item.ProductID = "PROD-100"
	queueBatchDraft(t, service, mocks, "item-1", "TASK-001")

	pending, err := service.ListPendingBatch(ctx, "TASK-001")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending draft, got %d", len(pending))
	}
	if pending[0].Draft == nil {
		t.Fatal("expected decoded draft")
	}
	if pending[0].Draft.ProductID != "PROD-100" {
		t.Errorf("expected draft product PROD-100, got '%s'", pending[0].Draft.ProductID)
	}
}
