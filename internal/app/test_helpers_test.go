package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/example/fieldloop/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// Ensure the mocks implement their interfaces
var _ secondary.SopRepository = (*mockSopRepository)(nil)
var _ secondary.ChecklistRepository = (*mockChecklistRepository)(nil)
var _ secondary.PendingBatchRepository = (*mockPendingBatchRepository)(nil)
var _ secondary.ObservationRepository = (*mockObservationRepository)(nil)
var _ secondary.KnowledgeRepository = (*mockKnowledgeRepository)(nil)
var _ secondary.LinkRepository = (*mockLinkRepository)(nil)
var _ secondary.ConfidenceEventRepository = (*mockConfidenceEventRepository)(nil)
var _ secondary.ChallengeRepository = (*mockChallengeRepository)(nil)
var _ secondary.TrainingRepository = (*mockTrainingRepository)(nil)
var _ secondary.ProjectRepository = (*mockProjectRepository)(nil)
var _ secondary.ActivityLogger = (*mockActivityLogger)(nil)

// mockSopRepository implements secondary.SopRepository for testing.
type mockSopRepository struct {
	sops       map[string]*secondary.SopRecord
	createErr  error
	updateErr  error
	versionErr error
}

func newMockSopRepository() *mockSopRepository {
	return &mockSopRepository{sops: make(map[string]*secondary.SopRecord)}
}

func (m *mockSopRepository) Create(ctx context.Context, sop *secondary.SopRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.sops[sop.ID] = sop
	return nil
}

func (m *mockSopRepository) GetByID(ctx context.Context, id string) (*secondary.SopRecord, error) {
	if sop, ok := m.sops[id]; ok {
		return sop, nil
	}
	return nil, fmt.Errorf("SOP %s not found", id)
}

func (m *mockSopRepository) GetCurrentByCode(ctx context.Context, sopCode string) (*secondary.SopRecord, error) {
	for _, s := range m.sops {
		if s.SopCode == sopCode && s.IsCurrent {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no current SOP version for code %s", sopCode)
}

func (m *mockSopRepository) GetVersionHistory(ctx context.Context, sopCode string) ([]*secondary.SopRecord, error) {
	var result []*secondary.SopRecord
	for _, s := range m.sops {
		if s.SopCode == sopCode {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Version > result[j].Version })
	return result, nil
}

func (m *mockSopRepository) List(ctx context.Context, filters secondary.SopFilters) ([]*secondary.SopRecord, error) {
	var result []*secondary.SopRecord
	for _, s := range m.sops {
		if filters.Status != "" && s.Status != filters.Status {
			continue
		}
		if filters.Category != "" && s.Category != filters.Category {
			continue
		}
		if filters.CurrentOnly && !s.IsCurrent {
			continue
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockSopRepository) Update(ctx context.Context, sop *secondary.SopRecord) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.sops[sop.ID]; !ok {
		return fmt.Errorf("SOP %s not found", sop.ID)
	}
	m.sops[sop.ID] = sop
	return nil
}

func (m *mockSopRepository) CreateNextVersion(ctx context.Context, currentID string, next *secondary.SopRecord, items []*secondary.ChecklistItemRecord) error {
	if m.versionErr != nil {
		return m.versionErr
	}
	current, ok := m.sops[currentID]
	if !ok || !current.IsCurrent {
		return fmt.Errorf("SOP %s not found or no longer current", currentID)
	}
	current.IsCurrent = false
	current.SupersededDate = next.CreatedAt
	m.sops[next.ID] = next
	return nil
}

func (m *mockSopRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("SOP-%03d", len(m.sops)+1), nil
}

// mockChecklistRepository implements secondary.ChecklistRepository for testing.
type mockChecklistRepository struct {
	items       map[string]*secondary.ChecklistItemRecord
	createErr   error
	renumberErr error
}

func newMockChecklistRepository() *mockChecklistRepository {
	return &mockChecklistRepository{items: make(map[string]*secondary.ChecklistItemRecord)}
}

func (m *mockChecklistRepository) Create(ctx context.Context, item *secondary.ChecklistItemRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items[item.ID] = item
	return nil
}

func (m *mockChecklistRepository) GetByID(ctx context.Context, id string) (*secondary.ChecklistItemRecord, error) {
	if item, ok := m.items[id]; ok {
		return item, nil
	}
	return nil, fmt.Errorf("checklist item %s not found", id)
}

func (m *mockChecklistRepository) GetBySop(ctx context.Context, sopID string) ([]*secondary.ChecklistItemRecord, error) {
	var result []*secondary.ChecklistItemRecord
	for _, item := range m.items {
		if item.SopID == sopID {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StepNumber < result[j].StepNumber })
	return result, nil
}

func (m *mockChecklistRepository) GetGenerating(ctx context.Context, sopID string) ([]*secondary.ChecklistItemRecord, error) {
	all, _ := m.GetBySop(ctx, sopID)
	var result []*secondary.ChecklistItemRecord
	for _, item := range all {
		if item.GeneratesObservation {
			result = append(result, item)
		}
	}
	return result, nil
}

func (m *mockChecklistRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("checklist item %s not found", id)
	}
	delete(m.items, id)
	return nil
}

func (m *mockChecklistRepository) Renumber(ctx context.Context, sopID string, steps map[string]int) error {
	if m.renumberErr != nil {
		return m.renumberErr
	}
	for id, step := range steps {
		item, ok := m.items[id]
		if !ok || item.SopID != sopID {
			return fmt.Errorf("checklist item %s not found for SOP %s", id, sopID)
		}
		item.StepNumber = step
	}
	return nil
}

// mockPendingBatchRepository implements secondary.PendingBatchRepository for
// testing. Insertion order stands in for created_at ordering.
type mockPendingBatchRepository struct {
	pending   map[string]*secondary.PendingBatchRecord
	order     []string
	createErr error
	markErr   error
}

func newMockPendingBatchRepository() *mockPendingBatchRepository {
	return &mockPendingBatchRepository{pending: make(map[string]*secondary.PendingBatchRecord)}
}

func (m *mockPendingBatchRepository) Create(ctx context.Context, p *secondary.PendingBatchRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.pending[p.ID] = p
	m.order = append(m.order, p.ID)
	return nil
}

func (m *mockPendingBatchRepository) GetByID(ctx context.Context, id string) (*secondary.PendingBatchRecord, error) {
	if p, ok := m.pending[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("pending observation %s not found", id)
}

func (m *mockPendingBatchRepository) ListByTask(ctx context.Context, taskID, status string) ([]*secondary.PendingBatchRecord, error) {
	var result []*secondary.PendingBatchRecord
	for _, id := range m.order {
		p, ok := m.pending[id]
		if !ok || p.TaskID != taskID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func (m *mockPendingBatchRepository) MarkProcessed(ctx context.Context, id, status string) error {
	if m.markErr != nil {
		return m.markErr
	}
	p, ok := m.pending[id]
	if !ok || p.Status != "pending" {
		return fmt.Errorf("pending observation %s not found or already processed", id)
	}
	p.Status = status
	return nil
}

func (m *mockPendingBatchRepository) DeleteProcessed(ctx context.Context, taskID string) (int, error) {
	count := 0
	for id, p := range m.pending {
		if p.TaskID == taskID && p.Status != "pending" {
			delete(m.pending, id)
			count++
		}
	}
	return count, nil
}

// mockObservationRepository implements secondary.ObservationRepository for
// testing.
type mockObservationRepository struct {
	observations map[string]*secondary.ObservationRecord
	order        []string
	createErr    error
	annotateErr  error
}

func newMockObservationRepository() *mockObservationRepository {
	return &mockObservationRepository{observations: make(map[string]*secondary.ObservationRecord)}
}

func (m *mockObservationRepository) Create(ctx context.Context, obs *secondary.ObservationRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.observations[obs.ID] = obs
	m.order = append(m.order, obs.ID)
	return nil
}

func (m *mockObservationRepository) GetByID(ctx context.Context, id string) (*secondary.ObservationRecord, error) {
	if obs, ok := m.observations[id]; ok {
		return obs, nil
	}
	return nil, fmt.Errorf("observation %s not found", id)
}

func (m *mockObservationRepository) List(ctx context.Context, filters secondary.ObservationFilters) ([]*secondary.ObservationRecord, error) {
	var result []*secondary.ObservationRecord
	for _, id := range m.order {
		obs := m.observations[id]
		if filters.ProjectID != "" && obs.ProjectID != filters.ProjectID {
			continue
		}
		if filters.TaskID != "" && obs.TaskID != filters.TaskID {
			continue
		}
		if filters.KnowledgeType != "" && obs.KnowledgeType != filters.KnowledgeType {
			continue
		}
		result = append(result, obs)
		if filters.Limit > 0 && len(result) >= filters.Limit {
			break
		}
	}
	return result, nil
}

func (m *mockObservationRepository) AnnotateCallback(ctx context.Context, id, notes string) error {
	if m.annotateErr != nil {
		return m.annotateErr
	}
	obs, ok := m.observations[id]
	if !ok {
		return fmt.Errorf("observation %s not found", id)
	}
	obs.Notes = notes
	obs.CaptureMethod = "callback"
	return nil
}

func (m *mockObservationRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("OBS-%03d", len(m.observations)+1), nil
}

// mockKnowledgeRepository implements secondary.KnowledgeRepository for testing.
type mockKnowledgeRepository struct {
	items     map[string]*secondary.KnowledgeRecord
	createErr error
	updateErr error
}

func newMockKnowledgeRepository() *mockKnowledgeRepository {
	return &mockKnowledgeRepository{items: make(map[string]*secondary.KnowledgeRecord)}
}

func (m *mockKnowledgeRepository) Create(ctx context.Context, item *secondary.KnowledgeRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items[item.ID] = item
	return nil
}

func (m *mockKnowledgeRepository) GetByID(ctx context.Context, id string) (*secondary.KnowledgeRecord, error) {
	if item, ok := m.items[id]; ok {
		return item, nil
	}
	return nil, fmt.Errorf("knowledge item %s not found", id)
}

func (m *mockKnowledgeRepository) List(ctx context.Context, filters secondary.KnowledgeFilters) ([]*secondary.KnowledgeRecord, error) {
	var result []*secondary.KnowledgeRecord
	for _, item := range m.items {
		if filters.Status != "" && item.Status != filters.Status {
			continue
		}
		if filters.KnowledgeType != "" && item.KnowledgeType != filters.KnowledgeType {
			continue
		}
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockKnowledgeRepository) Update(ctx context.Context, item *secondary.KnowledgeRecord) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.items[item.ID]; !ok {
		return fmt.Errorf("knowledge item %s not found", item.ID)
	}
	m.items[item.ID] = item
	return nil
}

func (m *mockKnowledgeRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("KNOW-%03d", len(m.items)+1), nil
}

// mockLinkRepository implements secondary.LinkRepository for testing.
type mockLinkRepository struct {
	links     map[string]*secondary.LinkRecord
	order     []string
	createErr error
}

func newMockLinkRepository() *mockLinkRepository {
	return &mockLinkRepository{links: make(map[string]*secondary.LinkRecord)}
}

func (m *mockLinkRepository) Create(ctx context.Context, link *secondary.LinkRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.links[link.ID] = link
	m.order = append(m.order, link.ID)
	return nil
}

func (m *mockLinkRepository) ListByObservation(ctx context.Context, observationID string) ([]*secondary.LinkRecord, error) {
	var result []*secondary.LinkRecord
	for _, id := range m.order {
		if l, ok := m.links[id]; ok && l.ObservationID == observationID {
			result = append(result, l)
		}
	}
	return result, nil
}

func (m *mockLinkRepository) ListByKnowledgeItem(ctx context.Context, knowledgeItemID string) ([]*secondary.LinkRecord, error) {
	var result []*secondary.LinkRecord
	for _, id := range m.order {
		if l, ok := m.links[id]; ok && l.KnowledgeItemID == knowledgeItemID {
			result = append(result, l)
		}
	}
	return result, nil
}

func (m *mockLinkRepository) DeleteAutoDetected(ctx context.Context, observationID string) (int, error) {
	count := 0
	for id, l := range m.links {
		if l.ObservationID == observationID && l.LinkType == "auto_detected" {
			delete(m.links, id)
			count++
		}
	}
	return count, nil
}

// mockConfidenceEventRepository implements
// secondary.ConfidenceEventRepository for testing.
type mockConfidenceEventRepository struct {
	events    []*secondary.ConfidenceEventRecord
	createErr error
}

func newMockConfidenceEventRepository() *mockConfidenceEventRepository {
	return &mockConfidenceEventRepository{}
}

func (m *mockConfidenceEventRepository) Create(ctx context.Context, event *secondary.ConfidenceEventRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockConfidenceEventRepository) ListByItem(ctx context.Context, knowledgeItemID string) ([]*secondary.ConfidenceEventRecord, error) {
	var result []*secondary.ConfidenceEventRecord
	// Newest first
	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i].KnowledgeItemID == knowledgeItemID {
			result = append(result, m.events[i])
		}
	}
	return result, nil
}

// mockChallengeRepository implements secondary.ChallengeRepository for testing.
type mockChallengeRepository struct {
	challenges map[string]*secondary.ChallengeRecord
	createErr  error
}

func newMockChallengeRepository() *mockChallengeRepository {
	return &mockChallengeRepository{challenges: make(map[string]*secondary.ChallengeRecord)}
}

func (m *mockChallengeRepository) Create(ctx context.Context, challenge *secondary.ChallengeRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.challenges[challenge.ID] = challenge
	return nil
}

func (m *mockChallengeRepository) GetByID(ctx context.Context, id string) (*secondary.ChallengeRecord, error) {
	if c, ok := m.challenges[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("challenge %s not found", id)
}

func (m *mockChallengeRepository) ListByItem(ctx context.Context, knowledgeItemID string) ([]*secondary.ChallengeRecord, error) {
	var result []*secondary.ChallengeRecord
	for _, c := range m.challenges {
		if c.KnowledgeItemID == knowledgeItemID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockChallengeRepository) CountActive(ctx context.Context, knowledgeItemID string) (int, error) {
	count := 0
	for _, c := range m.challenges {
		if c.KnowledgeItemID == knowledgeItemID && c.Status == "pending" {
			count++
		}
	}
	return count, nil
}

func (m *mockChallengeRepository) Update(ctx context.Context, challenge *secondary.ChallengeRecord) error {
	if _, ok := m.challenges[challenge.ID]; !ok {
		return fmt.Errorf("challenge %s not found", challenge.ID)
	}
	m.challenges[challenge.ID] = challenge
	return nil
}

func (m *mockChallengeRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("CHAL-%03d", len(m.challenges)+1), nil
}

// mockTrainingRepository implements secondary.TrainingRepository for testing.
type mockTrainingRepository struct {
	records     map[string]*secondary.TrainingRecord
	completions []*secondary.SupervisedCompletionRecord
	attempts    []*secondary.ReviewAttemptRecord
	createErr   error
	updateErr   error
}

func newMockTrainingRepository() *mockTrainingRepository {
	return &mockTrainingRepository{records: make(map[string]*secondary.TrainingRecord)}
}

func (m *mockTrainingRepository) Create(ctx context.Context, record *secondary.TrainingRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.records[record.ID] = record
	return nil
}

func (m *mockTrainingRepository) GetByCrewAndSop(ctx context.Context, crewMemberID, sopID string) (*secondary.TrainingRecord, error) {
	for _, r := range m.records {
		if r.CrewMemberID == crewMemberID && r.SopID == sopID {
			return r, nil
		}
	}
	return nil, fmt.Errorf("training record for %s on %s not found", crewMemberID, sopID)
}

func (m *mockTrainingRepository) ListByCrewMember(ctx context.Context, crewMemberID string) ([]*secondary.TrainingRecord, error) {
	var result []*secondary.TrainingRecord
	for _, r := range m.records {
		if r.CrewMemberID == crewMemberID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockTrainingRepository) ListBySop(ctx context.Context, sopID string) ([]*secondary.TrainingRecord, error) {
	var result []*secondary.TrainingRecord
	for _, r := range m.records {
		if r.SopID == sopID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockTrainingRepository) Update(ctx context.Context, record *secondary.TrainingRecord) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.records[record.ID]; !ok {
		return fmt.Errorf("training record %s not found", record.ID)
	}
	m.records[record.ID] = record
	return nil
}

func (m *mockTrainingRepository) AddSupervisedCompletion(ctx context.Context, entry *secondary.SupervisedCompletionRecord) error {
	m.completions = append(m.completions, entry)
	return nil
}

func (m *mockTrainingRepository) CountSupervisedCompletions(ctx context.Context, trainingRecordID string) (int, error) {
	count := 0
	for _, c := range m.completions {
		if c.TrainingRecordID == trainingRecordID {
			count++
		}
	}
	return count, nil
}

func (m *mockTrainingRepository) ListSupervisedCompletions(ctx context.Context, trainingRecordID string) ([]*secondary.SupervisedCompletionRecord, error) {
	var result []*secondary.SupervisedCompletionRecord
	for _, c := range m.completions {
		if c.TrainingRecordID == trainingRecordID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockTrainingRepository) AddReviewAttempt(ctx context.Context, entry *secondary.ReviewAttemptRecord) error {
	m.attempts = append(m.attempts, entry)
	return nil
}

func (m *mockTrainingRepository) CountReviewAttempts(ctx context.Context, trainingRecordID string) (int, error) {
	count := 0
	for _, a := range m.attempts {
		if a.TrainingRecordID == trainingRecordID {
			count++
		}
	}
	return count, nil
}

func (m *mockTrainingRepository) ListReviewAttempts(ctx context.Context, trainingRecordID string) ([]*secondary.ReviewAttemptRecord, error) {
	var result []*secondary.ReviewAttemptRecord
	for _, a := range m.attempts {
		if a.TrainingRecordID == trainingRecordID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockTrainingRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("TRAIN-%03d", len(m.records)+1), nil
}

// mockProjectRepository implements secondary.ProjectRepository for testing.
type mockProjectRepository struct {
	projects  map[string]*secondary.ProjectRecord
	createErr error
}

func newMockProjectRepository() *mockProjectRepository {
	return &mockProjectRepository{projects: make(map[string]*secondary.ProjectRecord)}
}

func (m *mockProjectRepository) Create(ctx context.Context, project *secondary.ProjectRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.projects[project.ID] = project
	return nil
}

func (m *mockProjectRepository) GetByID(ctx context.Context, id string) (*secondary.ProjectRecord, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("project %s not found", id)
}

func (m *mockProjectRepository) List(ctx context.Context) ([]*secondary.ProjectRecord, error) {
	var result []*secondary.ProjectRecord
	for _, p := range m.projects {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockProjectRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("PROJ-%03d", len(m.projects)+1), nil
}

// mockActivityLogger implements secondary.ActivityLogger for testing. It
// records every event it is handed.
type mockActivityLogger struct {
	events []secondary.ActivityEvent
	logErr error
}

func newMockActivityLogger() *mockActivityLogger {
	return &mockActivityLogger{}
}

func (m *mockActivityLogger) Log(ctx context.Context, event secondary.ActivityEvent) error {
	if m.logErr != nil {
		return m.logErr
	}
	m.events = append(m.events, event)
	return nil
}

// hasEvent reports whether an event of the given type was logged.
func (m *mockActivityLogger) hasEvent(eventType string) bool {
	for _, e := range m.events {
		if e.EventType == eventType {
			return true
		}
	}
	return false
}
