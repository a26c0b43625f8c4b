package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/fieldloop/internal/adapters/sqlite"
	"github.com/example/fieldloop/internal/ports/secondary"
)

func TestSopRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewSopRepository(db)
	ctx := context.Background()

	sop := &secondary.SopRecord{
		ID:              "SOP-001",
		SopCode:         "TILE-SHOWER-PAN",
		Version:         1,
		IsCurrent:       true,
		Title:           "Shower Pan Installation",
		ObservationMode: "standard",
		Status:          "active",
	}

	err := repo.Create(ctx, sop)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, "SOP-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if retrieved.Title != "Shower Pan Installation" {
		t.Errorf("expected title 'Shower Pan Installation', got '%s'", retrieved.Title)
	}
	if retrieved.Version != 1 {
		t.Errorf("expected version 1, got %d", retrieved.Version)
	}
	if !retrieved.IsCurrent {
		t.Error("expected SOP to be current")
	}
	if retrieved.RequiredSupervisedCompletions != 3 {
		t.Errorf("expected default of 3 supervised completions, got %d", retrieved.RequiredSupervisedCompletions)
	}
}

func TestSopRepository_Create_MissingID(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewSopRepository(db)
	ctx := context.Background()

	err := repo.Create(ctx, &secondary.SopRecord{SopCode: "TILE-SHOWER-PAN", Title: "X"})
	if err == nil {
		t.Error("expected error for missing ID")
	}
}

func TestSopRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewSopRepository(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "SOP-999")
	if err == nil {
		t.Error("expected error for non-existent SOP")
	}
}

func TestSopRepository_GetCurrentByCode(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewSopRepository(db)
	ctx := context.Background()

	// Two versions, only one current
	_, _ = db.Exec(`INSERT INTO sop_procedures (id, sop_code, version, is_current, title, observation_mode, status)
		VALUES ('SOP-001', 'TILE-SHOWER-PAN', 1, 0, 'V1', 'standard', 'active')`)
	_, _ = db.Exec(`INSERT INTO sop_procedures (id, sop_code, version, is_current, previous_version_id, title, observation_mode, status)
		VALUES ('SOP-002', 'TILE-SHOWER-PAN', 2, 1, 'SOP-001', 'V2', 'standard', 'active')`)

	current, err := repo.GetCurrentByCode(ctx, "TILE-SHOWER-PAN")
	if err != nil {
		t.Fatalf("GetCurrentByCode failed: %v", err)
	}
	if current.ID != "SOP-002" {
		t.Errorf("expected SOP-002, got %s", current.ID)
	}
	if current.PreviousVersionID != "SOP-001" {
		t.Errorf("expected previous version SOP-001, got %s", current.PreviousVersionID)
	}
}

func TestSopRepository_GetVersionHistory(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewSopRepository(db)
	ctx := context.Background()

	_, _ = db.Exec(`INSERT INTO sop_procedures (id, sop_code, version, is_current, title, observation_mode, status)
		VALUES ('SOP-001', 'TILE-SHOWER-PAN', 1, 0, 'V1', 'standard', 'active')`)
	_, _ = db.Exec(`INSERT INTO sop_procedures (id, sop_code, version, is_current, title, observation_mode, status)
		VALUES ('SOP-002', 'TILE-SHOWER-PAN', 2, 1, 'V2', 'standard', 'active')`)

	history, err := repo.GetVersionHistory(ctx, "TILE-SHOWER-PAN")
	if err != nil {
		t.Fatalf("GetVersionHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(history))
	}
	if history[0].Version != 2 || history[1].Version != 1 {
		t.Errorf("expected descending version order, got %d then %d", history[0].Version, history[1].Version)
	}
}

func TestSopRepository_List_CurrentOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewSopRepository(db)
	ctx := context.Background()

	_, _ = db.Exec(`INSERT INTO sop_procedures (id, sop_code, version, is_current, title, observation_mode, status)
		VALUES ('SOP-001', 'TILE-SHOWER-PAN', 1, 0, 'V1', 'standard', 'active')`)
	_, _ = db.Exec(`INSERT INTO sop_procedures (id, sop_code, version, is_current, title, observation_mode, status)
		VALUES ('SOP-002', 'TILE-SHOWER-PAN', 2, 1, 'V2', 'standard', 'active')`)
	_, _ = db.Exec(`INSERT INTO sop_procedures (id, sop_code, version, is_current, title, observation_mode, status)
		VALUES ('SOP-003', 'PAINT-EXTERIOR', 1, 1, 'Paint', 'standard', 'active')`)

	sops, err := repo.List(ctx, secondary.SopFilters{CurrentOnly: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sops) != 2 {
		t.Errorf("expected 2 current SOPs, got %d", len(sops))
	}
}

func TestSopRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewSopRepository(db)
	ctx := context.Background()

	seedSop(t, db, "SOP-001", "TILE-SHOWER-PAN", "Original")

	sop, _ := repo.GetByID(ctx, "SOP-001")
	sop.Title = "Updated"
	sop.Status = "archived"

	if err := repo.Update(ctx, sop); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	retrieved, _ := repo.GetByID(ctx, "SOP-001")
	if retrieved.Title != "Updated" {
		t.Errorf("expected title 'Updated', got '%s'", retrieved.Title)
	}
	if retrieved.Status != "archived" {
		t.Errorf("expected status 'archived', got '%s'", retrieved.Status)
	}
}

func TestSopRepository_Update_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewSopRepository(db)
	ctx := context.Background()

	err := repo.Update(ctx, &secondary.SopRecord{ID: "SOP-999", Title: "X", Status: "active"})
	if err == nil {
		t.Error("expected error for non-existent SOP")
	}
}

func TestSopRepository_CreateNextVersion(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewSopRepository(db)
	ctx := context.Background()

	seedSop(t, db, "SOP-001", "TILE-SHOWER-PAN", "V1")
	seedChecklistItem(t, db, "CHK-001", "SOP-001", 1)
	seedChecklistItem(t, db, "CHK-002", "SOP-001", 2)

	next := &secondary.SopRecord{
		ID:                "SOP-002",
		SopCode:           "TILE-SHOWER-PAN",
		Version:           2,
		IsCurrent:         true,
		PreviousVersionID: "SOP-001",
		VersionNotes:      "Switched to fast-set mortar",
		Title:             "V1",
		ObservationMode:   "standard",
		Status:            "active",
	}
	items := []*secondary.ChecklistItemRecord{
		{ID: "CHK-003", StepNumber: 1, Title: "Test Step", GeneratesObservation: true, TriggerTiming: "on_check"},
		{ID: "CHK-004", StepNumber: 2, Title: "Test Step", GeneratesObservation: true, TriggerTiming: "on_check"},
	}

	if err := repo.CreateNextVersion(ctx, "SOP-001", next, items); err != nil {
		t.Fatalf("CreateNextVersion failed: %v", err)
	}

	old, _ := repo.GetByID(ctx, "SOP-001")
	if old.IsCurrent {
		t.Error("expected old version to be superseded")
	}
	if old.SupersededDate == "" {
		t.Error("expected superseded date to be set")
	}

	current, err := repo.GetCurrentByCode(ctx, "TILE-SHOWER-PAN")
	if err != nil {
		t.Fatalf("GetCurrentByCode failed: %v", err)
	}
	if current.ID != "SOP-002" {
		t.Errorf("expected SOP-002 current, got %s", current.ID)
	}

	var copied int
	_ = db.QueryRow("SELECT COUNT(*) FROM sop_checklist_items WHERE sop_id = 'SOP-002'").Scan(&copied)
	if copied != 2 {
		t.Errorf("expected 2 copied checklist items, got %d", copied)
	}
}

func TestSopRepository_CreateNextVersion_NotCurrent(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewSopRepository(db)
	ctx := context.Background()

	_, _ = db.Exec(`INSERT INTO sop_procedures (id, sop_code, version, is_current, title, observation_mode, status)
		VALUES ('SOP-001', 'TILE-SHOWER-PAN', 1, 0, 'V1', 'standard', 'active')`)

	next := &secondary.SopRecord{
		ID: "SOP-002", SopCode: "TILE-SHOWER-PAN", Version: 2, IsCurrent: true,
		Title: "V2", ObservationMode: "standard", Status: "active",
	}

	err := repo.CreateNextVersion(ctx, "SOP-001", next, nil)
	if err == nil {
		t.Error("expected error when base version is not current")
	}

	// Transaction rolled back: no new row
	if _, err := repo.GetByID(ctx, "SOP-002"); err == nil {
		t.Error("expected SOP-002 to not exist after rollback")
	}
}

func TestSopRepository_GetNextID(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewSopRepository(db)
	ctx := context.Background()

	id, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "SOP-001" {
		t.Errorf("expected SOP-001, got %s", id)
	}

	seedSop(t, db, "SOP-001", "", "")

	id, _ = repo.GetNextID(ctx)
	if id != "SOP-002" {
		t.Errorf("expected SOP-002, got %s", id)
	}
}
