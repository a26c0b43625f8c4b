// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/fieldloop/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// This is the single shared test database setup function for all repository tests.
// Uses db.GetSchemaSQL() to prevent test schemas from drifting.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	// Use the authoritative schema from schema.go
	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedProject inserts a test project and returns its ID.
func seedProject(t *testing.T, db *sql.DB, id, name string) string {
	t.Helper()
	if id == "" {
		id = "PROJ-001"
	}
	if name == "" {
		name = "Test Project"
	}
	_, err := db.Exec("INSERT INTO projects (id, name, integration_project_type, status) VALUES (?, ?, 'standard', 'active')", id, name)
	if err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}
	return id
}

// seedSop inserts a current SOP version and returns its ID.
func seedSop(t *testing.T, db *sql.DB, id, sopCode, title string) string {
	t.Helper()
	if id == "" {
		id = "SOP-001"
	}
	if sopCode == "" {
		sopCode = "TILE-SHOWER-PAN"
	}
	if title == "" {
		title = "Test Procedure"
	}
	_, err := db.Exec(`INSERT INTO sop_procedures (id, sop_code, version, is_current, title, observation_mode, status)
		VALUES (?, ?, 1, 1, ?, 'standard', 'active')`, id, sopCode, title)
	if err != nil {
		t.Fatalf("failed to seed SOP: %v", err)
	}
	return id
}

// seedChecklistItem inserts a checklist item template and returns its ID.
func seedChecklistItem(t *testing.T, db *sql.DB, id, sopID string, step int) string {
	t.Helper()
	if id == "" {
		id = "CHK-001"
	}
	if sopID == "" {
		sopID = "SOP-001"
	}
	_, err := db.Exec(`INSERT INTO sop_checklist_items (id, sop_id, step_number, title, generates_observation, trigger_timing)
		VALUES (?, ?, ?, 'Test Step', 1, 'on_check')`, id, sopID, step)
	if err != nil {
		t.Fatalf("failed to seed checklist item: %v", err)
	}
	return id
}

// seedKnowledgeItem inserts a draft knowledge item and returns its ID.
func seedKnowledgeItem(t *testing.T, db *sql.DB, id, title string) string {
	t.Helper()
	if id == "" {
		id = "KNOW-001"
	}
	if title == "" {
		title = "Test Knowledge Item"
	}
	_, err := db.Exec(`INSERT INTO knowledge_items (id, title, knowledge_type, status)
		VALUES (?, ?, 'product_performance', 'draft')`, id, title)
	if err != nil {
		t.Fatalf("failed to seed knowledge item: %v", err)
	}
	return id
}

// seedObservation inserts a field observation and returns its ID.
func seedObservation(t *testing.T, db *sql.DB, id, projectID string) string {
	t.Helper()
	if id == "" {
		id = "OBS-001"
	}
	_, err := db.Exec(`INSERT INTO field_observations (id, project_id, knowledge_type, capture_method)
		VALUES (?, ?, 'product_performance', 'automatic')`, id, nullable(projectID))
	if err != nil {
		t.Fatalf("failed to seed observation: %v", err)
	}
	return id
}

// seedTrainingRecord inserts a training record and returns its ID.
func seedTrainingRecord(t *testing.T, db *sql.DB, id, crewMemberID, sopID string) string {
	t.Helper()
	if id == "" {
		id = "TRAIN-001"
	}
	if crewMemberID == "" {
		crewMemberID = "crew-1"
	}
	if sopID == "" {
		sopID = "SOP-001"
	}
	_, err := db.Exec(`INSERT INTO training_records (id, crew_member_id, sop_id, status)
		VALUES (?, ?, ?, 'in_progress')`, id, crewMemberID, sopID)
	if err != nil {
		t.Fatalf("failed to seed training record: %v", err)
	}
	return id
}

// nullable converts an empty string to a SQL NULL argument.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
