package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "add_stage_column_to_field_observations",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_required_supervised_completions_to_sops",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_homeowner_visible_to_activity_events",
		Up:      migrationV3,
	},
	{
		Version: 4,
		Name:    "add_callback_reason_to_projects",
		Up:      migrationV4,
	},
}

// migrationV1 adds the stage tag column (third metadata axis) to observations.
func migrationV1(db *sql.DB) error {
	_, err := db.Exec("ALTER TABLE field_observations ADD COLUMN stage TEXT")
	return err
}

// migrationV2 adds the per-SOP supervised completion requirement (default 3).
func migrationV2(db *sql.DB) error {
	_, err := db.Exec("ALTER TABLE sop_procedures ADD COLUMN required_supervised_completions INTEGER NOT NULL DEFAULT 3")
	return err
}

// migrationV3 adds the homeowner visibility flag to the activity feed.
func migrationV3(db *sql.DB) error {
	_, err := db.Exec("ALTER TABLE activity_events ADD COLUMN homeowner_visible INTEGER NOT NULL DEFAULT 0")
	return err
}

// migrationV4 stores the reason a callback project was opened, so outcome
// propagation can annotate originals with the real reason.
func migrationV4(db *sql.DB) error {
	_, err := db.Exec("ALTER TABLE projects ADD COLUMN callback_reason TEXT")
	return err
}

// RunMigrations executes all pending migrations
func RunMigrations() error {
	db, err := GetDB()
	if err != nil {
		return fmt.Errorf("failed to get database: %w", err)
	}

	// Create schema_version table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	// Get current schema version
	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	// Run pending migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		fmt.Printf("Running migration %d: %s\n", migration.Version, migration.Name)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(db); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		fmt.Printf("✓ Migration %d completed\n", migration.Version)
	}

	return nil
}
