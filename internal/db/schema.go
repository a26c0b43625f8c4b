package db

// SchemaSQL is the complete modern schema for fresh fieldloop installs.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL(). If repository code references a column that
// doesn't exist here, tests fail immediately with "no such column" - drift is
// caught at development time, not in the field.
//
// When adding new columns or tables:
//  1. Add migration in internal/db/migrations.go
//  2. Update SchemaSQL here
//  3. Run `make test` to verify alignment
const SchemaSQL = `
-- Projects (boundary entity - full project management lives elsewhere)
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	integration_project_type TEXT NOT NULL CHECK(integration_project_type IN ('standard', 'callback')) DEFAULT 'standard',
	linked_project_id TEXT,
	callback_reason TEXT,
	budget REAL NOT NULL DEFAULT 0,
	status TEXT NOT NULL CHECK(status IN ('active', 'complete', 'archived')) DEFAULT 'active',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (linked_project_id) REFERENCES projects(id)
);

-- SOP procedures (versioned standard operating procedures)
CREATE TABLE IF NOT EXISTS sop_procedures (
	id TEXT PRIMARY KEY,
	sop_code TEXT NOT NULL,
	version INTEGER NOT NULL DEFAULT 1,
	is_current INTEGER NOT NULL DEFAULT 1,
	previous_version_id TEXT,
	superseded_date DATETIME,
	version_notes TEXT,
	title TEXT NOT NULL,
	description TEXT,
	category TEXT,
	trade TEXT,
	observation_mode TEXT NOT NULL CHECK(observation_mode IN ('standard', 'detailed')) DEFAULT 'standard',
	required_supervised_completions INTEGER NOT NULL DEFAULT 3,
	status TEXT NOT NULL CHECK(status IN ('active', 'archived')) DEFAULT 'active',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (previous_version_id) REFERENCES sop_procedures(id),
	UNIQUE(sop_code, version)
);

CREATE INDEX IF NOT EXISTS idx_sops_code ON sop_procedures(sop_code);
CREATE INDEX IF NOT EXISTS idx_sops_current ON sop_procedures(sop_code, is_current);

-- Checklist item templates (ordered steps of one SOP version)
CREATE TABLE IF NOT EXISTS sop_checklist_items (
	id TEXT PRIMARY KEY,
	sop_id TEXT NOT NULL,
	step_number INTEGER NOT NULL,
	title TEXT NOT NULL,
	instructions TEXT,
	generates_observation INTEGER NOT NULL DEFAULT 0,
	trigger_timing TEXT NOT NULL CHECK(trigger_timing IN ('on_check', 'batch')) DEFAULT 'on_check',
	knowledge_type TEXT,
	product_id TEXT,
	technique_id TEXT,
	tool_method_id TEXT,
	combination_id TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (sop_id) REFERENCES sop_procedures(id) ON DELETE CASCADE,
	UNIQUE(sop_id, step_number)
);

CREATE INDEX IF NOT EXISTS idx_checklist_sop ON sop_checklist_items(sop_id);

-- Pending batch observations (ephemeral drafts awaiting end-of-task confirmation)
CREATE TABLE IF NOT EXISTS pending_batch_observations (
	id TEXT PRIMARY KEY,
	task_id TEXT NOT NULL,
	checklist_item_id TEXT NOT NULL,
	crew_member_id TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('pending', 'confirmed', 'skipped')) DEFAULT 'pending',
	draft_json TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	processed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_pending_task ON pending_batch_observations(task_id, status);

-- Field observations (immutable records of executed checklist steps)
CREATE TABLE IF NOT EXISTS field_observations (
	id TEXT PRIMARY KEY,
	project_id TEXT,
	task_id TEXT,
	sop_id TEXT,
	checklist_item_id TEXT,
	crew_member_id TEXT,
	knowledge_type TEXT NOT NULL,
	product_id TEXT,
	technique_id TEXT,
	tool_method_id TEXT,
	combination_id TEXT,
	deviated INTEGER NOT NULL DEFAULT 0,
	deviation_notes TEXT,
	notes TEXT,
	photo_required INTEGER NOT NULL DEFAULT 0,
	notes_required INTEGER NOT NULL DEFAULT 0,
	condition_required INTEGER NOT NULL DEFAULT 0,
	capture_method TEXT NOT NULL CHECK(capture_method IN ('automatic', 'callback', 'manual')) DEFAULT 'automatic',
	work_category TEXT,
	trade TEXT,
	stage TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_observations_project ON field_observations(project_id);
CREATE INDEX IF NOT EXISTS idx_observations_task ON field_observations(task_id);

-- Knowledge items (confidence-scored beliefs aggregated from observations)
CREATE TABLE IF NOT EXISTS knowledge_items (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	knowledge_type TEXT NOT NULL,
	category TEXT,
	trade TEXT,
	product_ids TEXT NOT NULL DEFAULT '[]',
	technique_ids TEXT NOT NULL DEFAULT '[]',
	tool_method_ids TEXT NOT NULL DEFAULT '[]',
	confidence_score INTEGER NOT NULL DEFAULT 50,
	status TEXT NOT NULL CHECK(status IN ('draft', 'published', 'under_review', 'deprecated')) DEFAULT 'draft',
	observation_count INTEGER NOT NULL DEFAULT 0,
	experiment_count INTEGER NOT NULL DEFAULT 0,
	crew_agreement_rate REAL,
	last_confidence_update DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_knowledge_status ON knowledge_items(status);

-- Observation-knowledge links (directed edges observation -> knowledge item)
CREATE TABLE IF NOT EXISTS observation_knowledge_links (
	id TEXT PRIMARY KEY,
	observation_id TEXT NOT NULL,
	knowledge_item_id TEXT NOT NULL,
	link_type TEXT NOT NULL CHECK(link_type IN ('auto_detected', 'labs_assigned', 'experiment_required')),
	link_confidence INTEGER,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (observation_id) REFERENCES field_observations(id) ON DELETE CASCADE,
	FOREIGN KEY (knowledge_item_id) REFERENCES knowledge_items(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_links_observation ON observation_knowledge_links(observation_id);
CREATE INDEX IF NOT EXISTS idx_links_knowledge ON observation_knowledge_links(knowledge_item_id);

-- Confidence events (append-only ledger, one row per score recalculation)
CREATE TABLE IF NOT EXISTS confidence_events (
	id TEXT PRIMARY KEY,
	knowledge_item_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	source_id TEXT,
	notes TEXT,
	confidence_change INTEGER NOT NULL,
	new_confidence_score INTEGER NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (knowledge_item_id) REFERENCES knowledge_items(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_confidence_events_item ON confidence_events(knowledge_item_id);

-- Knowledge challenges (open disputes depress confidence while pending)
CREATE TABLE IF NOT EXISTS knowledge_challenges (
	id TEXT PRIMARY KEY,
	knowledge_item_id TEXT NOT NULL,
	challenged_by TEXT,
	reason TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('pending', 'resolved')) DEFAULT 'pending',
	resolution TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	resolved_at DATETIME,
	FOREIGN KEY (knowledge_item_id) REFERENCES knowledge_items(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_challenges_item ON knowledge_challenges(knowledge_item_id, status);

-- Training records (per crew-member per SOP certification progress)
CREATE TABLE IF NOT EXISTS training_records (
	id TEXT PRIMARY KEY,
	crew_member_id TEXT NOT NULL,
	sop_id TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('in_progress', 'review_ready', 'certified')) DEFAULT 'in_progress',
	certified_at DATETIME,
	certified_by TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (sop_id) REFERENCES sop_procedures(id),
	UNIQUE(crew_member_id, sop_id)
);

CREATE TABLE IF NOT EXISTS training_supervised_completions (
	id TEXT PRIMARY KEY,
	training_record_id TEXT NOT NULL,
	supervised_by TEXT,
	task_id TEXT,
	notes TEXT,
	completed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (training_record_id) REFERENCES training_records(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS training_review_attempts (
	id TEXT PRIMARY KEY,
	training_record_id TEXT NOT NULL,
	attempt_number INTEGER NOT NULL,
	score INTEGER,
	passed INTEGER NOT NULL DEFAULT 0,
	reviewed_by TEXT,
	attempted_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (training_record_id) REFERENCES training_records(id) ON DELETE CASCADE
);

-- Activity events (append-only feed consumed by audit/UI layers)
CREATE TABLE IF NOT EXISTS activity_events (
	id TEXT PRIMARY KEY,
	event_type TEXT NOT NULL,
	project_id TEXT,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	summary TEXT NOT NULL,
	event_data TEXT,
	homeowner_visible INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_activity_project ON activity_events(project_id);
`

// InitSchema creates the database schema
func InitSchema() error {
	db, err := GetDB()
	if err != nil {
		return err
	}

	// Check if schema_version table exists to determine if this is a fresh install
	var tableCount int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount == 0 {
		// Completely fresh install - create modern schema directly and mark
		// all migrations as applied so they never re-run.
		if _, err = db.Exec(SchemaSQL); err != nil {
			return err
		}
		_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)
		`)
		if err != nil {
			return err
		}
		for _, m := range migrations {
			if _, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
				return err
			}
		}
		return nil
	}

	// schema_version table exists - run any pending migrations
	return RunMigrations()
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
