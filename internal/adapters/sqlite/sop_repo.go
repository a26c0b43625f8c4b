// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	coresop "github.com/example/fieldloop/internal/core/sop"
	"github.com/example/fieldloop/internal/ports/secondary"
)

// SopRepository implements secondary.SopRepository with SQLite.
type SopRepository struct {
	db *sql.DB
}

// NewSopRepository creates a new SQLite SOP repository.
func NewSopRepository(db *sql.DB) *SopRepository {
	return &SopRepository{db: db}
}

const sopColumns = `id, sop_code, version, is_current, previous_version_id, superseded_date,
	version_notes, title, description, category, trade, observation_mode,
	required_supervised_completions, status, created_at, updated_at`

// Create persists a new SOP version row.
// The record must have ID, SopCode, and Status pre-populated by the service layer.
func (r *SopRepository) Create(ctx context.Context, sop *secondary.SopRecord) error {
	if sop.ID == "" {
		return fmt.Errorf("SOP ID must be pre-populated by service layer")
	}
	if sop.SopCode == "" {
		return fmt.Errorf("SOP code must be pre-populated by service layer")
	}
	return r.insert(ctx, r.db, sop)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SopRepository) insert(ctx context.Context, ex execer, sop *secondary.SopRecord) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO sop_procedures (id, sop_code, version, is_current, previous_version_id,
			superseded_date, version_notes, title, description, category, trade,
			observation_mode, required_supervised_completions, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sop.ID, sop.SopCode, sop.Version, sop.IsCurrent, nullStr(sop.PreviousVersionID),
		nullTime(sop.SupersededDate), nullStr(sop.VersionNotes), sop.Title,
		nullStr(sop.Description), nullStr(sop.Category), nullStr(sop.Trade),
		sop.ObservationMode, sop.RequiredSupervisedCompletions, sop.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create SOP: %w", err)
	}
	return nil
}

// GetByID retrieves an SOP version by its row ID.
func (r *SopRepository) GetByID(ctx context.Context, id string) (*secondary.SopRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sopColumns+" FROM sop_procedures WHERE id = ?", id)
	record, err := scanSop(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("SOP %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get SOP: %w", err)
	}
	return record, nil
}

// GetCurrentByCode retrieves the current version for an sop_code.
func (r *SopRepository) GetCurrentByCode(ctx context.Context, sopCode string) (*secondary.SopRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sopColumns+" FROM sop_procedures WHERE sop_code = ? AND is_current = 1", sopCode)
	record, err := scanSop(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("SOP %s not found", sopCode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current SOP: %w", err)
	}
	return record, nil
}

// GetVersionHistory retrieves every version for an sop_code, newest first.
func (r *SopRepository) GetVersionHistory(ctx context.Context, sopCode string) ([]*secondary.SopRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sopColumns+" FROM sop_procedures WHERE sop_code = ? ORDER BY version DESC", sopCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get version history: %w", err)
	}
	defer rows.Close()
	return scanSops(rows)
}

// List retrieves SOP versions matching the given filters.
func (r *SopRepository) List(ctx context.Context, filters secondary.SopFilters) ([]*secondary.SopRecord, error) {
	query := "SELECT " + sopColumns + " FROM sop_procedures WHERE 1=1"
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	if filters.Category != "" {
		query += " AND category = ?"
		args = append(args, filters.Category)
	}
	if filters.CurrentOnly {
		query += " AND is_current = 1"
	}

	query += " ORDER BY sop_code, version DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list SOPs: %w", err)
	}
	defer rows.Close()
	return scanSops(rows)
}

// Update updates an existing SOP version row.
func (r *SopRepository) Update(ctx context.Context, sop *secondary.SopRecord) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sop_procedures SET title = ?, description = ?, is_current = ?,
			superseded_date = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		sop.Title, nullStr(sop.Description), sop.IsCurrent,
		nullTime(sop.SupersededDate), sop.Status, sop.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update SOP: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("SOP %s not found", sop.ID)
	}

	return nil
}

// CreateNextVersion atomically supersedes the current version, inserts the
// new version row, and copies the checklist into it. The whole sequence is
// one transaction so a crash cannot leave is_current unset on both rows.
func (r *SopRepository) CreateNextVersion(ctx context.Context, currentID string, next *secondary.SopRecord, items []*secondary.ChecklistItemRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin version transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"UPDATE sop_procedures SET is_current = 0, superseded_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND is_current = 1",
		time.Now().Format(time.RFC3339), currentID,
	)
	if err != nil {
		return fmt.Errorf("failed to supersede SOP %s: %w", currentID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("SOP %s not found or no longer current", currentID)
	}

	if err := r.insert(ctx, tx, next); err != nil {
		return err
	}

	for _, item := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sop_checklist_items (id, sop_id, step_number, title, instructions,
				generates_observation, trigger_timing, knowledge_type, product_id,
				technique_id, tool_method_id, combination_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, next.ID, item.StepNumber, item.Title, nullStr(item.Instructions),
			item.GeneratesObservation, item.TriggerTiming, nullStr(item.KnowledgeType),
			nullStr(item.ProductID), nullStr(item.TechniqueID), nullStr(item.ToolMethodID),
			nullStr(item.CombinationID),
		)
		if err != nil {
			return fmt.Errorf("failed to copy checklist item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit version transaction: %w", err)
	}
	return nil
}

// GetNextID returns the next available SOP row ID.
// Uses core function for ID format to keep business logic in the functional core.
func (r *SopRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM sop_procedures",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next SOP ID: %w", err)
	}

	return coresop.GenerateSopID(maxID), nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanSop(s scanner) (*secondary.SopRecord, error) {
	var (
		prevID         sql.NullString
		superseded     sql.NullTime
		versionNotes   sql.NullString
		desc           sql.NullString
		category       sql.NullString
		trade          sql.NullString
		createdAt      time.Time
		updatedAt      time.Time
	)

	record := &secondary.SopRecord{}
	err := s.Scan(&record.ID, &record.SopCode, &record.Version, &record.IsCurrent,
		&prevID, &superseded, &versionNotes, &record.Title, &desc, &category, &trade,
		&record.ObservationMode, &record.RequiredSupervisedCompletions, &record.Status,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	record.PreviousVersionID = prevID.String
	record.VersionNotes = versionNotes.String
	record.Description = desc.String
	record.Category = category.String
	record.Trade = trade.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)
	if superseded.Valid {
		record.SupersededDate = superseded.Time.Format(time.RFC3339)
	}

	return record, nil
}

func scanSops(rows *sql.Rows) ([]*secondary.SopRecord, error) {
	var records []*secondary.SopRecord
	for rows.Next() {
		record, err := scanSop(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan SOP: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// nullStr converts an empty string to a SQL null.
func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullTime converts an empty RFC3339 string to a SQL null.
func nullTime(s string) sql.NullTime {
	if s == "" {
		return sql.NullTime{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// Ensure SopRepository implements the interface
var _ secondary.SopRepository = (*SopRepository)(nil)
