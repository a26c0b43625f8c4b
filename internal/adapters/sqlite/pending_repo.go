package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/fieldloop/internal/ports/secondary"
)

// PendingBatchRepository implements secondary.PendingBatchRepository with
// SQLite.
type PendingBatchRepository struct {
	db *sql.DB
}

// NewPendingBatchRepository creates a new SQLite pending batch repository.
func NewPendingBatchRepository(db *sql.DB) *PendingBatchRepository {
	return &PendingBatchRepository{db: db}
}

const pendingColumns = `id, task_id, checklist_item_id, crew_member_id, status, draft_json,
	created_at, processed_at`

// Create persists a new pending batch draft.
func (r *PendingBatchRepository) Create(ctx context.Context, pending *secondary.PendingBatchRecord) error {
	if pending.ID == "" {
		return fmt.Errorf("pending draft ID must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pending_batch_observations (id, task_id, checklist_item_id,
			crew_member_id, status, draft_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		pending.ID, pending.TaskID, pending.ChecklistItemID,
		nullStr(pending.CrewMemberID), pending.Status, pending.DraftJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to create pending draft: %w", err)
	}
	return nil
}

// GetByID retrieves a pending draft by its ID.
func (r *PendingBatchRepository) GetByID(ctx context.Context, id string) (*secondary.PendingBatchRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+pendingColumns+" FROM pending_batch_observations WHERE id = ?", id)
	record, err := scanPending(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("pending draft %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending draft: %w", err)
	}
	return record, nil
}

// ListByTask retrieves drafts for a task, oldest first so batch review walks
// the checklist in the order it was worked.
func (r *PendingBatchRepository) ListByTask(ctx context.Context, taskID, status string) ([]*secondary.PendingBatchRecord, error) {
	query := "SELECT " + pendingColumns + " FROM pending_batch_observations WHERE task_id = ?"
	args := []any{taskID}

	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending drafts: %w", err)
	}
	defer rows.Close()

	var records []*secondary.PendingBatchRecord
	for rows.Next() {
		record, err := scanPending(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending draft: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// MarkProcessed sets a draft's terminal status and processed timestamp.
// Only pending drafts can be marked, which makes the operation idempotent.
func (r *PendingBatchRepository) MarkProcessed(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE pending_batch_observations SET status = ?, processed_at = CURRENT_TIMESTAMP WHERE id = ? AND status = 'pending'",
		status, id)
	if err != nil {
		return fmt.Errorf("failed to mark pending draft processed: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("pending draft %s not found or already processed", id)
	}

	return nil
}

// DeleteProcessed removes all non-pending drafts for a task.
func (r *PendingBatchRepository) DeleteProcessed(ctx context.Context, taskID string) (int, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM pending_batch_observations WHERE task_id = ? AND status != 'pending'", taskID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed drafts: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return int(rowsAffected), nil
}

func scanPending(s scanner) (*secondary.PendingBatchRecord, error) {
	var (
		crewMemberID sql.NullString
		createdAt    time.Time
		processedAt  sql.NullTime
	)

	record := &secondary.PendingBatchRecord{}
	err := s.Scan(&record.ID, &record.TaskID, &record.ChecklistItemID,
		&crewMemberID, &record.Status, &record.DraftJSON, &createdAt, &processedAt)
	if err != nil {
		return nil, err
	}

	record.CrewMemberID = crewMemberID.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	if processedAt.Valid {
		record.ProcessedAt = processedAt.Time.Format(time.RFC3339)
	}

	return record, nil
}

// Ensure PendingBatchRepository implements the interface
var _ secondary.PendingBatchRepository = (*PendingBatchRepository)(nil)
