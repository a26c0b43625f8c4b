package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/fieldloop/internal/ports/secondary"
)

// ChecklistRepository implements secondary.ChecklistRepository with SQLite.
type ChecklistRepository struct {
	db *sql.DB
}

// NewChecklistRepository creates a new SQLite checklist repository.
func NewChecklistRepository(db *sql.DB) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

const checklistColumns = `id, sop_id, step_number, title, instructions, generates_observation,
	trigger_timing, knowledge_type, product_id, technique_id, tool_method_id,
	combination_id, created_at`

// Create persists a new checklist item template.
func (r *ChecklistRepository) Create(ctx context.Context, item *secondary.ChecklistItemRecord) error {
	if item.ID == "" {
		return fmt.Errorf("checklist item ID must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sop_checklist_items (id, sop_id, step_number, title, instructions,
			generates_observation, trigger_timing, knowledge_type, product_id,
			technique_id, tool_method_id, combination_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.SopID, item.StepNumber, item.Title, nullStr(item.Instructions),
		item.GeneratesObservation, item.TriggerTiming, nullStr(item.KnowledgeType),
		nullStr(item.ProductID), nullStr(item.TechniqueID), nullStr(item.ToolMethodID),
		nullStr(item.CombinationID),
	)
	if err != nil {
		return fmt.Errorf("failed to create checklist item: %w", err)
	}
	return nil
}

// GetByID retrieves a checklist item by its ID.
func (r *ChecklistRepository) GetByID(ctx context.Context, id string) (*secondary.ChecklistItemRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+checklistColumns+" FROM sop_checklist_items WHERE id = ?", id)
	record, err := scanChecklistItem(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("checklist item %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist item: %w", err)
	}
	return record, nil
}

// GetBySop retrieves all items for an SOP version ordered by step number.
func (r *ChecklistRepository) GetBySop(ctx context.Context, sopID string) ([]*secondary.ChecklistItemRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+checklistColumns+" FROM sop_checklist_items WHERE sop_id = ? ORDER BY step_number", sopID)
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist: %w", err)
	}
	defer rows.Close()
	return scanChecklistItems(rows)
}

// GetGenerating retrieves the observation-generating items, ordered by step number.
func (r *ChecklistRepository) GetGenerating(ctx context.Context, sopID string) ([]*secondary.ChecklistItemRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+checklistColumns+" FROM sop_checklist_items WHERE sop_id = ? AND generates_observation = 1 ORDER BY step_number", sopID)
	if err != nil {
		return nil, fmt.Errorf("failed to get generating items: %w", err)
	}
	defer rows.Close()
	return scanChecklistItems(rows)
}

// Delete removes a checklist item.
func (r *ChecklistRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM sop_checklist_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete checklist item: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("checklist item %s not found", id)
	}

	return nil
}

// Renumber applies new step numbers to the given items inside one
// transaction. Two passes: steps are first moved to their negatives so the
// UNIQUE(sop_id, step_number) constraint never collides mid-shift, then set
// to their final values.
func (r *ChecklistRepository) Renumber(ctx context.Context, sopID string, steps map[string]int) error {
	if len(steps) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin renumber transaction: %w", err)
	}
	defer tx.Rollback()

	for id := range steps {
		result, err := tx.ExecContext(ctx,
			"UPDATE sop_checklist_items SET step_number = -step_number WHERE id = ? AND sop_id = ?",
			id, sopID)
		if err != nil {
			return fmt.Errorf("failed to renumber item %s: %w", id, err)
		}
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			return fmt.Errorf("checklist item %s not found", id)
		}
	}

	for id, step := range steps {
		if _, err := tx.ExecContext(ctx,
			"UPDATE sop_checklist_items SET step_number = ? WHERE id = ? AND sop_id = ?",
			step, id, sopID); err != nil {
			return fmt.Errorf("failed to renumber item %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit renumber transaction: %w", err)
	}
	return nil
}

func scanChecklistItem(s scanner) (*secondary.ChecklistItemRecord, error) {
	var (
		instructions sql.NullString
		knowType     sql.NullString
		productID    sql.NullString
		techniqueID  sql.NullString
		toolMethodID sql.NullString
		comboID      sql.NullString
		createdAt    time.Time
	)

	record := &secondary.ChecklistItemRecord{}
	err := s.Scan(&record.ID, &record.SopID, &record.StepNumber, &record.Title,
		&instructions, &record.GeneratesObservation, &record.TriggerTiming,
		&knowType, &productID, &techniqueID, &toolMethodID, &comboID, &createdAt)
	if err != nil {
		return nil, err
	}

	record.Instructions = instructions.String
	record.KnowledgeType = knowType.String
	record.ProductID = productID.String
	record.TechniqueID = techniqueID.String
	record.ToolMethodID = toolMethodID.String
	record.CombinationID = comboID.String
	record.CreatedAt = createdAt.Format(time.RFC3339)

	return record, nil
}

func scanChecklistItems(rows *sql.Rows) ([]*secondary.ChecklistItemRecord, error) {
	var records []*secondary.ChecklistItemRecord
	for rows.Next() {
		record, err := scanChecklistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Ensure ChecklistRepository implements the interface
var _ secondary.ChecklistRepository = (*ChecklistRepository)(nil)
