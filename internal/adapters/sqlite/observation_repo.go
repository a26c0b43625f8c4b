package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/fieldloop/internal/core/observation"
	"github.com/example/fieldloop/internal/ports/secondary"
)

// ObservationRepository implements secondary.ObservationRepository with
// SQLite.
type ObservationRepository struct {
	db *sql.DB
}

// NewObservationRepository creates a new SQLite observation repository.
func NewObservationRepository(db *sql.DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

const observationColumns = `id, project_id, task_id, sop_id, checklist_item_id, crew_member_id,
	knowledge_type, product_id, technique_id, tool_method_id, combination_id,
	deviated, deviation_notes, notes, photo_required, notes_required,
	condition_required, capture_method, work_category, trade, stage, created_at`

// Create persists a new field observation.
func (r *ObservationRepository) Create(ctx context.Context, obs *secondary.ObservationRecord) error {
	if obs.ID == "" {
		return fmt.Errorf("observation ID must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO field_observations (id, project_id, task_id, sop_id, checklist_item_id,
			crew_member_id, knowledge_type, product_id, technique_id, tool_method_id,
			combination_id, deviated, deviation_notes, notes, photo_required,
			notes_required, condition_required, capture_method, work_category, trade, stage)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		obs.ID, nullStr(obs.ProjectID), nullStr(obs.TaskID), nullStr(obs.SopID),
		nullStr(obs.ChecklistItemID), nullStr(obs.CrewMemberID), obs.KnowledgeType,
		nullStr(obs.ProductID), nullStr(obs.TechniqueID), nullStr(obs.ToolMethodID),
		nullStr(obs.CombinationID), obs.Deviated, nullStr(obs.DeviationNotes),
		nullStr(obs.Notes), obs.PhotoRequired, obs.NotesRequired,
		obs.ConditionRequired, obs.CaptureMethod, nullStr(obs.WorkCategory),
		nullStr(obs.Trade), nullStr(obs.Stage),
	)
	if err != nil {
		return fmt.Errorf("failed to create observation: %w", err)
	}
	return nil
}

// GetByID retrieves an observation by its ID.
func (r *ObservationRepository) GetByID(ctx context.Context, id string) (*secondary.ObservationRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+observationColumns+" FROM field_observations WHERE id = ?", id)
	record, err := scanObservation(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("observation %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get observation: %w", err)
	}
	return record, nil
}

// List retrieves observations matching the given filters.
func (r *ObservationRepository) List(ctx context.Context, filters secondary.ObservationFilters) ([]*secondary.ObservationRecord, error) {
	query := "SELECT " + observationColumns + " FROM field_observations WHERE 1=1"
	args := []any{}

	if filters.ProjectID != "" {
		query += " AND project_id = ?"
		args = append(args, filters.ProjectID)
	}
	if filters.TaskID != "" {
		query += " AND task_id = ?"
		args = append(args, filters.TaskID)
	}
	if filters.KnowledgeType != "" {
		query += " AND knowledge_type = ?"
		args = append(args, filters.KnowledgeType)
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}
	defer rows.Close()

	var records []*secondary.ObservationRecord
	for rows.Next() {
		record, err := scanObservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// AnnotateCallback writes the annotated notes and flips the capture method.
// Observations are otherwise immutable, so this is the only UPDATE on the
// table.
func (r *ObservationRepository) AnnotateCallback(ctx context.Context, id, notes string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE field_observations SET notes = ?, capture_method = ? WHERE id = ?",
		notes, string(observation.CaptureCallback), id)
	if err != nil {
		return fmt.Errorf("failed to annotate observation: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("observation %s not found", id)
	}

	return nil
}

// GetNextID returns the next available observation ID.
func (r *ObservationRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM field_observations",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next observation ID: %w", err)
	}

	return observation.GenerateObservationID(maxID), nil
}

func scanObservation(s scanner) (*secondary.ObservationRecord, error) {
	var (
		projectID       sql.NullString
		taskID          sql.NullString
		sopID           sql.NullString
		checklistItemID sql.NullString
		crewMemberID    sql.NullString
		productID       sql.NullString
		techniqueID     sql.NullString
		toolMethodID    sql.NullString
		comboID         sql.NullString
		deviationNotes  sql.NullString
		notes           sql.NullString
		workCategory    sql.NullString
		trade           sql.NullString
		stage           sql.NullString
		createdAt       time.Time
	)

	record := &secondary.ObservationRecord{}
	err := s.Scan(&record.ID, &projectID, &taskID, &sopID, &checklistItemID,
		&crewMemberID, &record.KnowledgeType, &productID, &techniqueID,
		&toolMethodID, &comboID, &record.Deviated, &deviationNotes, &notes,
		&record.PhotoRequired, &record.NotesRequired, &record.ConditionRequired,
		&record.CaptureMethod, &workCategory, &trade, &stage, &createdAt)
	if err != nil {
		return nil, err
	}

	record.ProjectID = projectID.String
	record.TaskID = taskID.String
	record.SopID = sopID.String
	record.ChecklistItemID = checklistItemID.String
	record.CrewMemberID = crewMemberID.String
	record.ProductID = productID.String
	record.TechniqueID = techniqueID.String
	record.ToolMethodID = toolMethodID.String
	record.CombinationID = comboID.String
	record.DeviationNotes = deviationNotes.String
	record.Notes = notes.String
	record.WorkCategory = workCategory.String
	record.Trade = trade.String
	record.Stage = stage.String
	record.CreatedAt = createdAt.Format(time.RFC3339)

	return record, nil
}

// Ensure ObservationRepository implements the interface
var _ secondary.ObservationRepository = (*ObservationRepository)(nil)
