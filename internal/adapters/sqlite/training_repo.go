package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/fieldloop/internal/core/training"
	"github.com/example/fieldloop/internal/ports/secondary"
)

// TrainingRepository implements secondary.TrainingRepository with SQLite.
type TrainingRepository struct {
	db *sql.DB
}

// NewTrainingRepository creates a new SQLite training repository.
func NewTrainingRepository(db *sql.DB) *TrainingRepository {
	return &TrainingRepository{db: db}
}

const trainingColumns = `id, crew_member_id, sop_id, status, certified_at, certified_by,
	created_at, updated_at`

// Create persists a new training record.
func (r *TrainingRepository) Create(ctx context.Context, record *secondary.TrainingRecord) error {
	if record.ID == "" {
		return fmt.Errorf("training record ID must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO training_records (id, crew_member_id, sop_id, status)
		 VALUES (?, ?, ?, ?)`,
		record.ID, record.CrewMemberID, record.SopID, record.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create training record: %w", err)
	}
	return nil
}

// GetByCrewAndSop retrieves the record for a (crew member, SOP) pair.
func (r *TrainingRepository) GetByCrewAndSop(ctx context.Context, crewMemberID, sopID string) (*secondary.TrainingRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+trainingColumns+" FROM training_records WHERE crew_member_id = ? AND sop_id = ?",
		crewMemberID, sopID)
	record, err := scanTraining(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("training record for %s on %s not found", crewMemberID, sopID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get training record: %w", err)
	}
	return record, nil
}

// ListByCrewMember retrieves all records for a crew member.
func (r *TrainingRepository) ListByCrewMember(ctx context.Context, crewMemberID string) ([]*secondary.TrainingRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+trainingColumns+" FROM training_records WHERE crew_member_id = ? ORDER BY sop_id",
		crewMemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list training records: %w", err)
	}
	defer rows.Close()
	return scanTrainings(rows)
}

// ListBySop retrieves all records for an SOP.
func (r *TrainingRepository) ListBySop(ctx context.Context, sopID string) ([]*secondary.TrainingRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+trainingColumns+" FROM training_records WHERE sop_id = ? ORDER BY crew_member_id",
		sopID)
	if err != nil {
		return nil, fmt.Errorf("failed to list training records: %w", err)
	}
	defer rows.Close()
	return scanTrainings(rows)
}

// Update updates an existing training record.
func (r *TrainingRepository) Update(ctx context.Context, record *secondary.TrainingRecord) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE training_records SET status = ?, certified_at = ?, certified_by = ?,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		record.Status, nullTime(record.CertifiedAt), nullStr(record.CertifiedBy), record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update training record: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("training record %s not found", record.ID)
	}

	return nil
}

// AddSupervisedCompletion appends a supervised completion entry.
func (r *TrainingRepository) AddSupervisedCompletion(ctx context.Context, entry *secondary.SupervisedCompletionRecord) error {
	if entry.ID == "" {
		return fmt.Errorf("supervised completion ID must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO training_supervised_completions (id, training_record_id, supervised_by,
			task_id, notes)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.TrainingRecordID, entry.SupervisedBy,
		nullStr(entry.TaskID), nullStr(entry.Notes),
	)
	if err != nil {
		return fmt.Errorf("failed to add supervised completion: %w", err)
	}
	return nil
}

// CountSupervisedCompletions returns the completion count for a record.
func (r *TrainingRepository) CountSupervisedCompletions(ctx context.Context, trainingRecordID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM training_supervised_completions WHERE training_record_id = ?",
		trainingRecordID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count supervised completions: %w", err)
	}
	return count, nil
}

// ListSupervisedCompletions retrieves a record's completion history, oldest
// first.
func (r *TrainingRepository) ListSupervisedCompletions(ctx context.Context, trainingRecordID string) ([]*secondary.SupervisedCompletionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, training_record_id, supervised_by, task_id, notes, completed_at
		 FROM training_supervised_completions WHERE training_record_id = ?
		 ORDER BY completed_at`,
		trainingRecordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list supervised completions: %w", err)
	}
	defer rows.Close()

	var records []*secondary.SupervisedCompletionRecord
	for rows.Next() {
		var (
			taskID      sql.NullString
			notes       sql.NullString
			completedAt time.Time
		)
		record := &secondary.SupervisedCompletionRecord{}
		err := rows.Scan(&record.ID, &record.TrainingRecordID, &record.SupervisedBy,
			&taskID, &notes, &completedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan supervised completion: %w", err)
		}
		record.TaskID = taskID.String
		record.Notes = notes.String
		record.CompletedAt = completedAt.Format(time.RFC3339)
		records = append(records, record)
	}
	return records, rows.Err()
}

// AddReviewAttempt appends a review attempt entry.
func (r *TrainingRepository) AddReviewAttempt(ctx context.Context, entry *secondary.ReviewAttemptRecord) error {
	if entry.ID == "" {
		return fmt.Errorf("review attempt ID must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO training_review_attempts (id, training_record_id, attempt_number,
			score, passed, reviewed_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.TrainingRecordID, entry.AttemptNumber, entry.Score,
		entry.Passed, entry.ReviewedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to add review attempt: %w", err)
	}
	return nil
}

// CountReviewAttempts returns the review attempt count for a record.
func (r *TrainingRepository) CountReviewAttempts(ctx context.Context, trainingRecordID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM training_review_attempts WHERE training_record_id = ?",
		trainingRecordID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count review attempts: %w", err)
	}
	return count, nil
}

// ListReviewAttempts retrieves a record's review attempt history in attempt
// order.
func (r *TrainingRepository) ListReviewAttempts(ctx context.Context, trainingRecordID string) ([]*secondary.ReviewAttemptRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, training_record_id, attempt_number, score, passed, reviewed_by, attempted_at
		 FROM training_review_attempts WHERE training_record_id = ?
		 ORDER BY attempt_number`,
		trainingRecordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list review attempts: %w", err)
	}
	defer rows.Close()

	var records []*secondary.ReviewAttemptRecord
	for rows.Next() {
		var attemptedAt time.Time
		record := &secondary.ReviewAttemptRecord{}
		err := rows.Scan(&record.ID, &record.TrainingRecordID, &record.AttemptNumber,
			&record.Score, &record.Passed, &record.ReviewedBy, &attemptedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review attempt: %w", err)
		}
		record.AttemptedAt = attemptedAt.Format(time.RFC3339)
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetNextID returns the next available training record ID.
func (r *TrainingRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 7) AS INTEGER)), 0) FROM training_records",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next training record ID: %w", err)
	}

	return training.GenerateTrainingID(maxID), nil
}

func scanTraining(s scanner) (*secondary.TrainingRecord, error) {
	var (
		certifiedAt sql.NullTime
		certifiedBy sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
	)

	record := &secondary.TrainingRecord{}
	err := s.Scan(&record.ID, &record.CrewMemberID, &record.SopID, &record.Status,
		&certifiedAt, &certifiedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	record.CertifiedBy = certifiedBy.String
	if certifiedAt.Valid {
		record.CertifiedAt = certifiedAt.Time.Format(time.RFC3339)
	}
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	return record, nil
}

func scanTrainings(rows *sql.Rows) ([]*secondary.TrainingRecord, error) {
	var records []*secondary.TrainingRecord
	for rows.Next() {
		record, err := scanTraining(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan training record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Ensure TrainingRepository implements the interface
var _ secondary.TrainingRepository = (*TrainingRepository)(nil)
