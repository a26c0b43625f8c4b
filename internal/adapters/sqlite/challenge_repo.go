package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/fieldloop/internal/core/confidence"
	"github.com/example/fieldloop/internal/ports/secondary"
)

// ChallengeRepository implements secondary.ChallengeRepository with SQLite.
type ChallengeRepository struct {
	db *sql.DB
}

// NewChallengeRepository creates a new SQLite challenge repository.
func NewChallengeRepository(db *sql.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

const challengeColumns = `id, knowledge_item_id, challenged_by, reason, status, resolution,
	created_at, resolved_at`

// Create persists a new challenge.
func (r *ChallengeRepository) Create(ctx context.Context, challenge *secondary.ChallengeRecord) error {
	if challenge.ID == "" {
		return fmt.Errorf("challenge ID must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO knowledge_challenges (id, knowledge_item_id, challenged_by, reason, status)
		 VALUES (?, ?, ?, ?, ?)`,
		challenge.ID, challenge.KnowledgeItemID, challenge.ChallengedBy,
		challenge.Reason, challenge.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	return nil
}

// GetByID retrieves a challenge by its ID.
func (r *ChallengeRepository) GetByID(ctx context.Context, id string) (*secondary.ChallengeRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+challengeColumns+" FROM knowledge_challenges WHERE id = ?", id)
	record, err := scanChallenge(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("challenge %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return record, nil
}

// ListByItem retrieves challenges against a knowledge item, newest first.
func (r *ChallengeRepository) ListByItem(ctx context.Context, knowledgeItemID string) ([]*secondary.ChallengeRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+challengeColumns+" FROM knowledge_challenges WHERE knowledge_item_id = ? ORDER BY created_at DESC",
		knowledgeItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	var records []*secondary.ChallengeRecord
	for rows.Next() {
		record, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// CountActive returns the number of pending challenges for an item.
func (r *ChallengeRepository) CountActive(ctx context.Context, knowledgeItemID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM knowledge_challenges WHERE knowledge_item_id = ? AND status = ?",
		knowledgeItemID, string(confidence.ChallengePending)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active challenges: %w", err)
	}
	return count, nil
}

// Update updates an existing challenge's resolution fields.
func (r *ChallengeRepository) Update(ctx context.Context, challenge *secondary.ChallengeRecord) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE knowledge_challenges SET status = ?, resolution = ?, resolved_at = ? WHERE id = ?",
		challenge.Status, nullStr(challenge.Resolution), nullTime(challenge.ResolvedAt),
		challenge.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update challenge: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("challenge %s not found", challenge.ID)
	}

	return nil
}

// GetNextID returns the next available challenge ID.
func (r *ChallengeRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 6) AS INTEGER)), 0) FROM knowledge_challenges",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next challenge ID: %w", err)
	}

	return confidence.GenerateChallengeID(maxID), nil
}

func scanChallenge(s scanner) (*secondary.ChallengeRecord, error) {
	var (
		resolution sql.NullString
		createdAt  time.Time
		resolvedAt sql.NullTime
	)

	record := &secondary.ChallengeRecord{}
	err := s.Scan(&record.ID, &record.KnowledgeItemID, &record.ChallengedBy,
		&record.Reason, &record.Status, &resolution, &createdAt, &resolvedAt)
	if err != nil {
		return nil, err
	}

	record.Resolution = resolution.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	if resolvedAt.Valid {
		record.ResolvedAt = resolvedAt.Time.Format(time.RFC3339)
	}

	return record, nil
}

// Ensure ChallengeRepository implements the interface
var _ secondary.ChallengeRepository = (*ChallengeRepository)(nil)
