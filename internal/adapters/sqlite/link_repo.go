package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	corelinker "github.com/example/fieldloop/internal/core/linker"
	"github.com/example/fieldloop/internal/ports/secondary"
)

// LinkRepository implements secondary.LinkRepository with SQLite.
type LinkRepository struct {
	db *sql.DB
}

// NewLinkRepository creates a new SQLite link repository.
func NewLinkRepository(db *sql.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

const linkColumns = `id, observation_id, knowledge_item_id, link_type, link_confidence, created_at`

// Create persists a new link.
func (r *LinkRepository) Create(ctx context.Context, link *secondary.LinkRecord) error {
	if link.ID == "" {
		return fmt.Errorf("link ID must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO observation_knowledge_links (id, observation_id, knowledge_item_id,
			link_type, link_confidence)
		 VALUES (?, ?, ?, ?, ?)`,
		link.ID, link.ObservationID, link.KnowledgeItemID, link.LinkType,
		nullInt(link.LinkConfidence),
	)
	if err != nil {
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

// ListByObservation retrieves links for an observation.
func (r *LinkRepository) ListByObservation(ctx context.Context, observationID string) ([]*secondary.LinkRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+linkColumns+" FROM observation_knowledge_links WHERE observation_id = ? ORDER BY created_at",
		observationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()
	return scanLinks(rows)
}

// ListByKnowledgeItem retrieves links pointing at a knowledge item.
func (r *LinkRepository) ListByKnowledgeItem(ctx context.Context, knowledgeItemID string) ([]*secondary.LinkRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+linkColumns+" FROM observation_knowledge_links WHERE knowledge_item_id = ? ORDER BY created_at",
		knowledgeItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()
	return scanLinks(rows)
}

// DeleteAutoDetected removes an observation's auto_detected links only.
// Manual and experiment links survive relinks.
func (r *LinkRepository) DeleteAutoDetected(ctx context.Context, observationID string) (int, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM observation_knowledge_links WHERE observation_id = ? AND link_type = ?",
		observationID, string(corelinker.LinkAutoDetected))
	if err != nil {
		return 0, fmt.Errorf("failed to delete auto-detected links: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return int(rowsAffected), nil
}

func scanLinks(rows *sql.Rows) ([]*secondary.LinkRecord, error) {
	var records []*secondary.LinkRecord
	for rows.Next() {
		var (
			confidence sql.NullInt64
			createdAt  time.Time
		)
		record := &secondary.LinkRecord{}
		err := rows.Scan(&record.ID, &record.ObservationID, &record.KnowledgeItemID,
			&record.LinkType, &confidence, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		if confidence.Valid {
			c := int(confidence.Int64)
			record.LinkConfidence = &c
		}
		record.CreatedAt = createdAt.Format(time.RFC3339)
		records = append(records, record)
	}
	return records, rows.Err()
}

// nullInt converts a nil pointer to a SQL null.
func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

// Ensure LinkRepository implements the interface
var _ secondary.LinkRepository = (*LinkRepository)(nil)
