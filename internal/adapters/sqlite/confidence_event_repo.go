package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/fieldloop/internal/ports/secondary"
)

// ConfidenceEventRepository implements secondary.ConfidenceEventRepository
// with SQLite. The ledger is append-only; there is no update or delete path.
type ConfidenceEventRepository struct {
	db *sql.DB
}

// NewConfidenceEventRepository creates a new SQLite confidence event
// repository.
func NewConfidenceEventRepository(db *sql.DB) *ConfidenceEventRepository {
	return &ConfidenceEventRepository{db: db}
}

// Create appends a ledger entry.
func (r *ConfidenceEventRepository) Create(ctx context.Context, event *secondary.ConfidenceEventRecord) error {
	if event.ID == "" {
		return fmt.Errorf("confidence event ID must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO confidence_events (id, knowledge_item_id, event_type, source_id,
			notes, confidence_change, new_confidence_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.KnowledgeItemID, event.EventType, nullStr(event.SourceID),
		nullStr(event.Notes), event.ConfidenceChange, event.NewConfidenceScore,
	)
	if err != nil {
		return fmt.Errorf("failed to create confidence event: %w", err)
	}
	return nil
}

// ListByItem retrieves an item's full ledger, newest first.
func (r *ConfidenceEventRepository) ListByItem(ctx context.Context, knowledgeItemID string) ([]*secondary.ConfidenceEventRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, knowledge_item_id, event_type, source_id, notes, confidence_change,
			new_confidence_score, created_at
		 FROM confidence_events WHERE knowledge_item_id = ?
		 ORDER BY created_at DESC, rowid DESC`,
		knowledgeItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list confidence events: %w", err)
	}
	defer rows.Close()

	var records []*secondary.ConfidenceEventRecord
	for rows.Next() {
		var (
			sourceID  sql.NullString
			notes     sql.NullString
			createdAt time.Time
		)
		record := &secondary.ConfidenceEventRecord{}
		err := rows.Scan(&record.ID, &record.KnowledgeItemID, &record.EventType,
			&sourceID, &notes, &record.ConfidenceChange, &record.NewConfidenceScore,
			&createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan confidence event: %w", err)
		}
		record.SourceID = sourceID.String
		record.Notes = notes.String
		record.CreatedAt = createdAt.Format(time.RFC3339)
		records = append(records, record)
	}
	return records, rows.Err()
}

// Ensure ConfidenceEventRepository implements the interface
var _ secondary.ConfidenceEventRepository = (*ConfidenceEventRepository)(nil)
