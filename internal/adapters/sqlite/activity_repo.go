package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/fieldloop/internal/ctxutil"
	"github.com/example/fieldloop/internal/ports/secondary"
)

// ActivityRepository implements secondary.ActivityRepository with SQLite.
type ActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new SQLite activity repository.
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create persists a new activity event row.
func (r *ActivityRepository) Create(ctx context.Context, record *secondary.ActivityRecord) error {
	if record.ID == "" {
		return fmt.Errorf("activity event ID must be pre-populated")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_events (id, event_type, project_id, entity_type, entity_id,
			summary, event_data, homeowner_visible)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.EventType, nullStr(record.ProjectID), record.EntityType,
		record.EntityID, record.Summary, nullStr(record.EventData), record.HomeownerVisible,
	)
	if err != nil {
		return fmt.Errorf("failed to create activity event: %w", err)
	}
	return nil
}

// ListByProject retrieves events for a project, newest first.
func (r *ActivityRepository) ListByProject(ctx context.Context, projectID string, limit int) ([]*secondary.ActivityRecord, error) {
	query := `SELECT id, event_type, project_id, entity_type, entity_id, summary,
		event_data, homeowner_visible, created_at
		FROM activity_events WHERE project_id = ?
		ORDER BY created_at DESC, rowid DESC`
	args := []any{projectID}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity events: %w", err)
	}
	defer rows.Close()

	var records []*secondary.ActivityRecord
	for rows.Next() {
		var (
			projID    sql.NullString
			eventData sql.NullString
			createdAt time.Time
		)
		record := &secondary.ActivityRecord{}
		err := rows.Scan(&record.ID, &record.EventType, &projID, &record.EntityType,
			&record.EntityID, &record.Summary, &eventData, &record.HomeownerVisible,
			&createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity event: %w", err)
		}
		record.ProjectID = projID.String
		record.EventData = eventData.String
		record.CreatedAt = createdAt.Format(time.RFC3339)
		records = append(records, record)
	}
	return records, rows.Err()
}

// ActivityLoggerAdapter implements secondary.ActivityLogger on top of the
// activity repository. Events get random UUIDs - the feed is append-only
// and never referenced by ID from other tables.
type ActivityLoggerAdapter struct {
	repo secondary.ActivityRepository
}

// NewActivityLoggerAdapter creates an activity logger backed by a repository.
func NewActivityLoggerAdapter(repo secondary.ActivityRepository) *ActivityLoggerAdapter {
	return &ActivityLoggerAdapter{repo: repo}
}

// Log writes one event to the activity feed. The acting crew member, when
// present on the context, is stamped into the event payload.
func (a *ActivityLoggerAdapter) Log(ctx context.Context, event secondary.ActivityEvent) error {
	if actor := ctxutil.ActorFromContext(ctx); actor != "" {
		if event.EventData == nil {
			event.EventData = map[string]any{}
		}
		if _, ok := event.EventData["actor"]; !ok {
			event.EventData["actor"] = actor
		}
	}

	var eventData string
	if len(event.EventData) > 0 {
		data, err := json.Marshal(event.EventData)
		if err != nil {
			return fmt.Errorf("failed to marshal event data: %w", err)
		}
		eventData = string(data)
	}

	return a.repo.Create(ctx, &secondary.ActivityRecord{
		ID:               uuid.NewString(),
		EventType:        event.EventType,
		ProjectID:        event.ProjectID,
		EntityType:       event.EntityType,
		EntityID:         event.EntityID,
		Summary:          event.Summary,
		EventData:        eventData,
		HomeownerVisible: event.HomeownerVisible,
	})
}

// Ensure interfaces are implemented
var (
	_ secondary.ActivityRepository = (*ActivityRepository)(nil)
	_ secondary.ActivityLogger     = (*ActivityLoggerAdapter)(nil)
)
