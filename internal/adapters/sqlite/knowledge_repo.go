package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/fieldloop/internal/core/confidence"
	"github.com/example/fieldloop/internal/ports/secondary"
)

// KnowledgeRepository implements secondary.KnowledgeRepository with SQLite.
// Catalog ID arrays are stored as JSON text columns.
type KnowledgeRepository struct {
	db *sql.DB
}

// NewKnowledgeRepository creates a new SQLite knowledge repository.
func NewKnowledgeRepository(db *sql.DB) *KnowledgeRepository {
	return &KnowledgeRepository{db: db}
}

const knowledgeColumns = `id, title, knowledge_type, category, trade, product_ids, technique_ids,
	tool_method_ids, confidence_score, status, observation_count, experiment_count,
	crew_agreement_rate, last_confidence_update, created_at, updated_at`

// Create persists a new knowledge item.
func (r *KnowledgeRepository) Create(ctx context.Context, item *secondary.KnowledgeRecord) error {
	if item.ID == "" {
		return fmt.Errorf("knowledge item ID must be pre-populated by service layer")
	}

	productIDs, err := marshalIDs(item.ProductIDs)
	if err != nil {
		return err
	}
	techniqueIDs, err := marshalIDs(item.TechniqueIDs)
	if err != nil {
		return err
	}
	toolMethodIDs, err := marshalIDs(item.ToolMethodIDs)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO knowledge_items (id, title, knowledge_type, category, trade,
			product_ids, technique_ids, tool_method_ids, confidence_score, status,
			observation_count, experiment_count, crew_agreement_rate, last_confidence_update)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Title, item.KnowledgeType, nullStr(item.Category), nullStr(item.Trade),
		productIDs, techniqueIDs, toolMethodIDs, item.ConfidenceScore, item.Status,
		item.ObservationCount, item.ExperimentCount, nullFloat(item.CrewAgreementRate),
		nullTime(item.LastConfidenceUpdate),
	)
	if err != nil {
		return fmt.Errorf("failed to create knowledge item: %w", err)
	}
	return nil
}

// GetByID retrieves a knowledge item by its ID.
func (r *KnowledgeRepository) GetByID(ctx context.Context, id string) (*secondary.KnowledgeRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+knowledgeColumns+" FROM knowledge_items WHERE id = ?", id)
	record, err := scanKnowledge(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("knowledge item %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get knowledge item: %w", err)
	}
	return record, nil
}

// List retrieves knowledge items matching the given filters.
func (r *KnowledgeRepository) List(ctx context.Context, filters secondary.KnowledgeFilters) ([]*secondary.KnowledgeRecord, error) {
	query := "SELECT " + knowledgeColumns + " FROM knowledge_items WHERE 1=1"
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	if filters.KnowledgeType != "" {
		query += " AND knowledge_type = ?"
		args = append(args, filters.KnowledgeType)
	}

	query += " ORDER BY id"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge items: %w", err)
	}
	defer rows.Close()

	var records []*secondary.KnowledgeRecord
	for rows.Next() {
		record, err := scanKnowledge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan knowledge item: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Update updates an existing knowledge item.
func (r *KnowledgeRepository) Update(ctx context.Context, item *secondary.KnowledgeRecord) error {
	productIDs, err := marshalIDs(item.ProductIDs)
	if err != nil {
		return err
	}
	techniqueIDs, err := marshalIDs(item.TechniqueIDs)
	if err != nil {
		return err
	}
	toolMethodIDs, err := marshalIDs(item.ToolMethodIDs)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE knowledge_items SET title = ?, category = ?, trade = ?, product_ids = ?,
			technique_ids = ?, tool_method_ids = ?, confidence_score = ?, status = ?,
			observation_count = ?, experiment_count = ?, crew_agreement_rate = ?,
			last_confidence_update = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		item.Title, nullStr(item.Category), nullStr(item.Trade), productIDs,
		techniqueIDs, toolMethodIDs, item.ConfidenceScore, item.Status,
		item.ObservationCount, item.ExperimentCount, nullFloat(item.CrewAgreementRate),
		nullTime(item.LastConfidenceUpdate), item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update knowledge item: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("knowledge item %s not found", item.ID)
	}

	return nil
}

// GetNextID returns the next available knowledge item ID.
func (r *KnowledgeRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 6) AS INTEGER)), 0) FROM knowledge_items",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next knowledge item ID: %w", err)
	}

	return confidence.GenerateKnowledgeID(maxID), nil
}

func scanKnowledge(s scanner) (*secondary.KnowledgeRecord, error) {
	var (
		category      sql.NullString
		trade         sql.NullString
		productIDs    string
		techniqueIDs  string
		toolMethodIDs string
		agreementRate sql.NullFloat64
		lastUpdate    sql.NullTime
		createdAt     time.Time
		updatedAt     time.Time
	)

	record := &secondary.KnowledgeRecord{}
	err := s.Scan(&record.ID, &record.Title, &record.KnowledgeType, &category, &trade,
		&productIDs, &techniqueIDs, &toolMethodIDs, &record.ConfidenceScore,
		&record.Status, &record.ObservationCount, &record.ExperimentCount,
		&agreementRate, &lastUpdate, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	record.Category = category.String
	record.Trade = trade.String
	if record.ProductIDs, err = unmarshalIDs(productIDs); err != nil {
		return nil, err
	}
	if record.TechniqueIDs, err = unmarshalIDs(techniqueIDs); err != nil {
		return nil, err
	}
	if record.ToolMethodIDs, err = unmarshalIDs(toolMethodIDs); err != nil {
		return nil, err
	}
	if agreementRate.Valid {
		rate := agreementRate.Float64
		record.CrewAgreementRate = &rate
	}
	if lastUpdate.Valid {
		record.LastConfidenceUpdate = lastUpdate.Time.Format(time.RFC3339)
	}
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	return record, nil
}

// marshalIDs serializes a catalog ID list as JSON, nil becoming [].
func marshalIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to marshal catalog IDs: %w", err)
	}
	return string(data), nil
}

func unmarshalIDs(data string) ([]string, error) {
	if data == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog IDs: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}

// nullFloat converts a nil pointer to a SQL null.
func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// Ensure KnowledgeRepository implements the interface
var _ secondary.KnowledgeRepository = (*KnowledgeRepository)(nil)
