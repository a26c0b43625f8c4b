package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the database with comprehensive development fixtures.
// Uses realistic IDs and data that exercises complex relationships.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UTC().Format(time.RFC3339)

	// Projects
	projects := []struct{ id, name, projectType, linked, reason string }{
		{"PROJ-001", "Maple St Bathroom", "standard", "", ""},
		{"PROJ-002", "Oak Ave Kitchen", "standard", "", ""},
		{"PROJ-003", "Maple St Bathroom (callback)", "callback", "PROJ-001", "shower pan leak at drain"},
	}
	for _, p := range projects {
		var linked, reason any
		if p.linked != "" {
			linked = p.linked
		}
		if p.reason != "" {
			reason = p.reason
		}
		if _, err := database.Exec(
			"INSERT INTO projects (id, name, integration_project_type, linked_project_id, callback_reason, budget, status, created_at) VALUES (?, ?, ?, ?, ?, 18000, 'active', ?)",
			p.id, p.name, p.projectType, linked, reason, now,
		); err != nil {
			return fmt.Errorf("seed projects: %w", err)
		}
	}

	// SOPs
	sops := []struct {
		id, code, title, category, trade, mode string
		required                               int
	}{
		{"SOP-001", "TILE-SHOWER-PAN", "Tile shower pan prep", "tile", "tile", "standard", 3},
		{"SOP-002", "WATERPROOF-MEMBRANE", "Waterproofing membrane application", "waterproofing", "tile", "detailed", 5},
	}
	for _, s := range sops {
		if _, err := database.Exec(
			"INSERT INTO sop_procedures (id, sop_code, version, is_current, title, category, trade, observation_mode, required_supervised_completions, status, created_at) VALUES (?, ?, 1, 1, ?, ?, ?, ?, ?, 'active', ?)",
			s.id, s.code, s.title, s.category, s.trade, s.mode, s.required, now,
		); err != nil {
			return fmt.Errorf("seed sops: %w", err)
		}
	}

	// Checklist items
	items := []struct {
		id, sopID   string
		step        int
		title       string
		generates   bool
		timing      string
		knowledge   string
		productID   string
	}{
		{"ITEM-001", "SOP-001", 1, "Verify slope to drain", false, "on_check", "", ""},
		{"ITEM-002", "SOP-001", 2, "Apply pan liner", true, "on_check", "product_performance", "PROD-100"},
		{"ITEM-003", "SOP-001", 3, "Flood test", true, "batch", "technique_outcome", ""},
		{"ITEM-004", "SOP-002", 1, "Surface prep and priming", true, "on_check", "product_performance", "PROD-200"},
		{"ITEM-005", "SOP-002", 2, "Roll first membrane coat", true, "batch", "product_performance", "PROD-200"},
	}
	for _, it := range items {
		generates := 0
		if it.generates {
			generates = 1
		}
		var knowledge, productID any
		if it.knowledge != "" {
			knowledge = it.knowledge
		}
		if it.productID != "" {
			productID = it.productID
		}
		if _, err := database.Exec(
			"INSERT INTO sop_checklist_items (id, sop_id, step_number, title, generates_observation, trigger_timing, knowledge_type, product_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			it.id, it.sopID, it.step, it.title, generates, it.timing, knowledge, productID, now,
		); err != nil {
			return fmt.Errorf("seed checklist items: %w", err)
		}
	}

	// Knowledge items
	knowledge := []struct {
		id, title, knowledgeType, productIDs, status string
		score                                        int
	}{
		{"KNOW-001", "PROD-100 pan liner seals reliably on first flood test", "product_performance", `["PROD-100"]`, "published", 74},
		{"KNOW-002", "PROD-200 membrane cures slow below 10C", "product_performance", `["PROD-200"]`, "draft", 50},
		{"KNOW-003", "Back-buttering improves large format adhesion", "technique_outcome", `[]`, "draft", 58},
	}
	for _, k := range knowledge {
		if _, err := database.Exec(
			"INSERT INTO knowledge_items (id, title, knowledge_type, product_ids, confidence_score, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			k.id, k.title, k.knowledgeType, k.productIDs, k.score, k.status, now,
		); err != nil {
			return fmt.Errorf("seed knowledge items: %w", err)
		}
	}

	// Observations on the original project
	observations := []struct{ id, projectID, taskID, sopID, itemID, knowledgeType, productID string }{
		{"OBS-001", "PROJ-001", "TASK-001", "SOP-001", "ITEM-002", "product_performance", "PROD-100"},
		{"OBS-002", "PROJ-001", "TASK-001", "SOP-001", "ITEM-003", "technique_outcome", ""},
	}
	for _, o := range observations {
		var productID any
		if o.productID != "" {
			productID = o.productID
		}
		if _, err := database.Exec(
			"INSERT INTO field_observations (id, project_id, task_id, sop_id, checklist_item_id, crew_member_id, knowledge_type, product_id, capture_method, created_at) VALUES (?, ?, ?, ?, ?, 'crew-7', ?, ?, 'automatic', ?)",
			o.id, o.projectID, o.taskID, o.sopID, o.itemID, o.knowledgeType, productID, now,
		); err != nil {
			return fmt.Errorf("seed observations: %w", err)
		}
	}

	// Link OBS-001 to KNOW-001 the way the auto-linker would
	if _, err := database.Exec(
		"INSERT INTO observation_knowledge_links (id, observation_id, knowledge_item_id, link_type, link_confidence, created_at) VALUES ('LINK-001', 'OBS-001', 'KNOW-001', 'auto_detected', 95, ?)",
		now,
	); err != nil {
		return fmt.Errorf("seed links: %w", err)
	}

	// Training records
	if _, err := database.Exec(
		"INSERT INTO training_records (id, crew_member_id, sop_id, status, created_at) VALUES ('TRAIN-001', 'crew-7', 'SOP-001', 'review_ready', ?)",
		now,
	); err != nil {
		return fmt.Errorf("seed training records: %w", err)
	}
	for i := 1; i <= 3; i++ {
		if _, err := database.Exec(
			"INSERT INTO training_supervised_completions (id, training_record_id, supervised_by, task_id, completed_at) VALUES (?, 'TRAIN-001', 'sup-2', 'TASK-001', ?)",
			fmt.Sprintf("COMP-%03d", i), now,
		); err != nil {
			return fmt.Errorf("seed supervised completions: %w", err)
		}
	}

	return nil
}
