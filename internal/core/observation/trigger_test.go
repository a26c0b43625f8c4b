package observation

import (
	"testing"

	"github.com/example/fieldloop/internal/core/sop"
)

func TestEvaluateTrigger(t *testing.T) {
	tests := []struct {
		name        string
		tmpl        TemplateInput
		mode        sop.ObservationMode
		wantOutcome TriggerOutcome
	}{
		{
			name:        "non-generating template produces nothing",
			tmpl:        TemplateInput{ChecklistItemID: "item-1", GeneratesObservation: false},
			mode:        sop.ModeStandard,
			wantOutcome: OutcomeNoObservation,
		},
		{
			name: "on_check template requires immediate confirm",
			tmpl: TemplateInput{
				ChecklistItemID:      "item-2",
				GeneratesObservation: true,
				TriggerTiming:        TimingOnCheck,
				KnowledgeType:        "product_performance",
			},
			mode:        sop.ModeStandard,
			wantOutcome: OutcomeImmediateConfirm,
		},
		{
			name: "batch template queues a pending draft",
			tmpl: TemplateInput{
				ChecklistItemID:      "item-3",
				GeneratesObservation: true,
				TriggerTiming:        TimingBatch,
				KnowledgeType:        "technique_effectiveness",
			},
			mode:        sop.ModeStandard,
			wantOutcome: OutcomeQueuedBatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := EvaluateTrigger(tt.tmpl, tt.mode)
			if decision.Outcome != tt.wantOutcome {
				t.Errorf("EvaluateTrigger() outcome = %q, want %q", decision.Outcome, tt.wantOutcome)
			}
		})
	}
}

func TestEvaluateTrigger_DraftCarriesTemplateDefaults(t *testing.T) {
	tmpl := TemplateInput{
		ChecklistItemID:      "item-7",
		SopID:                "SOP-002",
		GeneratesObservation: true,
		TriggerTiming:        TimingOnCheck,
		KnowledgeType:        "product_performance",
		ProductID:            "PRODUCT-44",
		TechniqueID:          "TECH-9",
		ToolMethodID:         "TOOL-3",
		CombinationID:        "COMBO-1",
	}

	decision := EvaluateTrigger(tmpl, sop.ModeStandard)

	d := decision.Draft
	if d.SopID != "SOP-002" || d.ChecklistItemID != "item-7" {
		t.Error("draft should carry SOP and checklist item identity")
	}
	if d.ProductID != "PRODUCT-44" || d.TechniqueID != "TECH-9" || d.ToolMethodID != "TOOL-3" || d.CombinationID != "COMBO-1" {
		t.Error("draft should carry catalog defaults from the template")
	}
}

func TestEvaluateTrigger_DetailedModeMarksRequiredFields(t *testing.T) {
	tmpl := TemplateInput{
		ChecklistItemID:      "item-5",
		GeneratesObservation: true,
		TriggerTiming:        TimingBatch,
	}

	standard := EvaluateTrigger(tmpl, sop.ModeStandard).Draft
	if standard.PhotoRequired || standard.NotesRequired || standard.ConditionRequired {
		t.Error("standard mode should not mark any field required")
	}

	detailed := EvaluateTrigger(tmpl, sop.ModeDetailed).Draft
	if !detailed.PhotoRequired || !detailed.NotesRequired || !detailed.ConditionRequired {
		t.Error("detailed mode should mark photo, notes, and condition required")
	}
}

func TestCanProcessPending(t *testing.T) {
	tests := []struct {
		name        string
		status      PendingStatus
		wantAllowed bool
	}{
		{name: "pending can be processed", status: PendingPending, wantAllowed: true},
		{name: "confirmed is terminal", status: PendingConfirmed, wantAllowed: false},
		{name: "skipped is terminal", status: PendingSkipped, wantAllowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanProcessPending(PendingStateContext{PendingID: "abc", Status: tt.status})
			if result.Allowed != tt.wantAllowed {
				t.Errorf("CanProcessPending() allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
		})
	}
}

func TestGenerateObservationID(t *testing.T) {
	if got := GenerateObservationID(2); got != "OBS-003" {
		t.Errorf("GenerateObservationID(2) = %q, want OBS-003", got)
	}
}
