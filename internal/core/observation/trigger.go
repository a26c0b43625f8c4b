// Package observation contains the pure business logic for the observation
// trigger pipeline. This is part of the Functional Core - no I/O, only pure
// functions.
package observation

import "github.com/example/fieldloop/internal/core/sop"

// TriggerOutcome is the result of evaluating a checklist-item check event.
type TriggerOutcome string

const (
	// OutcomeNoObservation means the template does not generate observations.
	OutcomeNoObservation TriggerOutcome = "no_observation"
	// OutcomeImmediateConfirm means the caller receives a draft and must
	// confirm it explicitly.
	OutcomeImmediateConfirm TriggerOutcome = "immediate_confirm"
	// OutcomeQueuedBatch means a pending batch row was queued for
	// end-of-task confirmation.
	OutcomeQueuedBatch TriggerOutcome = "queued_batch"
)

// TriggerTiming mirrors the checklist template's trigger configuration.
type TriggerTiming string

const (
	TimingOnCheck TriggerTiming = "on_check"
	TimingBatch   TriggerTiming = "batch"
)

// CaptureMethod records how an observation entered the system.
type CaptureMethod string

const (
	CaptureAutomatic CaptureMethod = "automatic"
	CaptureCallback  CaptureMethod = "callback"
	CaptureManual    CaptureMethod = "manual"
)

// TemplateInput is the slice of a checklist item template the trigger
// decision depends on.
type TemplateInput struct {
	ChecklistItemID      string
	SopID                string
	Title                string
	GeneratesObservation bool
	TriggerTiming        TriggerTiming
	KnowledgeType        string
	ProductID            string
	TechniqueID          string
	ToolMethodID         string
	CombinationID        string
}

// Draft is a prefilled observation awaiting confirmation. Required flags are
// annotations only - enforcement is left to the caller UI.
type Draft struct {
	SopID             string
	ChecklistItemID   string
	KnowledgeType     string
	ProductID         string
	TechniqueID       string
	ToolMethodID      string
	CombinationID     string
	PhotoRequired     bool
	NotesRequired     bool
	ConditionRequired bool
}

// TriggerDecision is the outcome of one check event plus the draft that goes
// with it (zero-valued when no observation is generated).
type TriggerDecision struct {
	Outcome TriggerOutcome
	Draft   Draft
}

// EvaluateTrigger maps a checked checklist item to a trigger decision.
// Detailed observation mode marks photo, notes, and condition as required on
// the draft; standard mode leaves all three optional.
func EvaluateTrigger(tmpl TemplateInput, mode sop.ObservationMode) TriggerDecision {
	if !tmpl.GeneratesObservation {
		return TriggerDecision{Outcome: OutcomeNoObservation}
	}

	draft := Draft{
		SopID:           tmpl.SopID,
		ChecklistItemID: tmpl.ChecklistItemID,
		KnowledgeType:   tmpl.KnowledgeType,
		ProductID:       tmpl.ProductID,
		TechniqueID:     tmpl.TechniqueID,
		ToolMethodID:    tmpl.ToolMethodID,
		CombinationID:   tmpl.CombinationID,
	}

	if mode == sop.ModeDetailed {
		draft.PhotoRequired = true
		draft.NotesRequired = true
		draft.ConditionRequired = true
	}

	if tmpl.TriggerTiming == TimingBatch {
		return TriggerDecision{Outcome: OutcomeQueuedBatch, Draft: draft}
	}
	return TriggerDecision{Outcome: OutcomeImmediateConfirm, Draft: draft}
}
