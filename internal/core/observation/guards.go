// Package observation contains the pure business logic for the observation
// trigger pipeline. This is part of the Functional Core - no I/O, only pure
// functions.
package observation

import "fmt"

// PendingStatus represents the lifecycle of a queued batch draft.
type PendingStatus string

const (
	PendingPending   PendingStatus = "pending"
	PendingConfirmed PendingStatus = "confirmed"
	PendingSkipped   PendingStatus = "skipped"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// PendingStateContext provides context for pending batch item guards.
type PendingStateContext struct {
	PendingID string
	Status    PendingStatus
}

// CanProcessPending evaluates whether a pending batch item can be confirmed
// or skipped. Rule: pending rows are terminal once confirmed or skipped.
func CanProcessPending(ctx PendingStateContext) GuardResult {
	if ctx.Status != PendingPending {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("pending observation %s already processed (status: %s)", ctx.PendingID, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}

// ConfirmContext provides context for observation confirmation guards.
type ConfirmContext struct {
	KnowledgeType string
}

// ValidateConfirm checks the required fields for confirming an observation.
func ValidateConfirm(ctx ConfirmContext) GuardResult {
	if ctx.KnowledgeType == "" {
		return GuardResult{Allowed: false, Reason: "knowledge_type is required"}
	}
	return GuardResult{Allowed: true}
}

// GenerateObservationID generates an observation ID from the current max
// number. The format is OBS-XXX where XXX is a zero-padded 3-digit number.
func GenerateObservationID(currentMax int) string {
	return fmt.Sprintf("OBS-%03d", currentMax+1)
}
