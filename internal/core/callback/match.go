// Package callback contains the pure matching and annotation rules for
// callback outcome propagation. This is part of the Functional Core -
// no I/O, only pure functions.
package callback

import "fmt"

// ProjectType values for the integration boundary.
const (
	ProjectTypeStandard = "standard"
	ProjectTypeCallback = "callback"
)

// ObservationFacts is the slice of an observation related-matching depends on.
type ObservationFacts struct {
	KnowledgeType string
	ProductID     string
	TechniqueID   string
	ToolMethodID  string
}

// IsRelatedObservation reports whether two observations describe the same
// piece of field knowledge: same knowledge type, and equal on at least one
// catalog axis. Empty axes never count as a match.
func IsRelatedObservation(a, b ObservationFacts) bool {
	if a.KnowledgeType == "" || a.KnowledgeType != b.KnowledgeType {
		return false
	}
	if a.ProductID != "" && a.ProductID == b.ProductID {
		return true
	}
	if a.TechniqueID != "" && a.TechniqueID == b.TechniqueID {
		return true
	}
	if a.ToolMethodID != "" && a.ToolMethodID == b.ToolMethodID {
		return true
	}
	return false
}

// AnnotateNotes appends a callback annotation to an observation's notes.
// Existing notes are never replaced - the annotation goes on its own line.
func AnnotateNotes(notes, reason string) string {
	annotation := fmt.Sprintf("[CALLBACK %s]", reason)
	if notes == "" {
		return annotation
	}
	return notes + "\n" + annotation
}

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

// PropagateContext provides context for outcome propagation guards.
type PropagateContext struct {
	ProjectID       string
	ProjectExists   bool
	ProjectType     string
	LinkedProjectID string
}

// CanPropagate evaluates whether callback outcomes can be propagated from a
// project. Rules: the project must exist, be typed callback, and carry a
// link back to the original project.
func CanPropagate(ctx PropagateContext) GuardResult {
	if !ctx.ProjectExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("project %s not found", ctx.ProjectID),
		}
	}
	if ctx.ProjectType != ProjectTypeCallback {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("project %s is not a callback project (type: %s)", ctx.ProjectID, ctx.ProjectType),
		}
	}
	if ctx.LinkedProjectID == "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("callback project %s has no linked original project", ctx.ProjectID),
		}
	}
	return GuardResult{Allowed: true}
}

// GenerateProjectID generates a project ID from the current max number.
// The format is PROJ-XXX where XXX is a zero-padded 3-digit number.
func GenerateProjectID(currentMax int) string {
	return fmt.Sprintf("PROJ-%03d", currentMax+1)
}
