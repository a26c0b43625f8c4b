// Package sop contains the pure business logic for SOP operations.
// This is part of the Functional Core - no I/O, only pure functions.
package sop

import "fmt"

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

// VersionStateContext provides context for version-level SOP guards.
type VersionStateContext struct {
	SopID     string
	IsCurrent bool
	Status    SopStatus
}

// CanModifyChecklist evaluates whether an SOP version's checklist can change.
// Rule: only the current, active version may be edited. Superseded versions
// are frozen so historical observations keep their template context.
func CanModifyChecklist(ctx VersionStateContext) GuardResult {
	if !ctx.IsCurrent {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("SOP %s is superseded - checklist items can only be changed on the current version", ctx.SopID),
		}
	}
	if ctx.Status == StatusArchived {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("SOP %s is archived and cannot be modified", ctx.SopID),
		}
	}
	return GuardResult{Allowed: true}
}

// CanCreateVersion evaluates whether a new version can supersede this one.
// Rule: only the current version of an active procedure can be superseded.
func CanCreateVersion(ctx VersionStateContext) GuardResult {
	if !ctx.IsCurrent {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("SOP %s is not the current version - version from the current one instead", ctx.SopID),
		}
	}
	return GuardResult{Allowed: true}
}

// CreateContext provides context for SOP creation guards.
type CreateContext struct {
	SopCode string
	Title   string
}

// ValidateCreate checks the required fields for a new SOP.
func ValidateCreate(ctx CreateContext) GuardResult {
	if ctx.SopCode == "" {
		return GuardResult{Allowed: false, Reason: "sop_code is required"}
	}
	if ctx.Title == "" {
		return GuardResult{Allowed: false, Reason: "title is required"}
	}
	return GuardResult{Allowed: true}
}
