// Package sop contains the pure business logic for SOP operations.
// This is part of the Functional Core - no I/O, only pure functions.
package sop

import "time"

// SopStatus represents the possible states of an SOP version.
type SopStatus string

const (
	StatusActive   SopStatus = "active"
	StatusArchived SopStatus = "archived"
)

// ObservationMode controls which draft fields are annotated required on
// observations generated from the SOP's checklist.
type ObservationMode string

const (
	ModeStandard ObservationMode = "standard"
	ModeDetailed ObservationMode = "detailed"
)

// DefaultRequiredSupervisedCompletions is the number of supervised completions
// a crew member needs before their training record becomes review_ready.
const DefaultRequiredSupervisedCompletions = 3

// InitialVersion returns the version number for a freshly created SOP.
func InitialVersion() int {
	return 1
}

// Snapshot is the subset of an SOP version that versioning rules operate on.
type Snapshot struct {
	ID                            string
	SopCode                       string
	Version                       int
	Title                         string
	Description                   string
	Category                      string
	Trade                         string
	ObservationMode               ObservationMode
	RequiredSupervisedCompletions int
}

// Patch holds the fields a new version may override. Empty strings and zero
// values mean "inherit from the superseded version".
type Patch struct {
	Title                         string
	Description                   string
	Category                      string
	Trade                         string
	ObservationMode               ObservationMode
	RequiredSupervisedCompletions int
}

// NextVersionPlan captures everything the supersede/create sequence must
// write: the new row's content and the timestamp stamped on the old row.
type NextVersionPlan struct {
	SopCode                       string
	Version                       int
	PreviousVersionID             string
	SupersededDate                time.Time
	Title                         string
	Description                   string
	Category                      string
	Trade                         string
	ObservationMode               ObservationMode
	RequiredSupervisedCompletions int
	VersionNotes                  string
}

// PlanNextVersion computes the content of the next SOP version from the
// current version and a patch. Fields absent from the patch are inherited.
// The caller passes the current time so the plan stays deterministic in tests.
func PlanNextVersion(current Snapshot, patch Patch, versionNotes string, now time.Time) NextVersionPlan {
	plan := NextVersionPlan{
		SopCode:                       current.SopCode,
		Version:                       current.Version + 1,
		PreviousVersionID:             current.ID,
		SupersededDate:                now,
		Title:                         current.Title,
		Description:                   current.Description,
		Category:                      current.Category,
		Trade:                         current.Trade,
		ObservationMode:               current.ObservationMode,
		RequiredSupervisedCompletions: current.RequiredSupervisedCompletions,
		VersionNotes:                  versionNotes,
	}

	if patch.Title != "" {
		plan.Title = patch.Title
	}
	if patch.Description != "" {
		plan.Description = patch.Description
	}
	if patch.Category != "" {
		plan.Category = patch.Category
	}
	if patch.Trade != "" {
		plan.Trade = patch.Trade
	}
	if patch.ObservationMode != "" {
		plan.ObservationMode = patch.ObservationMode
	}
	if patch.RequiredSupervisedCompletions > 0 {
		plan.RequiredSupervisedCompletions = patch.RequiredSupervisedCompletions
	}

	return plan
}
