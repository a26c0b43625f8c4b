// Package training contains the pure business logic for crew certification
// progress. This is part of the Functional Core - no I/O, only pure functions.
package training

import "fmt"

// TrainingStatus represents the certification progress of one crew member
// on one SOP. Transitions only move forward; there is no demotion path.
// If decertification ever becomes a requirement, add an explicit revoke
// transition rather than inferring it from inactivity.
type TrainingStatus string

const (
	StatusInProgress  TrainingStatus = "in_progress"
	StatusReviewReady TrainingStatus = "review_ready"
	StatusCertified   TrainingStatus = "certified"
)

// InitialStatus returns the status for a freshly created training record.
func InitialStatus() TrainingStatus {
	return StatusInProgress
}

// NextStatusAfterCompletion returns the status after recording a supervised
// completion. Rule: promote in_progress to review_ready once the completion
// count reaches the SOP's requirement. Certified and review_ready records
// never change here - certification is always a separate manual step.
func NextStatusAfterCompletion(current TrainingStatus, completionCount, required int) TrainingStatus {
	if current == StatusInProgress && completionCount >= required {
		return StatusReviewReady
	}
	return current
}

// GenerateTrainingID generates a training record ID from the current max
// number. The format is TRAIN-XXX where XXX is a zero-padded 3-digit number.
func GenerateTrainingID(currentMax int) string {
	return fmt.Sprintf("TRAIN-%03d", currentMax+1)
}
