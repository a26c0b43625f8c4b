// Package sop contains the pure business logic for SOP operations.
// This is part of the Functional Core - no I/O, only pure functions.
package sop

// StepRef identifies one checklist item and its current position.
type StepRef struct {
	ID         string
	StepNumber int
}

// Renumbering maps checklist item IDs to their new step numbers.
// Only items whose position actually changes appear in the map.
type Renumbering map[string]int

// AppendStepNumber returns the step number for an item appended to the end
// of a checklist. Step numbers are 1-based.
func AppendStepNumber(items []StepRef) int {
	max := 0
	for _, it := range items {
		if it.StepNumber > max {
			max = it.StepNumber
		}
	}
	return max + 1
}

// PlanInsertAfter computes the renumbering needed to open a slot after the
// given step number, and the step number the new item takes. Every item past
// the insertion point shifts by +1 - renumbering is always a full pass so the
// 1..N sequence never has gaps.
func PlanInsertAfter(items []StepRef, afterStep int) (newStep int, shifts Renumbering) {
	shifts = Renumbering{}
	for _, it := range items {
		if it.StepNumber > afterStep {
			shifts[it.ID] = it.StepNumber + 1
		}
	}
	return afterStep + 1, shifts
}

// PlanRemove computes the renumbering needed after removing the item at the
// given step number. Every later item shifts by -1, closing the gap.
func PlanRemove(items []StepRef, removedStep int) Renumbering {
	shifts := Renumbering{}
	for _, it := range items {
		if it.StepNumber > removedStep {
			shifts[it.ID] = it.StepNumber - 1
		}
	}
	return shifts
}

// IsContiguous reports whether the step numbers form the sequence 1..N with
// no duplicates or gaps. Used by tests and the doctor command.
func IsContiguous(items []StepRef) bool {
	seen := make(map[int]bool, len(items))
	for _, it := range items {
		if it.StepNumber < 1 || it.StepNumber > len(items) || seen[it.StepNumber] {
			return false
		}
		seen[it.StepNumber] = true
	}
	return true
}
