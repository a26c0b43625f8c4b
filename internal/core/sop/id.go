// Package sop contains the pure business logic for SOP operations.
// This is part of the Functional Core - no I/O, only pure functions.
package sop

import "fmt"

// GenerateSopID generates an SOP row ID from the current max number.
// This is a pure function that defines the ID format as a business rule.
// The format is SOP-XXX where XXX is a zero-padded 3-digit number.
// Note: every version of a procedure gets its own row ID; the stable
// identity across versions is the sop_code, not this ID.
func GenerateSopID(currentMax int) string {
	return fmt.Sprintf("SOP-%03d", currentMax+1)
}

// ParseSopNumber extracts the numeric portion from an SOP row ID.
// Returns -1 if the ID format is invalid.
func ParseSopNumber(id string) int {
	var num int
	_, err := fmt.Sscanf(id, "SOP-%d", &num)
	if err != nil {
		return -1
	}
	return num
}
