// Package confidence contains the pure scoring rules for knowledge items.
// This is part of the Functional Core - no I/O, only pure functions.
package confidence

import "fmt"

// ChallengeStatus represents the lifecycle of a knowledge challenge.
type ChallengeStatus string

const (
	ChallengePending  ChallengeStatus = "pending"
	ChallengeResolved ChallengeStatus = "resolved"
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

// ChallengeStateContext provides context for challenge resolution guards.
type ChallengeStateContext struct {
	ChallengeID string
	Status      ChallengeStatus
}

// CanResolveChallenge evaluates whether a challenge can be resolved.
// Rule: only pending challenges resolve; resolution is terminal.
func CanResolveChallenge(ctx ChallengeStateContext) GuardResult {
	if ctx.Status != ChallengePending {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("challenge %s is already resolved", ctx.ChallengeID),
		}
	}
	return GuardResult{Allowed: true}
}

// GenerateKnowledgeID generates a knowledge item ID from the current max
// number. The format is KNOW-XXX where XXX is a zero-padded 3-digit number.
func GenerateKnowledgeID(currentMax int) string {
	return fmt.Sprintf("KNOW-%03d", currentMax+1)
}

// GenerateChallengeID generates a challenge ID from the current max number.
// The format is CHAL-XXX where XXX is a zero-padded 3-digit number.
func GenerateChallengeID(currentMax int) string {
	return fmt.Sprintf("CHAL-%03d", currentMax+1)
}
