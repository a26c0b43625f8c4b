// Package confidence contains the pure scoring rules for knowledge items.
// This is part of the Functional Core - no I/O, only pure functions.
package confidence

import (
	"math"
	"time"
)

// KnowledgeStatus represents the publication state of a knowledge item.
type KnowledgeStatus string

const (
	StatusDraft       KnowledgeStatus = "draft"
	StatusPublished   KnowledgeStatus = "published"
	StatusUnderReview KnowledgeStatus = "under_review"
	StatusDeprecated  KnowledgeStatus = "deprecated"
)

// Score thresholds driving automatic status transitions.
const (
	PublishThreshold = 70
	ReviewThreshold  = 50
)

// ScoreInput is the item state the score is a pure function of.
type ScoreInput struct {
	ObservationCount     int
	ExperimentCount      int
	CrewAgreementRate    *float64 // nil when no agreement data exists
	ActiveChallengeCount int
	LastConfidenceUpdate *time.Time // nil means no decay applies yet
}

// CalculateScore computes a knowledge item's confidence score.
//
//	score = 50 + min(obs*2, 30) + min(exp*10, 40)
//	      + (rate-0.5)*20           when agreement rate is defined
//	      - challenges*10
//	      - floor(days/30)          time decay, unbounded downward
//
// The result is rounded and clamped to [0, 100]. Deterministic for a fixed
// now, so tests pass the clock in.
func CalculateScore(in ScoreInput, now time.Time) int {
	score := 50.0

	obsBonus := float64(in.ObservationCount * 2)
	if obsBonus > 30 {
		obsBonus = 30
	}
	score += obsBonus

	expBonus := float64(in.ExperimentCount * 10)
	if expBonus > 40 {
		expBonus = 40
	}
	score += expBonus

	if in.CrewAgreementRate != nil {
		score += (*in.CrewAgreementRate - 0.5) * 20
	}

	score -= float64(in.ActiveChallengeCount * 10)

	if in.LastConfidenceUpdate != nil {
		days := int(now.Sub(*in.LastConfidenceUpdate).Hours() / 24)
		if days > 0 {
			score -= float64(days / 30)
		}
	}

	rounded := int(math.Round(score))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

// DetermineStatus applies the automatic status transitions driven by score:
// published items drop to under_review below 50, drafts publish at 70 or
// above. Everything else is unchanged - leaving under_review or deprecated
// requires explicit human action, never a recalculation.
func DetermineStatus(current KnowledgeStatus, score int) KnowledgeStatus {
	switch {
	case current == StatusPublished && score < ReviewThreshold:
		return StatusUnderReview
	case current == StatusDraft && score >= PublishThreshold:
		return StatusPublished
	default:
		return current
	}
}
