// Package linker contains the pure matching rules that connect field
// observations to knowledge items. This is part of the Functional Core -
// no I/O, only pure functions.
package linker

import "strings"

// Link type constants for observation-knowledge edges.
const (
	LinkAutoDetected       = "auto_detected"
	LinkLabsAssigned       = "labs_assigned"
	LinkExperimentRequired = "experiment_required"
)

// Confidence values assigned by each matching rule.
const (
	ConfidenceDirectCatalog    = 95
	ConfidenceDirectToolMethod = 90
	ConfidenceCombination      = 80
	ConfidenceTypeAndCategory  = 60
)

// ObservationInput is the slice of an observation the matcher inspects.
type ObservationInput struct {
	KnowledgeType string
	ProductID     string
	TechniqueID   string
	ToolMethodID  string
	CombinationID string
	WorkCategory  string
	Trade         string
}

// KnowledgeInput is the slice of a knowledge item the matcher inspects.
type KnowledgeInput struct {
	ID            string
	KnowledgeType string
	Category      string
	Trade         string
	ProductIDs    []string
	TechniqueIDs  []string
	ToolMethodIDs []string
}

// MatchResult is the outcome of matching one observation against one item.
type MatchResult struct {
	Matched    bool
	Confidence int
	Rule       string // which rule fired, for event notes
}

// CombinationMatcher decides whether a combination-typed knowledge item
// matches an observation that references a combination. The default is a
// heuristic with no real identity check; callers can plug in a stricter
// matcher once combinations carry member arrays.
type CombinationMatcher func(obs ObservationInput, item KnowledgeInput) bool

// DefaultCombinationMatcher matches any combination-typed item against any
// observation carrying a combination reference.
func DefaultCombinationMatcher(obs ObservationInput, item KnowledgeInput) bool {
	return obs.CombinationID != "" && item.KnowledgeType == "combination"
}

// Match applies the ordered matching rules; the first rule that fires wins.
//  1. Direct catalog-id membership -> 95 (90 for tool-method).
//  2. Combination heuristic -> 80.
//  3. Same knowledge type and same category/trade (case-insensitive) -> 60.
func Match(obs ObservationInput, item KnowledgeInput, combination CombinationMatcher) MatchResult {
	if obs.ProductID != "" && contains(item.ProductIDs, obs.ProductID) {
		return MatchResult{Matched: true, Confidence: ConfidenceDirectCatalog, Rule: "product_match"}
	}
	if obs.TechniqueID != "" && contains(item.TechniqueIDs, obs.TechniqueID) {
		return MatchResult{Matched: true, Confidence: ConfidenceDirectCatalog, Rule: "technique_match"}
	}
	if obs.ToolMethodID != "" && contains(item.ToolMethodIDs, obs.ToolMethodID) {
		return MatchResult{Matched: true, Confidence: ConfidenceDirectToolMethod, Rule: "tool_method_match"}
	}

	if combination == nil {
		combination = DefaultCombinationMatcher
	}
	if combination(obs, item) {
		return MatchResult{Matched: true, Confidence: ConfidenceCombination, Rule: "combination_match"}
	}

	if obs.KnowledgeType != "" && strings.EqualFold(obs.KnowledgeType, item.KnowledgeType) {
		sameCategory := obs.WorkCategory != "" && strings.EqualFold(obs.WorkCategory, item.Category)
		sameTrade := obs.Trade != "" && strings.EqualFold(obs.Trade, item.Trade)
		if sameCategory || sameTrade {
			return MatchResult{Matched: true, Confidence: ConfidenceTypeAndCategory, Rule: "type_category_match"}
		}
	}

	return MatchResult{}
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
