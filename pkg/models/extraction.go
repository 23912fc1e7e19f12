package models

import "fmt"

// ExtractionStrategy identifies which extraction backend produced a result
type ExtractionStrategy string

const (
	StrategyRuleBased ExtractionStrategy = "rule_based"
	StrategyLLM       ExtractionStrategy = "llm"
	StrategyHybrid    ExtractionStrategy = "hybrid"
)

// ParseExtractionStrategy converts a string into a typed strategy at
// the configuration boundary
func ParseExtractionStrategy(s string) (ExtractionStrategy, error) {
	switch s {
	case string(StrategyRuleBased):
		return StrategyRuleBased, nil
	case string(StrategyLLM):
		return StrategyLLM, nil
	case string(StrategyHybrid):
		return StrategyHybrid, nil
	default:
		return "", fmt.Errorf("unknown extraction strategy %q", s)
	}
}

// ExtractionResult is the well-formed (possibly empty) carrier the
// extraction layer hands to the refinement loop. The loop never
// receives a nil or partially built result, even when a backend fails.
type ExtractionResult struct {
	Entities      []Entity           `json:"entities"`
	Relationships []Relationship     `json:"relationships"`
	Strategy      ExtractionStrategy `json:"strategy"`
	Source        string             `json:"source,omitempty"`
	Metadata      map[string]any     `json:"metadata,omitempty"`
}

// EmptyExtractionResult returns a well-formed result with no content,
// used when a backend is unavailable or extraction produced nothing.
func EmptyExtractionResult(strategy ExtractionStrategy) *ExtractionResult {
	return &ExtractionResult{
		Entities:      []Entity{},
		Relationships: []Relationship{},
		Strategy:      strategy,
	}
}
