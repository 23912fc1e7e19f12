package extraction

import (
	"context"
	"fmt"

	"github.com/ontoforge/ontoforge-go/pkg/models"
)

// Extractor is the strategy surface shared by all extraction backends
type Extractor interface {
	Extract(ctx context.Context, text string, confidenceThreshold float64) (*models.ExtractionResult, error)
}

// HybridExtractor runs the rule-based and LLM paths and reconciles
// their output: near-duplicate entities collapse onto the
// higher-confidence mention, relationships follow the surviving ids.
type HybridExtractor struct {
	ruleBased *RuleBasedExtractor
	llm       *LLMExtractor
}

// NewHybridExtractor combines the two backends
func NewHybridExtractor(ruleBased *RuleBasedExtractor, llm *LLMExtractor) (*HybridExtractor, error) {
	if ruleBased == nil || llm == nil {
		return nil, fmt.Errorf("both rule-based and llm extractors are required")
	}
	return &HybridExtractor{ruleBased: ruleBased, llm: llm}, nil
}

// Extract merges both strategies' results
func (e *HybridExtractor) Extract(ctx context.Context, text string, confidenceThreshold float64) (*models.ExtractionResult, error) {
	ruleResult, err := e.ruleBased.Extract(ctx, text, confidenceThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to run rule-based extraction: %w", err)
	}
	llmResult, err := e.llm.Extract(ctx, text, confidenceThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to run llm extraction: %w", err)
	}
	return reconcile(ruleResult, llmResult), nil
}

// reconcile merges two results: entities from the second result that
// near-duplicate one from the first are remapped onto the existing id,
// keeping the higher confidence. Relationships are rewritten through
// the remapping; those collapsing onto a surviving duplicate pair are
// kept once.
func reconcile(first, second *models.ExtractionResult) *models.ExtractionResult {
	merged := models.EmptyExtractionResult(models.StrategyHybrid)
	merged.Source = "hybrid"
	merged.Entities = append(merged.Entities, first.Entities...)
	merged.Relationships = append(merged.Relationships, first.Relationships...)

	remap := map[string]string{}
	for _, candidate := range second.Entities {
		if existingID := findDuplicate(merged.Entities, candidate); existingID != "" {
			remap[candidate.ID] = existingID
			for i := range merged.Entities {
				if merged.Entities[i].ID == existingID && candidate.Confidence > merged.Entities[i].Confidence {
					merged.Entities[i].Confidence = candidate.Confidence
				}
			}
			continue
		}
		merged.Entities = append(merged.Entities, candidate)
	}

	seen := map[string]bool{}
	for _, rel := range merged.Relationships {
		seen[rel.SourceID+"\x00"+rel.TargetID+"\x00"+rel.Type] = true
	}
	for _, rel := range second.Relationships {
		if mapped, ok := remap[rel.SourceID]; ok {
			rel.SourceID = mapped
		}
		if mapped, ok := remap[rel.TargetID]; ok {
			rel.TargetID = mapped
		}
		key := rel.SourceID + "\x00" + rel.TargetID + "\x00" + rel.Type
		if seen[key] {
			continue
		}
		seen[key] = true
		merged.Relationships = append(merged.Relationships, rel)
	}
	return merged
}

// ForStrategy returns the extractor implementing the given strategy
func ForStrategy(strategy models.ExtractionStrategy, ruleBased *RuleBasedExtractor, llm *LLMExtractor) (Extractor, error) {
	switch strategy {
	case models.StrategyRuleBased:
		if ruleBased == nil {
			return nil, fmt.Errorf("rule-based extractor not configured")
		}
		return ruleBased, nil
	case models.StrategyLLM:
		if llm == nil {
			return nil, fmt.Errorf("llm extractor not configured")
		}
		return llm, nil
	case models.StrategyHybrid:
		return NewHybridExtractor(ruleBased, llm)
	default:
		return nil, fmt.Errorf("unknown extraction strategy %q", strategy)
	}
}
