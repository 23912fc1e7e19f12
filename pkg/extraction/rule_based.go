// Package extraction turns raw text into ontology candidates. The
// rule-based extractor is deterministic; the LLM-backed extractor sits
// behind an inference interface whose absence degrades to the
// rule-based path instead of failing. The refinement loop always
// receives a well-formed result.
package extraction

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"github.com/ontoforge/ontoforge-go/pkg/models"
)

// dedupSimilarity is the normalized Levenshtein similarity above which
// two candidate mentions collapse into one entity
const dedupSimilarity = 0.85

// Pattern maps a keyword set to an entity type for rule-based
// extraction
type Pattern struct {
	Type     string   `json:"type" yaml:"type"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// RuleBasedExtractor finds typed entity mentions by keyword patterns
// and links co-occurring mentions within a sentence. Deterministic:
// the same document always produces the same result.
type RuleBasedExtractor struct {
	patterns []Pattern
}

// NewRuleBasedExtractor creates an extractor over the given patterns.
// Patterns with an empty type or no keywords are construction errors.
func NewRuleBasedExtractor(patterns []Pattern) (*RuleBasedExtractor, error) {
	for i, p := range patterns {
		if p.Type == "" {
			return nil, fmt.Errorf("pattern %d has empty type", i)
		}
		if len(p.Keywords) == 0 {
			return nil, fmt.Errorf("pattern %d (%s) has no keywords", i, p.Type)
		}
	}
	return &RuleBasedExtractor{patterns: patterns}, nil
}

// Extract scans the text for pattern keywords, dedups near-identical
// mentions, and links entities that share a sentence. The confidence
// threshold drops candidates scored below it.
func (e *RuleBasedExtractor) Extract(ctx context.Context, text string, confidenceThreshold float64) (*models.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extraction aborted: %w", err)
	}
	if confidenceThreshold < 0 || confidenceThreshold > 1 {
		return nil, fmt.Errorf("confidence threshold %f outside [0,1]", confidenceThreshold)
	}

	result := models.EmptyExtractionResult(models.StrategyRuleBased)
	result.Source = "rule_based"
	if strings.TrimSpace(text) == "" {
		return result, nil
	}

	sentences := splitSentences(text)
	offset := 0
	for _, sentence := range sentences {
		start := strings.Index(text[offset:], sentence) + offset
		mentions := e.findMentions(sentence, start)
		offset = start + len(sentence)

		kept := []models.Entity{}
		for _, mention := range mentions {
			if mention.Confidence < confidenceThreshold {
				continue
			}
			if existing := findDuplicate(result.Entities, mention); existing != "" {
				continue
			}
			if existing := findDuplicate(kept, mention); existing != "" {
				continue
			}
			kept = append(kept, mention)
		}

		// Co-occurrence within a sentence becomes a weak relationship.
		for i := 0; i < len(kept); i++ {
			for j := i + 1; j < len(kept); j++ {
				confidence := (kept[i].Confidence + kept[j].Confidence) / 2 * 0.8
				if confidence < confidenceThreshold {
					continue
				}
				result.Relationships = append(result.Relationships, models.Relationship{
					ID:         uuid.NewString(),
					Type:       "co_occurs_with",
					SourceID:   kept[i].ID,
					TargetID:   kept[j].ID,
					Confidence: confidence,
				})
			}
		}
		result.Entities = append(result.Entities, kept...)
	}
	return result, nil
}

// findMentions returns one candidate entity per keyword hit in the
// sentence, ordered by position
func (e *RuleBasedExtractor) findMentions(sentence string, sentenceStart int) []models.Entity {
	lower := strings.ToLower(sentence)
	mentions := []models.Entity{}
	for _, pattern := range e.patterns {
		for _, keyword := range pattern.Keywords {
			needle := strings.ToLower(keyword)
			searchFrom := 0
			for {
				idx := strings.Index(lower[searchFrom:], needle)
				if idx < 0 {
					break
				}
				position := searchFrom + idx
				searchFrom = position + len(needle)
				if !wordBoundary(lower, position, len(needle)) {
					continue
				}
				// Longer keywords are more specific matches.
				confidence := 0.6 + 0.05*float64(len([]rune(keyword)))
				if confidence > 0.95 {
					confidence = 0.95
				}
				mentions = append(mentions, models.Entity{
					ID:         uuid.NewString(),
					Type:       pattern.Type,
					Text:       sentence[position : position+len(needle)],
					Confidence: confidence,
					SourceSpan: &models.Span{
						Start: sentenceStart + position,
						End:   sentenceStart + position + len(needle),
					},
				})
			}
		}
	}
	sort.SliceStable(mentions, func(i, j int) bool {
		return mentions[i].SourceSpan.Start < mentions[j].SourceSpan.Start
	})
	return mentions
}

// findDuplicate returns the id of an existing entity whose surface
// form is a near-duplicate of the candidate, or ""
func findDuplicate(entities []models.Entity, candidate models.Entity) string {
	for _, existing := range entities {
		if existing.Type != candidate.Type {
			continue
		}
		if textSimilarity(existing.Text, candidate.Text) >= dedupSimilarity {
			return existing.ID
		}
	}
	return ""
}

// textSimilarity returns 1 minus the normalized Levenshtein distance
// between lowercased surface forms
func textSimilarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// splitSentences breaks text on terminal punctuation, dropping empty
// fragments
func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

// wordBoundary reports whether the match at position with the given
// length is not embedded inside a larger word
func wordBoundary(s string, position, length int) bool {
	if position > 0 {
		if r := rune(s[position-1]); unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end := position + length; end < len(s) {
		if r := rune(s[end]); unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
