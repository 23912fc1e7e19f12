package extraction

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ontoforge/ontoforge-go/pkg/models"
)

// InferenceClient is the AI backend consumed by the LLM extractor. Its
// absence is a supported configuration, never a fatal error.
type InferenceClient interface {
	// Complete sends a prompt and returns the raw model output
	Complete(ctx context.Context, prompt string) (string, error)
}

// inferencePayload is the JSON shape the backend is prompted to return
type inferencePayload struct {
	Entities []struct {
		Type       string  `json:"type"`
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"entities"`
	Relationships []struct {
		Type       string  `json:"type"`
		Source     string  `json:"source"`
		Target     string  `json:"target"`
		Confidence float64 `json:"confidence"`
	} `json:"relationships"`
}

// LLMExtractor asks an inference backend for entities and
// relationships. Without a client, or when the backend misbehaves, it
// falls back to the rule-based extractor so the caller always gets a
// well-formed result.
type LLMExtractor struct {
	client   InferenceClient
	fallback *RuleBasedExtractor
}

// NewLLMExtractor creates an LLM extractor. client may be nil; the
// fallback extractor is required.
func NewLLMExtractor(client InferenceClient, fallback *RuleBasedExtractor) (*LLMExtractor, error) {
	if fallback == nil {
		return nil, fmt.Errorf("fallback extractor is required")
	}
	return &LLMExtractor{client: client, fallback: fallback}, nil
}

// Extract queries the inference backend and parses its response.
// Backend absence, transport failure, or an unparseable response all
// degrade to the rule-based path.
func (e *LLMExtractor) Extract(ctx context.Context, text string, confidenceThreshold float64) (*models.ExtractionResult, error) {
	if confidenceThreshold < 0 || confidenceThreshold > 1 {
		return nil, fmt.Errorf("confidence threshold %f outside [0,1]", confidenceThreshold)
	}
	if e.client == nil {
		return e.degrade(ctx, text, confidenceThreshold, "no inference client configured")
	}

	raw, err := e.client.Complete(ctx, extractionPrompt(text))
	if err != nil {
		return e.degrade(ctx, text, confidenceThreshold, fmt.Sprintf("inference failed: %v", err))
	}

	var payload inferencePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return e.degrade(ctx, text, confidenceThreshold, fmt.Sprintf("unparseable inference response: %v", err))
	}

	result := models.EmptyExtractionResult(models.StrategyLLM)
	result.Source = "llm"
	idByText := map[string]string{}
	for _, entity := range payload.Entities {
		confidence := models.Clamp01(entity.Confidence)
		if entity.Text == "" || confidence < confidenceThreshold {
			continue
		}
		id := uuid.NewString()
		idByText[entity.Text] = id
		result.Entities = append(result.Entities, models.Entity{
			ID:         id,
			Type:       entity.Type,
			Text:       entity.Text,
			Confidence: confidence,
		})
	}
	for _, rel := range payload.Relationships {
		confidence := models.Clamp01(rel.Confidence)
		source, okSource := idByText[rel.Source]
		target, okTarget := idByText[rel.Target]
		if !okSource || !okTarget || confidence < confidenceThreshold {
			continue
		}
		result.Relationships = append(result.Relationships, models.Relationship{
			ID:         uuid.NewString(),
			Type:       rel.Type,
			SourceID:   source,
			TargetID:   target,
			Confidence: confidence,
		})
	}
	return result, nil
}

// degrade runs the rule-based fallback and records why on the result
func (e *LLMExtractor) degrade(ctx context.Context, text string, confidenceThreshold float64, reason string) (*models.ExtractionResult, error) {
	result, err := e.fallback.Extract(ctx, text, confidenceThreshold)
	if err != nil {
		return nil, err
	}
	result.Strategy = models.StrategyLLM
	result.Source = "rule_based_fallback"
	if result.Metadata == nil {
		result.Metadata = map[string]any{}
	}
	result.Metadata["fallback_reason"] = reason
	return result, nil
}

func extractionPrompt(text string) string {
	return fmt.Sprintf(`Extract entities and relationships from the text below.
Respond with JSON only: {"entities":[{"type":...,"text":...,"confidence":...}],"relationships":[{"type":...,"source":...,"target":...,"confidence":...}]}

Text:
%s`, text)
}
