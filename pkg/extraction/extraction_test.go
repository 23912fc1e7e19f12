package extraction

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoforge/ontoforge-go/pkg/models"
)

func medicalPatterns() []Pattern {
	return []Pattern{
		{Type: "Drug", Keywords: []string{"aspirin", "ibuprofen"}},
		{Type: "Disease", Keywords: []string{"headache", "migraine"}},
	}
}

func newRuleBased(t *testing.T) *RuleBasedExtractor {
	t.Helper()
	e, err := NewRuleBasedExtractor(medicalPatterns())
	require.NoError(t, err)
	return e
}

// fakeClient returns a canned response or an error
type fakeClient struct {
	response string
	err      error
	calls    atomic.Int32
}

func (c *fakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	c.calls.Add(1)
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func TestNewRuleBasedExtractorValidation(t *testing.T) {
	_, err := NewRuleBasedExtractor([]Pattern{{Type: "", Keywords: []string{"x"}}})
	assert.Error(t, err)

	_, err = NewRuleBasedExtractor([]Pattern{{Type: "Drug"}})
	assert.Error(t, err)
}

func TestRuleBasedExtraction(t *testing.T) {
	e := newRuleBased(t)
	result, err := e.Extract(context.Background(), "Aspirin treats headache. Ibuprofen also helps.", 0.1)
	require.NoError(t, err)

	assert.Equal(t, models.StrategyRuleBased, result.Strategy)
	require.Len(t, result.Entities, 3)
	types := map[string]int{}
	for _, entity := range result.Entities {
		types[entity.Type]++
		require.NotNil(t, entity.SourceSpan)
		assert.Greater(t, entity.Confidence, 0.0)
	}
	assert.Equal(t, 2, types["Drug"])
	assert.Equal(t, 1, types["Disease"])

	// Aspirin and headache share a sentence; ibuprofen stands alone.
	require.Len(t, result.Relationships, 1)
	assert.Equal(t, "co_occurs_with", result.Relationships[0].Type)
}

func TestRuleBasedExtractionIsDeterministic(t *testing.T) {
	e := newRuleBased(t)
	text := "Aspirin treats headache and migraine."

	first, err := e.Extract(context.Background(), text, 0.1)
	require.NoError(t, err)
	second, err := e.Extract(context.Background(), text, 0.1)
	require.NoError(t, err)

	require.Equal(t, len(first.Entities), len(second.Entities))
	for i := range first.Entities {
		assert.Equal(t, first.Entities[i].Text, second.Entities[i].Text)
		assert.Equal(t, first.Entities[i].Type, second.Entities[i].Type)
		assert.Equal(t, first.Entities[i].Confidence, second.Entities[i].Confidence)
	}
}

func TestRuleBasedThresholdFiltersCandidates(t *testing.T) {
	e := newRuleBased(t)
	text := "Aspirin treats headache."

	permissive, err := e.Extract(context.Background(), text, 0.1)
	require.NoError(t, err)
	strict, err := e.Extract(context.Background(), text, 0.99)
	require.NoError(t, err)

	assert.NotEmpty(t, permissive.Entities)
	assert.Empty(t, strict.Entities)
}

func TestRuleBasedThresholdContract(t *testing.T) {
	e := newRuleBased(t)
	_, err := e.Extract(context.Background(), "text", 1.5)
	assert.Error(t, err)
	_, err = e.Extract(context.Background(), "text", -0.1)
	assert.Error(t, err)
}

func TestRuleBasedEmptyText(t *testing.T) {
	e := newRuleBased(t)
	result, err := e.Extract(context.Background(), "   ", 0.5)
	require.NoError(t, err)
	assert.Empty(t, result.Entities)
	assert.Empty(t, result.Relationships)
	assert.NotNil(t, result.Entities, "result must be well-formed, never nil slices")
}

func TestRuleBasedWordBoundary(t *testing.T) {
	e, err := NewRuleBasedExtractor([]Pattern{{Type: "Drug", Keywords: []string{"aspirin"}}})
	require.NoError(t, err)

	result, err := e.Extract(context.Background(), "Polyaspirinate is not a mention.", 0.1)
	require.NoError(t, err)
	assert.Empty(t, result.Entities)
}

func TestRuleBasedDeduplicatesNearIdenticalMentions(t *testing.T) {
	e, err := NewRuleBasedExtractor([]Pattern{
		{Type: "Drug", Keywords: []string{"aspirin", "aspirine"}},
	})
	require.NoError(t, err)

	result, err := e.Extract(context.Background(), "Aspirin, sometimes spelled aspirine, is common.", 0.1)
	require.NoError(t, err)
	assert.Len(t, result.Entities, 1)
}

func TestLLMExtractorParsesResponse(t *testing.T) {
	client := &fakeClient{response: `{
		"entities": [
			{"type": "Drug", "text": "aspirin", "confidence": 0.9},
			{"type": "Disease", "text": "headache", "confidence": 0.8}
		],
		"relationships": [
			{"type": "treats", "source": "aspirin", "target": "headache", "confidence": 0.85}
		]
	}`}
	e, err := NewLLMExtractor(client, newRuleBased(t))
	require.NoError(t, err)

	result, err := e.Extract(context.Background(), "Aspirin treats headache.", 0.5)
	require.NoError(t, err)

	assert.Equal(t, models.StrategyLLM, result.Strategy)
	assert.Equal(t, "llm", result.Source)
	require.Len(t, result.Entities, 2)
	require.Len(t, result.Relationships, 1)
	assert.Equal(t, result.Entities[0].ID, result.Relationships[0].SourceID)
	assert.Equal(t, result.Entities[1].ID, result.Relationships[0].TargetID)
}

func TestLLMExtractorFallsBackWithoutClient(t *testing.T) {
	e, err := NewLLMExtractor(nil, newRuleBased(t))
	require.NoError(t, err)

	result, err := e.Extract(context.Background(), "Aspirin treats headache.", 0.1)
	require.NoError(t, err)

	assert.Equal(t, "rule_based_fallback", result.Source)
	assert.NotEmpty(t, result.Entities)
	assert.Contains(t, result.Metadata["fallback_reason"], "no inference client")
}

func TestLLMExtractorFallsBackOnBackendError(t *testing.T) {
	client := &fakeClient{err: fmt.Errorf("connection refused")}
	e, err := NewLLMExtractor(client, newRuleBased(t))
	require.NoError(t, err)

	result, err := e.Extract(context.Background(), "Aspirin treats headache.", 0.1)
	require.NoError(t, err)
	assert.Equal(t, "rule_based_fallback", result.Source)
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestLLMExtractorFallsBackOnGarbageResponse(t *testing.T) {
	client := &fakeClient{response: "I cannot produce JSON today."}
	e, err := NewLLMExtractor(client, newRuleBased(t))
	require.NoError(t, err)

	result, err := e.Extract(context.Background(), "Aspirin treats headache.", 0.1)
	require.NoError(t, err)
	assert.Equal(t, "rule_based_fallback", result.Source)
}

func TestLLMExtractorDropsDanglingRelationships(t *testing.T) {
	// "nausea" is never listed as an entity, so the relationship
	// referencing it must be dropped.
	client := &fakeClient{response: `{
		"entities": [{"type": "Drug", "text": "aspirin", "confidence": 0.9}],
		"relationships": [
			{"type": "causes", "source": "aspirin", "target": "nausea", "confidence": 0.9}
		]
	}`}
	e, err := NewLLMExtractor(client, newRuleBased(t))
	require.NoError(t, err)

	result, err := e.Extract(context.Background(), "irrelevant", 0.5)
	require.NoError(t, err)
	assert.Len(t, result.Entities, 1)
	assert.Empty(t, result.Relationships)
}

func TestHybridReconciliation(t *testing.T) {
	client := &fakeClient{response: `{
		"entities": [
			{"type": "Drug", "text": "aspirin", "confidence": 0.95},
			{"type": "Symptom", "text": "nausea", "confidence": 0.7}
		],
		"relationships": []
	}`}
	llm, err := NewLLMExtractor(client, newRuleBased(t))
	require.NoError(t, err)
	hybrid, err := NewHybridExtractor(newRuleBased(t), llm)
	require.NoError(t, err)

	result, err := hybrid.Extract(context.Background(), "Aspirin treats headache.", 0.1)
	require.NoError(t, err)

	assert.Equal(t, models.StrategyHybrid, result.Strategy)
	// aspirin collapses across strategies; headache and nausea survive.
	texts := map[string]float64{}
	for _, entity := range result.Entities {
		texts[strings.ToLower(entity.Text)] = entity.Confidence
	}
	require.Len(t, texts, 3)
	assert.Contains(t, texts, "aspirin")
	assert.Contains(t, texts, "headache")
	assert.Contains(t, texts, "nausea")
	assert.Equal(t, 0.95, texts["aspirin"], "reconciliation keeps the higher confidence")
}

func TestForStrategy(t *testing.T) {
	ruleBased := newRuleBased(t)
	llm, err := NewLLMExtractor(nil, ruleBased)
	require.NoError(t, err)

	for _, strategy := range []models.ExtractionStrategy{
		models.StrategyRuleBased, models.StrategyLLM, models.StrategyHybrid,
	} {
		e, err := ForStrategy(strategy, ruleBased, llm)
		require.NoError(t, err)
		assert.NotNil(t, e)
	}

	_, err = ForStrategy("telepathy", ruleBased, llm)
	assert.Error(t, err)
}

func TestBatchExtractorValidation(t *testing.T) {
	_, err := NewBatchExtractor(nil, 2, time.Second)
	assert.Error(t, err)
	_, err = NewBatchExtractor(newRuleBased(t), 0, time.Second)
	assert.Error(t, err)
	_, err = NewBatchExtractor(newRuleBased(t), 2, 0)
	assert.Error(t, err)
}

func TestBatchExtractionPreservesOrder(t *testing.T) {
	batch, err := NewBatchExtractor(newRuleBased(t), 2, time.Second)
	require.NoError(t, err)

	texts := []string{
		"Aspirin treats headache.",
		"",
		"Ibuprofen treats migraine.",
	}
	items := batch.ExtractBatch(context.Background(), texts, 0.1)

	require.Len(t, items, 3)
	for i, item := range items {
		assert.Equal(t, i, item.Index)
		require.NoError(t, item.Err)
		require.NotNil(t, item.Result)
	}
	assert.NotEmpty(t, items[0].Result.Entities)
	assert.Empty(t, items[1].Result.Entities)
	assert.NotEmpty(t, items[2].Result.Entities)
}

// slowExtractor blocks until its context is done
type slowExtractor struct{}

func (slowExtractor) Extract(ctx context.Context, text string, threshold float64) (*models.ExtractionResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestBatchItemTimeoutIsIsolated(t *testing.T) {
	// One slow item must time out without corrupting the fast ones.
	fast := newRuleBased(t)
	mixed := extractorFunc(func(ctx context.Context, text string, threshold float64) (*models.ExtractionResult, error) {
		if text == "slow" {
			return slowExtractor{}.Extract(ctx, text, threshold)
		}
		return fast.Extract(ctx, text, threshold)
	})

	batch, err := NewBatchExtractor(mixed, 3, 50*time.Millisecond)
	require.NoError(t, err)

	items := batch.ExtractBatch(context.Background(), []string{"Aspirin helps.", "slow", "Ibuprofen helps."}, 0.1)

	require.NoError(t, items[0].Err)
	require.Error(t, items[1].Err)
	assert.ErrorIs(t, items[1].Err, context.DeadlineExceeded)
	require.NoError(t, items[2].Err)
}

type extractorFunc func(ctx context.Context, text string, threshold float64) (*models.ExtractionResult, error)

func (f extractorFunc) Extract(ctx context.Context, text string, threshold float64) (*models.ExtractionResult, error) {
	return f(ctx, text, threshold)
}

func TestBatchBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	var mu sync.Mutex

	probe := extractorFunc(func(ctx context.Context, text string, threshold float64) (*models.ExtractionResult, error) {
		current := inFlight.Add(1)
		mu.Lock()
		if current > peak.Load() {
			peak.Store(current)
		}
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return models.EmptyExtractionResult(models.StrategyRuleBased), nil
	})

	batch, err := NewBatchExtractor(probe, 2, time.Second)
	require.NoError(t, err)

	texts := make([]string, 8)
	items := batch.ExtractBatch(context.Background(), texts, 0.1)

	require.Len(t, items, 8)
	assert.LessOrEqual(t, peak.Load(), int32(2), "concurrency window must be honored")
}

func TestDocumentGeneratorProducesOntology(t *testing.T) {
	gen, err := NewDocumentGenerator(newRuleBased(t), "Aspirin treats headache.", "medicine")
	require.NoError(t, err)

	ontology, err := gen.Generate(context.Background(), 0.1)
	require.NoError(t, err)

	assert.Equal(t, "medicine", ontology.Domain)
	assert.NotEmpty(t, ontology.Entities)
	assert.Equal(t, string(models.StrategyRuleBased), ontology.Metadata["strategy"])
	require.NoError(t, ontology.Validate())
}
