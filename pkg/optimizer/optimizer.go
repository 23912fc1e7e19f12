// Package optimizer orchestrates refinement rounds over an ontology:
// generate, critique, mediate, record, until the score series
// converges, regresses, or the round budget runs out. It owns the
// append-only round history and the convergence diagnostics over it.
package optimizer

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/ontoforge/ontoforge-go/pkg/critic"
	"github.com/ontoforge/ontoforge-go/pkg/learning"
	"github.com/ontoforge/ontoforge-go/pkg/mediator"
	"github.com/ontoforge/ontoforge-go/pkg/models"
	"github.com/ontoforge/ontoforge-go/pkg/validator"
)

// Generator produces ontology candidates. The extraction hint is the
// confidence threshold the learning adapter currently recommends.
type Generator interface {
	Generate(ctx context.Context, hint float64) (*models.Ontology, error)
}

// GeneratorFunc adapts a function to the Generator interface
type GeneratorFunc func(ctx context.Context, hint float64) (*models.Ontology, error)

// Generate implements Generator
func (f GeneratorFunc) Generate(ctx context.Context, hint float64) (*models.Ontology, error) {
	return f(ctx, hint)
}

// StopReason records why a refinement session ended
type StopReason string

const (
	StopMaxRounds StopReason = "max_rounds"
	StopConverged StopReason = "converged"
	StopRegressed StopReason = "regressed"
)

// Config holds the tunable parameters of a refinement session
type Config struct {
	MaxRounds         int     `json:"max_rounds" yaml:"max_rounds"`
	Tolerance         float64 `json:"tolerance" yaml:"tolerance"`
	ConvergenceWindow int     `json:"convergence_window" yaml:"convergence_window"`
	RegressionRounds  int     `json:"regression_rounds" yaml:"regression_rounds"`
	Domain            string  `json:"domain" yaml:"domain"`
	Keywords          []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Seed              int64   `json:"seed" yaml:"seed"`
}

// DefaultConfig returns the standard session parameters
func DefaultConfig() Config {
	return Config{
		MaxRounds:         10,
		Tolerance:         0.02,
		ConvergenceWindow: 3,
		RegressionRounds:  3,
		Seed:              1,
	}
}

// Validate checks the configuration contract. Violations are errors at
// the construction boundary, never silently clamped.
func (c Config) Validate() error {
	if c.MaxRounds < 1 {
		return fmt.Errorf("max rounds must be positive, got %d", c.MaxRounds)
	}
	if c.Tolerance <= 0 || c.Tolerance >= 1 {
		return fmt.Errorf("tolerance %f outside (0,1)", c.Tolerance)
	}
	if c.ConvergenceWindow < 1 {
		return fmt.Errorf("convergence window must be positive, got %d", c.ConvergenceWindow)
	}
	if c.RegressionRounds < 1 {
		return fmt.Errorf("regression rounds must be positive, got %d", c.RegressionRounds)
	}
	return nil
}

// Optimizer drives the refinement loop. Not safe for concurrent use;
// the round history follows single-writer discipline.
type Optimizer struct {
	cfg       Config
	critic    *critic.Critic
	mediator  *mediator.Mediator
	adapter   *learning.Adapter
	validator *validator.Validator
	rng       *rand.Rand

	history []models.OptimizationRound
	scores  []float64 // successful-round score series

	best      *models.Ontology
	bestScore float64
	worst     *models.Ontology
	worstScore float64
}

// New creates an optimizer from its collaborators
func New(cfg Config, cr *critic.Critic, med *mediator.Mediator, adapter *learning.Adapter) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cr == nil || med == nil || adapter == nil {
		return nil, fmt.Errorf("critic, mediator, and adapter are all required")
	}
	return &Optimizer{
		cfg:       cfg,
		critic:    cr,
		mediator:  med,
		adapter:   adapter,
		validator: validator.New(),
		rng:       rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// History returns a copy of the append-only round history
func (o *Optimizer) History() []models.OptimizationRound {
	out := make([]models.OptimizationRound, len(o.history))
	copy(out, o.history)
	return out
}

// Scores returns a copy of the successful-round score series
func (o *Optimizer) Scores() []float64 {
	out := make([]float64, len(o.scores))
	copy(out, o.scores)
	return out
}

// BestOntology returns the best-scoring snapshot seen so far
func (o *Optimizer) BestOntology() *models.Ontology { return o.best }

// WorstOntology returns the worst-scoring snapshot seen so far
func (o *Optimizer) WorstOntology() *models.Ontology { return o.worst }

// RunSession executes refinement rounds until a stop condition fires.
// A failed generate step never leaves the history partially written:
// the round is recorded whole, carrying an explicit failure marker,
// and the loop moves on to the next round.
func (o *Optimizer) RunSession(ctx context.Context, gen Generator) (StopReason, error) {
	if gen == nil {
		return "", fmt.Errorf("generator is required")
	}
	evalCtx := critic.EvaluationContext{Domain: o.cfg.Domain, Keywords: o.cfg.Keywords}

	for round := 1; round <= o.cfg.MaxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("session aborted: %w", err)
		}

		hint := o.adapter.ExtractionHint()
		ontology, err := gen.Generate(ctx, hint)
		if err != nil || ontology == nil {
			o.recordFailure(round, hint, err)
			continue
		}

		initial := o.critic.EvaluateOntology(ontology, evalCtx)

		consistency := o.validator.ConsistencyCheck(ontology)
		feedback := mediator.Feedback{
			Score:           initial,
			Fixes:           o.validator.SuggestFixesForResult(consistency),
			Recommendations: o.buildRecommendations(ontology, initial),
		}
		changed, action := o.mediator.RefineOntology(ontology, feedback, o.rng)

		final := initial
		if changed {
			final = o.critic.EvaluateOntology(ontology, evalCtx)
		}
		average := (initial.Overall + final.Overall) / 2

		o.recordSuccess(round, average, hint, changed, action, ontology)

		actions := []string{}
		if changed {
			actions = append(actions, action)
		}
		o.adapter.ApplyFeedback(final.Overall, actions, &hint)

		if o.converged() {
			return StopConverged, nil
		}
		if o.regressed() {
			return StopRegressed, nil
		}
	}
	return StopMaxRounds, nil
}

// recordSuccess appends one completed round and refreshes the
// best/worst snapshots
func (o *Optimizer) recordSuccess(round int, average, hint float64, changed bool, action string, ontology *models.Ontology) {
	if o.best == nil || average > o.bestScore {
		o.best = ontology.Clone()
		o.bestScore = average
	}
	if o.worst == nil || average < o.worstScore {
		o.worst = ontology.Clone()
		o.worstScore = average
	}
	o.scores = append(o.scores, average)
	o.history = append(o.history, models.OptimizationRound{
		Round:         round,
		AverageScore:  average,
		Trend:         o.Trend(),
		BestOntology:  o.best,
		WorstOntology: o.worst,
		Metadata: map[string]any{
			"hint":    hint,
			"changed": changed,
			"action":  action,
		},
		RecordedAt: time.Now().UTC(),
	})
}

// recordFailure appends a round carrying the explicit failure marker.
// Failed rounds do not contribute to the score series.
func (o *Optimizer) recordFailure(round int, hint float64, err error) {
	metadata := map[string]any{
		"failed": true,
		"hint":   hint,
	}
	if err != nil {
		metadata["error"] = err.Error()
	} else {
		metadata["error"] = "generator returned no ontology"
	}
	o.history = append(o.history, models.OptimizationRound{
		Round:         round,
		Trend:         models.TrendStable,
		BestOntology:  o.best,
		WorstOntology: o.worst,
		Metadata:      metadata,
		RecordedAt:    time.Now().UTC(),
	})
}

// converged reports whether every consecutive pair among the last
// ConvergenceWindow scores sits below the tolerance
func (o *Optimizer) converged() bool {
	if len(o.scores) < o.cfg.ConvergenceWindow || o.cfg.ConvergenceWindow < 2 {
		return false
	}
	return o.ConvergenceRateWindow(o.cfg.ConvergenceWindow) == 1.0
}

// regressed reports whether the score has strictly declined beyond the
// tolerance for the configured number of consecutive rounds
func (o *Optimizer) regressed() bool {
	n := o.cfg.RegressionRounds
	if len(o.scores) < n+1 {
		return false
	}
	tail := o.scores[len(o.scores)-n-1:]
	for i := 1; i < len(tail); i++ {
		if tail[i] >= tail[i-1]-o.cfg.Tolerance {
			return false
		}
	}
	return true
}

// buildRecommendations derives mediator actions from the ontology
// content: near-duplicate entity surface forms become merge
// candidates, and a depressed overall score with low-confidence
// entities suggests a confidence filter
func (o *Optimizer) buildRecommendations(ontology *models.Ontology, score models.CriticScore) []mediator.Recommendation {
	recs := []mediator.Recommendation{}

	// Near-duplicate surface forms (normalized Levenshtein similarity)
	// are merge candidates; keep the higher-confidence entity.
	for i := 0; i < len(ontology.Entities); i++ {
		for j := i + 1; j < len(ontology.Entities); j++ {
			a, b := &ontology.Entities[i], &ontology.Entities[j]
			if a.Text == "" || b.Text == "" || a.Type != b.Type {
				continue
			}
			if similarity(a.Text, b.Text) >= 0.8 {
				keep, drop := a, b
				if drop.Confidence > keep.Confidence {
					keep, drop = drop, keep
				}
				recs = append(recs, mediator.Recommendation{
					Action:      mediator.ActionMergeEntities,
					TargetID:    keep.ID,
					SecondaryID: drop.ID,
					Confidence:  similarity(a.Text, b.Text),
				})
			}
		}
	}

	if score.Overall < 0.5 {
		recs = append(recs, mediator.Recommendation{
			Action:     mediator.ActionFilterLowConfidence,
			Confidence: 0.5,
		})
	}
	return recs
}

// similarity returns 1 minus the normalized Levenshtein distance
func similarity(a, b string) float64 {
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
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}
