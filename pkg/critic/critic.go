// Package critic scores ontologies along six independent quality
// dimensions and exposes comparative analytics over the resulting
// score vectors.
package critic

import (
	"fmt"
	"math"
	"strings"

	"github.com/ontoforge/ontoforge-go/pkg/models"
	"github.com/ontoforge/ontoforge-go/pkg/validator"
)

// Weights is the fixed per-critic combination used to derive the
// overall score. The six weights must sum to 1.
type Weights struct {
	Completeness          float64 `json:"completeness" yaml:"completeness"`
	Consistency           float64 `json:"consistency" yaml:"consistency"`
	Clarity               float64 `json:"clarity" yaml:"clarity"`
	Granularity           float64 `json:"granularity" yaml:"granularity"`
	RelationshipCoherence float64 `json:"relationship_coherence" yaml:"relationship_coherence"`
	DomainAlignment       float64 `json:"domain_alignment" yaml:"domain_alignment"`
}

// DefaultWeights returns the standard weight combination
func DefaultWeights() Weights {
	return Weights{
		Completeness:          0.20,
		Consistency:           0.20,
		Clarity:               0.15,
		Granularity:           0.15,
		RelationshipCoherence: 0.15,
		DomainAlignment:       0.15,
	}
}

// Validate checks that every weight is non-negative and the weights
// sum to 1 within a small tolerance
func (w Weights) Validate() error {
	values := []float64{w.Completeness, w.Consistency, w.Clarity, w.Granularity, w.RelationshipCoherence, w.DomainAlignment}
	sum := 0.0
	for _, v := range values {
		if v < 0 {
			return fmt.Errorf("critic weights must be non-negative, got %f", v)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("critic weights must sum to 1, got %f", sum)
	}
	return nil
}

// EvaluationContext carries the domain signal the critic aligns an
// ontology against
type EvaluationContext struct {
	Domain   string
	Keywords []string
}

// Critic produces CriticScores for ontologies. The evaluation itself
// is stateless per call; the critic retains a score history for
// percentile and reliability comparisons.
type Critic struct {
	weights   Weights
	validator *validator.Validator
	history   []models.CriticScore
}

// New creates a critic with the given weights. Invalid weights are a
// construction error, never silently normalized.
func New(weights Weights) (*Critic, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Critic{weights: weights, validator: validator.New()}, nil
}

// MustNew is New for callers with compile-time-constant weights
func MustNew(weights Weights) *Critic {
	c, err := New(weights)
	if err != nil {
		panic(err)
	}
	return c
}

// Weights returns the critic's fixed weight combination
func (c *Critic) Weights() Weights { return c.weights }

// History returns a copy of the retained score history in evaluation
// order
func (c *Critic) History() []models.CriticScore {
	out := make([]models.CriticScore, len(c.history))
	copy(out, c.history)
	return out
}

// EvaluateOntology scores an ontology along the six quality dimensions
// and combines them into the overall value via the critic's weights.
// The returned score is also appended to the critic's history.
func (c *Critic) EvaluateOntology(o *models.Ontology, ctx EvaluationContext) models.CriticScore {
	score := models.NewCriticScore(
		c.completeness(o),
		c.consistency(o),
		c.clarity(o),
		c.granularity(o),
		c.relationshipCoherence(o),
		c.domainAlignment(o, ctx),
	)
	score.Overall = c.Combine(score)
	c.history = append(c.history, score)
	return score
}

// Combine folds a score's dimensions into the weighted overall value
func (c *Critic) Combine(s models.CriticScore) float64 {
	w := c.weights
	return models.Clamp01(
		w.Completeness*s.Completeness +
			w.Consistency*s.Consistency +
			w.Clarity*s.Clarity +
			w.Granularity*s.Granularity +
			w.RelationshipCoherence*s.RelationshipCoherence +
			w.DomainAlignment*s.DomainAlignment)
}

// completeness rewards ontologies that carry a reasonable amount of
// content: entity volume, relationship volume, and source-text
// coverage, each saturating rather than growing without bound
func (c *Critic) completeness(o *models.Ontology) float64 {
	if o == nil || len(o.Entities) == 0 {
		return 0
	}
	entityFactor := saturate(float64(len(o.Entities)) / 10.0)
	relFactor := saturate(float64(len(o.Relationships)) / 10.0)
	withText := 0
	for i := range o.Entities {
		if o.Entities[i].Text != "" {
			withText++
		}
	}
	textCoverage := float64(withText) / float64(len(o.Entities))
	return 0.4*entityFactor + 0.3*relFactor + 0.3*textCoverage
}

// consistency penalizes dangling references and duplicate entity ids
func (c *Critic) consistency(o *models.Ontology) float64 {
	if o == nil || len(o.Entities) == 0 {
		return 0
	}
	score := 1.0
	if len(o.Relationships) > 0 {
		result := c.validator.ConsistencyCheck(o)
		danglingRate := float64(len(result.DanglingReferences)) / float64(2*len(o.Relationships))
		score -= danglingRate
	}
	seen := map[string]bool{}
	duplicates := 0
	for i := range o.Entities {
		if seen[o.Entities[i].ID] {
			duplicates++
		}
		seen[o.Entities[i].ID] = true
	}
	score -= 0.2 * float64(duplicates) / float64(len(o.Entities))
	return models.Clamp01(score)
}

// clarity measures how many entities carry both a type label and a
// surface form
func (c *Critic) clarity(o *models.Ontology) float64 {
	if o == nil || len(o.Entities) == 0 {
		return 0
	}
	clear := 0
	for i := range o.Entities {
		e := &o.Entities[i]
		if e.Type != "" && e.Text != "" {
			clear++
		}
	}
	return float64(clear) / float64(len(o.Entities))
}

// granularity peaks when type diversity sits near the middle ground:
// a single type means the ontology is too coarse, one type per entity
// means it is fragmented
func (c *Critic) granularity(o *models.Ontology) float64 {
	if o == nil || len(o.Entities) == 0 {
		return 0
	}
	types := map[string]bool{}
	for i := range o.Entities {
		types[o.Entities[i].Type] = true
	}
	diversity := float64(len(types)) / float64(len(o.Entities))
	return models.Clamp01(1 - math.Abs(diversity-0.5)/0.5)
}

// relationshipCoherence combines endpoint validity with edge
// non-redundancy
func (c *Critic) relationshipCoherence(o *models.Ontology) float64 {
	if o == nil || len(o.Relationships) == 0 {
		return 0
	}
	result := c.validator.ConsistencyCheck(o)
	dangling := map[string]bool{}
	for _, ref := range result.DanglingReferences {
		dangling[ref.RelationshipID] = true
	}
	valid := len(o.Relationships) - len(dangling)
	validRate := float64(valid) / float64(len(o.Relationships))
	redundancy := c.validator.RedundancyScore(o)
	return models.Clamp01(validRate * (1 - redundancy))
}

// domainAlignment measures keyword overlap between the evaluation
// context and entity text/type labels. With no keywords to align
// against, alignment is neutral.
func (c *Critic) domainAlignment(o *models.Ontology, ctx EvaluationContext) float64 {
	if o == nil || len(o.Entities) == 0 {
		return 0
	}
	if len(ctx.Keywords) == 0 {
		return 0.5
	}
	var corpus strings.Builder
	for i := range o.Entities {
		corpus.WriteString(strings.ToLower(o.Entities[i].Text))
		corpus.WriteString(" ")
		corpus.WriteString(strings.ToLower(o.Entities[i].Type))
		corpus.WriteString(" ")
	}
	text := corpus.String()
	matched := 0
	for _, kw := range ctx.Keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			matched++
		}
	}
	return float64(matched) / float64(len(ctx.Keywords))
}

// saturate clamps v to at most 1 while keeping 0 as the floor
func saturate(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
