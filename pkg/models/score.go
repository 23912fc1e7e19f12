package models

import "fmt"

// DimensionCount is the number of independent quality dimensions in a CriticScore.
const DimensionCount = 6

// Dimension names in canonical order. Comparative analytics that return
// a dimension name always use these values.
const (
	DimCompleteness          = "completeness"
	DimConsistency           = "consistency"
	DimClarity               = "clarity"
	DimGranularity           = "granularity"
	DimRelationshipCoherence = "relationship_coherence"
	DimDomainAlignment       = "domain_alignment"
)

// DimensionNames returns the canonical dimension ordering
func DimensionNames() []string {
	return []string{
		DimCompleteness,
		DimConsistency,
		DimClarity,
		DimGranularity,
		DimRelationshipCoherence,
		DimDomainAlignment,
	}
}

// CriticScore is a six-dimension quality vector plus the derived
// overall value. Scores are immutable once produced by the critic.
type CriticScore struct {
	Completeness          float64 `json:"completeness"`
	Consistency           float64 `json:"consistency"`
	Clarity               float64 `json:"clarity"`
	Granularity           float64 `json:"granularity"`
	RelationshipCoherence float64 `json:"relationship_coherence"`
	DomainAlignment       float64 `json:"domain_alignment"`
	Overall               float64 `json:"overall"`
	IsDelta               bool    `json:"is_delta,omitempty"`
}

// NewCriticScore builds a score with every dimension clamped to [0,1].
// The overall value is filled in by the critic's weight combination.
func NewCriticScore(completeness, consistency, clarity, granularity, coherence, alignment float64) CriticScore {
	return CriticScore{
		Completeness:          Clamp01(completeness),
		Consistency:           Clamp01(consistency),
		Clarity:               Clamp01(clarity),
		Granularity:           Clamp01(granularity),
		RelationshipCoherence: Clamp01(coherence),
		DomainAlignment:       Clamp01(alignment),
	}
}

// Dimensions returns the dimension values in canonical order
func (s CriticScore) Dimensions() []float64 {
	return []float64{
		s.Completeness,
		s.Consistency,
		s.Clarity,
		s.Granularity,
		s.RelationshipCoherence,
		s.DomainAlignment,
	}
}

// Dimension returns the value of a named dimension
func (s CriticScore) Dimension(name string) (float64, error) {
	switch name {
	case DimCompleteness:
		return s.Completeness, nil
	case DimConsistency:
		return s.Consistency, nil
	case DimClarity:
		return s.Clarity, nil
	case DimGranularity:
		return s.Granularity, nil
	case DimRelationshipCoherence:
		return s.RelationshipCoherence, nil
	case DimDomainAlignment:
		return s.DomainAlignment, nil
	default:
		return 0, fmt.Errorf("unknown dimension %q", name)
	}
}

// Sub returns the per-dimension difference s − other, tagged as a
// delta score. Delta dimensions are not clamped; they may be negative.
func (s CriticScore) Sub(other CriticScore) CriticScore {
	return CriticScore{
		Completeness:          s.Completeness - other.Completeness,
		Consistency:           s.Consistency - other.Consistency,
		Clarity:               s.Clarity - other.Clarity,
		Granularity:           s.Granularity - other.Granularity,
		RelationshipCoherence: s.RelationshipCoherence - other.RelationshipCoherence,
		DomainAlignment:       s.DomainAlignment - other.DomainAlignment,
		Overall:               s.Overall - other.Overall,
		IsDelta:               true,
	}
}

// Clamp01 clamps v to the [0,1] interval
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
