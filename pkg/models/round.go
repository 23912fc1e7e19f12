package models

import (
	"fmt"
	"time"
)

// Trend classifies the direction of the score series across rounds
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// ParseTrend converts a string into a Trend at the deserialization
// boundary. An empty string parses to the stable default.
func ParseTrend(s string) (Trend, error) {
	switch s {
	case "", string(TrendStable):
		return TrendStable, nil
	case string(TrendImproving):
		return TrendImproving, nil
	case string(TrendDeclining):
		return TrendDeclining, nil
	default:
		return TrendStable, fmt.Errorf("unknown trend %q", s)
	}
}

// OptimizationRound is one append-only entry in the optimizer's round
// history. Entries are never mutated after they are recorded.
type OptimizationRound struct {
	Round         int            `json:"round"`
	AverageScore  float64        `json:"average_score"`
	Trend         Trend          `json:"trend"`
	BestOntology  *Ontology      `json:"best_ontology,omitempty"`
	WorstOntology *Ontology      `json:"worst_ontology,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	RecordedAt    time.Time      `json:"recorded_at"`
}

// Failed reports whether this round carries the explicit failure marker
func (r *OptimizationRound) Failed() bool {
	if r.Metadata == nil {
		return false
	}
	failed, _ := r.Metadata["failed"].(bool)
	return failed
}
