package optimizer

import (
	"math"

	"github.com/ontoforge/ontoforge-go/pkg/models"
)

// ConvergenceRate returns the fraction of consecutive score pairs in
// the full history whose absolute delta stays below the configured
// tolerance. A history with no pairs yields the conservative 0.
func (o *Optimizer) ConvergenceRate() float64 {
	return convergenceRate(o.scores, o.cfg.Tolerance)
}

// ConvergenceRateWindow returns the convergence rate over the newest
// window scores. A window wider than the history degrades to the full
// series.
func (o *Optimizer) ConvergenceRateWindow(window int) float64 {
	if window < 1 || len(o.scores) == 0 {
		return 0
	}
	if window > len(o.scores) {
		window = len(o.scores)
	}
	return convergenceRate(o.scores[len(o.scores)-window:], o.cfg.Tolerance)
}

func convergenceRate(xs []float64, tolerance float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	stable := 0
	for i := 1; i < len(xs); i++ {
		if math.Abs(xs[i]-xs[i-1]) < tolerance {
			stable++
		}
	}
	return float64(stable) / float64(len(xs)-1)
}

// Trend classifies the latest round-to-round movement against the
// tolerance: improving, declining, or stable
func (o *Optimizer) Trend() models.Trend {
	if len(o.scores) < 2 {
		return models.TrendStable
	}
	delta := o.scores[len(o.scores)-1] - o.scores[len(o.scores)-2]
	switch {
	case delta > o.cfg.Tolerance:
		return models.TrendImproving
	case delta < -o.cfg.Tolerance:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}
