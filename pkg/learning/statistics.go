package learning

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Descriptive statistics over the feedback score series. Degenerate
// histories (fewer than two samples, zero variance) resolve to the
// documented neutral value; only contract violations (percentile out
// of range) produce an error.

// scores extracts the final-score series in record order
func (a *Adapter) scores() []float64 {
	out := make([]float64, len(a.feedback))
	for i, record := range a.feedback {
		out[i] = record.FinalScore
	}
	return out
}

// FeedbackMean returns the mean feedback score, 0 with no feedback
func (a *Adapter) FeedbackMean() float64 {
	if len(a.feedback) == 0 {
		return 0
	}
	return stat.Mean(a.scores(), nil)
}

// FeedbackVariance returns the population variance, 0 for fewer than
// two samples
func (a *Adapter) FeedbackVariance() float64 {
	if len(a.feedback) < 2 {
		return 0
	}
	xs := a.scores()
	mean := stat.Mean(xs, nil)
	sum := 0.0
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return sum / float64(len(xs))
}

// FeedbackStdDev returns the population standard deviation
func (a *Adapter) FeedbackStdDev() float64 {
	return math.Sqrt(a.FeedbackVariance())
}

// FeedbackPercentile returns the p-th percentile of the score series.
// p outside [0,100] is an error; an empty series resolves to 0.
func (a *Adapter) FeedbackPercentile(p float64) (float64, error) {
	if p < 0 || p > 100 {
		return 0, fmt.Errorf("percentile must be within [0,100], got %f", p)
	}
	if len(a.feedback) == 0 {
		return 0, nil
	}
	xs := a.scores()
	if p == 0 {
		min, _ := stats.Min(xs)
		return min, nil
	}
	value, err := stats.Percentile(xs, p)
	if err != nil {
		return 0, nil
	}
	return value, nil
}

// FeedbackSkewness returns the sample skewness, 0 for fewer than three
// samples or zero variance
func (a *Adapter) FeedbackSkewness() float64 {
	if len(a.feedback) < 3 {
		return 0
	}
	skew := stat.Skew(a.scores(), nil)
	if math.IsNaN(skew) || math.IsInf(skew, 0) {
		return 0
	}
	return skew
}

// FeedbackEMA returns the exponential moving average of the score
// series with the given alpha, 0 with no feedback
func (a *Adapter) FeedbackEMA(alpha float64) float64 {
	xs := a.scores()
	if len(xs) == 0 {
		return 0
	}
	ema := xs[0]
	for _, x := range xs[1:] {
		ema = alpha*x + (1-alpha)*ema
	}
	return ema
}

// FeedbackTrendSlope returns the least-squares slope of score against
// record index, 0 for fewer than two samples
func (a *Adapter) FeedbackTrendSlope() float64 {
	if len(a.feedback) < 2 {
		return 0
	}
	xs := make([]float64, len(a.feedback))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, a.scores(), nil, false)
	if math.IsNaN(slope) {
		return 0
	}
	return slope
}

// FeedbackSpikeCount returns the number of scores further than
// zThreshold standard deviations from the mean, 0 for degenerate
// series
func (a *Adapter) FeedbackSpikeCount(zThreshold float64) int {
	if len(a.feedback) < 2 {
		return 0
	}
	mean := a.FeedbackMean()
	std := a.FeedbackStdDev()
	if std == 0 {
		return 0
	}
	count := 0
	for _, x := range a.scores() {
		if math.Abs(x-mean)/std > zThreshold {
			count++
		}
	}
	return count
}

// FeedbackOscillationCount returns the number of direction changes in
// the consecutive-delta sign sequence
func (a *Adapter) FeedbackOscillationCount() int {
	xs := a.scores()
	if len(xs) < 3 {
		return 0
	}
	count := 0
	prev := 0.0
	for i := 1; i < len(xs); i++ {
		delta := xs[i] - xs[i-1]
		if delta == 0 {
			continue
		}
		if prev != 0 && (delta > 0) != (prev > 0) {
			count++
		}
		prev = delta
	}
	return count
}

// FeedbackPlateauLength returns the length of the longest run of
// consecutive scores whose pairwise delta stays below the tolerance
func (a *Adapter) FeedbackPlateauLength(tolerance float64) int {
	xs := a.scores()
	if len(xs) < 2 {
		return 0
	}
	longest, current := 1, 1
	for i := 1; i < len(xs); i++ {
		if math.Abs(xs[i]-xs[i-1]) <= tolerance {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

// FeedbackLongestPositiveStreak returns the longest run of strictly
// increasing consecutive scores, counted in deltas
func (a *Adapter) FeedbackLongestPositiveStreak() int {
	return a.longestDeltaStreak(func(d float64) bool { return d > 0 })
}

// FeedbackLongestNegativeStreak returns the longest run of strictly
// decreasing consecutive scores, counted in deltas
func (a *Adapter) FeedbackLongestNegativeStreak() int {
	return a.longestDeltaStreak(func(d float64) bool { return d < 0 })
}

func (a *Adapter) longestDeltaStreak(match func(float64) bool) int {
	xs := a.scores()
	if len(xs) < 2 {
		return 0
	}
	longest, current := 0, 0
	for i := 1; i < len(xs); i++ {
		if match(xs[i] - xs[i-1]) {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest
}
