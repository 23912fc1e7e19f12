package optimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Descriptive statistics over the round-score series. Degenerate
// histories (empty, single entry, zero variance) resolve to the
// documented neutral value, typically 0 or an empty slice; only
// contract violations (percentile/quantile argument out of range)
// produce an error.

const histogramBins = 10

// HistoryMean returns the mean round score, 0 with no rounds
func (o *Optimizer) HistoryMean() float64 {
	if len(o.scores) == 0 {
		return 0
	}
	return stat.Mean(o.scores, nil)
}

// HistoryMedian returns the median round score, 0 with no rounds
func (o *Optimizer) HistoryMedian() float64 {
	if len(o.scores) == 0 {
		return 0
	}
	median, err := stats.Median(o.scores)
	if err != nil {
		return 0
	}
	return median
}

// HistoryVariance returns the population variance of the score series,
// 0 for fewer than two rounds
func (o *Optimizer) HistoryVariance() float64 {
	if len(o.scores) < 2 {
		return 0
	}
	mean := stat.Mean(o.scores, nil)
	sum := 0.0
	for _, x := range o.scores {
		d := x - mean
		sum += d * d
	}
	return sum / float64(len(o.scores))
}

// HistoryStdDev returns the population standard deviation
func (o *Optimizer) HistoryStdDev() float64 {
	return math.Sqrt(o.HistoryVariance())
}

// HistoryMAD returns the median absolute deviation, 0 with no rounds
func (o *Optimizer) HistoryMAD() float64 {
	if len(o.scores) == 0 {
		return 0
	}
	mad, err := stats.MedianAbsoluteDeviation(o.scores)
	if err != nil {
		return 0
	}
	return mad
}

// HistoryIQR returns the interquartile range, 0 for histories too short
// to quarter
func (o *Optimizer) HistoryIQR() float64 {
	if len(o.scores) < 4 {
		return 0
	}
	iqr, err := stats.InterQuartileRange(o.scores)
	if err != nil {
		return 0
	}
	return iqr
}

// HistoryPercentile returns the p-th percentile of the score series.
// p outside [0,100] is an error; an empty series resolves to 0.
func (o *Optimizer) HistoryPercentile(p float64) (float64, error) {
	if p < 0 || p > 100 {
		return 0, fmt.Errorf("percentile must be within [0,100], got %f", p)
	}
	if len(o.scores) == 0 {
		return 0, nil
	}
	if p == 0 {
		min, _ := stats.Min(o.scores)
		return min, nil
	}
	value, err := stats.Percentile(o.scores, p)
	if err != nil {
		return 0, nil
	}
	return value, nil
}

// HistoryQuantile returns the q-quantile for q in [0,1]
func (o *Optimizer) HistoryQuantile(q float64) (float64, error) {
	if q < 0 || q > 1 {
		return 0, fmt.Errorf("quantile must be within [0,1], got %f", q)
	}
	return o.HistoryPercentile(q * 100)
}

// HistorySkewness returns the sample skewness, 0 for fewer than three
// rounds or zero variance
func (o *Optimizer) HistorySkewness() float64 {
	if len(o.scores) < 3 {
		return 0
	}
	skew := stat.Skew(o.scores, nil)
	if math.IsNaN(skew) || math.IsInf(skew, 0) {
		return 0
	}
	return skew
}

// HistoryKurtosis returns the excess kurtosis, 0 for fewer than four
// rounds or zero variance
func (o *Optimizer) HistoryKurtosis() float64 {
	if len(o.scores) < 4 {
		return 0
	}
	kurtosis := stat.ExKurtosis(o.scores, nil)
	if math.IsNaN(kurtosis) || math.IsInf(kurtosis, 0) {
		return 0
	}
	return kurtosis
}

// HistoryEntropyChange returns the Shannon entropy of the newer half of
// the series minus that of the older half, each over a ten-bin
// histogram. Fewer than four rounds resolve to 0.
func (o *Optimizer) HistoryEntropyChange() float64 {
	if len(o.scores) < 4 {
		return 0
	}
	mid := len(o.scores) / 2
	return histogramEntropy(o.scores[mid:]) - histogramEntropy(o.scores[:mid])
}

// HistoryAutocorrelation returns the normalized autocorrelation of the
// score series at the given lag, 0 for non-positive lags, series
// shorter than lag+2, or zero variance
func (o *Optimizer) HistoryAutocorrelation(lag int) float64 {
	n := len(o.scores)
	if lag < 1 || n < lag+2 {
		return 0
	}
	mean := stat.Mean(o.scores, nil)
	denominator := 0.0
	for _, x := range o.scores {
		d := x - mean
		denominator += d * d
	}
	if denominator == 0 {
		return 0
	}
	numerator := 0.0
	for i := 0; i < n-lag; i++ {
		numerator += (o.scores[i] - mean) * (o.scores[i+lag] - mean)
	}
	return numerator / denominator
}

// HistoryZScoreLast returns how many standard deviations the newest
// score sits from the series mean, 0 for degenerate series
func (o *Optimizer) HistoryZScoreLast() float64 {
	if len(o.scores) < 2 {
		return 0
	}
	std := o.HistoryStdDev()
	if std == 0 {
		return 0
	}
	return (o.scores[len(o.scores)-1] - o.HistoryMean()) / std
}

// HistoryEMA returns the exponential moving average of the score series
// with the given alpha, 0 with no rounds
func (o *Optimizer) HistoryEMA(alpha float64) float64 {
	if len(o.scores) == 0 {
		return 0
	}
	ema := o.scores[0]
	for _, x := range o.scores[1:] {
		ema = alpha*x + (1-alpha)*ema
	}
	return ema
}

// HistoryWeightedMean returns a recency-weighted mean where the i-th
// newest score carries weight decay^i, 0 with no rounds or a decay
// outside (0,1]
func (o *Optimizer) HistoryWeightedMean(decay float64) float64 {
	n := len(o.scores)
	if n == 0 || decay <= 0 || decay > 1 {
		return 0
	}
	sum, weightSum := 0.0, 0.0
	weight := 1.0
	for i := n - 1; i >= 0; i-- {
		sum += weight * o.scores[i]
		weightSum += weight
		weight *= decay
	}
	return sum / weightSum
}

// HistoryFirstDerivatives returns the consecutive score deltas, empty
// for fewer than two rounds
func (o *Optimizer) HistoryFirstDerivatives() []float64 {
	return derivatives(o.scores)
}

// HistorySecondDerivatives returns the deltas of the deltas, empty for
// fewer than three rounds
func (o *Optimizer) HistorySecondDerivatives() []float64 {
	return derivatives(derivatives(o.scores))
}

// HistoryAcceleration returns the mean second derivative, 0 for fewer
// than three rounds
func (o *Optimizer) HistoryAcceleration() float64 {
	second := o.HistorySecondDerivatives()
	if len(second) == 0 {
		return 0
	}
	return stat.Mean(second, nil)
}

// HistoryPeakCount returns the number of strict interior local maxima
func (o *Optimizer) HistoryPeakCount() int {
	return countExtrema(o.scores, func(prev, curr, next float64) bool {
		return curr > prev && curr > next
	})
}

// HistoryValleyCount returns the number of strict interior local minima
func (o *Optimizer) HistoryValleyCount() int {
	return countExtrema(o.scores, func(prev, curr, next float64) bool {
		return curr < prev && curr < next
	})
}

// HistoryTurningPointCount returns peaks plus valleys
func (o *Optimizer) HistoryTurningPointCount() int {
	return o.HistoryPeakCount() + o.HistoryValleyCount()
}

// HistoryLongestStreakAbove returns the longest run of consecutive
// scores strictly above the threshold
func (o *Optimizer) HistoryLongestStreakAbove(threshold float64) int {
	return longestRun(o.scores, func(x float64) bool { return x > threshold })
}

// HistoryLongestStreakBelow returns the longest run of consecutive
// scores strictly below the threshold
func (o *Optimizer) HistoryLongestStreakBelow(threshold float64) int {
	return longestRun(o.scores, func(x float64) bool { return x < threshold })
}

// HistoryRankOfLast returns the fraction of earlier scores the newest
// one strictly beats, 0 for fewer than two rounds. A new all-time best
// yields 1.
func (o *Optimizer) HistoryRankOfLast() float64 {
	n := len(o.scores)
	if n < 2 {
		return 0
	}
	last := o.scores[n-1]
	below := 0
	for _, x := range o.scores[:n-1] {
		if x < last {
			below++
		}
	}
	return float64(below) / float64(n-1)
}

// HistoryGini returns the Gini coefficient of the score series, 0 for
// identical scores or histories summing to zero
func (o *Optimizer) HistoryGini() float64 {
	n := len(o.scores)
	if n < 2 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, o.scores)
	sort.Float64s(sorted)

	total, weighted := 0.0, 0.0
	for i, x := range sorted {
		total += x
		weighted += float64(2*(i+1)-n-1) * x
	}
	if total == 0 {
		return 0
	}
	return weighted / (float64(n) * total)
}

// ScoreBimodalityDip returns the largest deviation of the ten-bin score
// histogram from the uniform density, 0 for one or fewer rounds or a
// zero-spread series
func (o *Optimizer) ScoreBimodalityDip() float64 {
	counts, ok := o.scoreHistogram()
	if !ok {
		return 0
	}
	uniform := 1.0 / histogramBins
	dip := 0.0
	for _, count := range counts {
		deviation := math.Abs(count/float64(len(o.scores)) - uniform)
		if deviation > dip {
			dip = deviation
		}
	}
	return dip
}

// ScoreBimodalityIndex returns the dip normalized by the score range
func (o *Optimizer) ScoreBimodalityIndex() float64 {
	dip := o.ScoreBimodalityDip()
	if dip == 0 {
		return 0
	}
	min, _ := stats.Min(o.scores)
	max, _ := stats.Max(o.scores)
	if max == min {
		return 0
	}
	return dip / (max - min)
}

// ScoreBimodalityRatio returns the dip normalized by the standard
// deviation
func (o *Optimizer) ScoreBimodalityRatio() float64 {
	dip := o.ScoreBimodalityDip()
	std := o.HistoryStdDev()
	if dip == 0 || std == 0 {
		return 0
	}
	return dip / std
}

// scoreHistogram bins the score series into ten equal-width buckets
// over [min, max]; a zero-spread or sub-two-entry series has no usable
// histogram
func (o *Optimizer) scoreHistogram() ([]float64, bool) {
	if len(o.scores) < 2 {
		return nil, false
	}
	min, _ := stats.Min(o.scores)
	max, _ := stats.Max(o.scores)
	if max == min {
		return nil, false
	}
	counts := make([]float64, histogramBins)
	width := (max - min) / histogramBins
	for _, x := range o.scores {
		bin := int((x - min) / width)
		if bin >= histogramBins {
			bin = histogramBins - 1
		}
		counts[bin]++
	}
	return counts, true
}

// histogramEntropy returns the Shannon entropy in bits of a ten-bin
// histogram over the given values
func histogramEntropy(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	min, _ := stats.Min(xs)
	max, _ := stats.Max(xs)
	if max == min {
		return 0
	}
	counts := make([]float64, histogramBins)
	width := (max - min) / histogramBins
	for _, x := range xs {
		bin := int((x - min) / width)
		if bin >= histogramBins {
			bin = histogramBins - 1
		}
		counts[bin]++
	}
	entropy := 0.0
	for _, count := range counts {
		if count == 0 {
			continue
		}
		p := count / float64(len(xs))
		entropy -= p * math.Log2(p)
	}
	return entropy
}

func derivatives(xs []float64) []float64 {
	if len(xs) < 2 {
		return []float64{}
	}
	out := make([]float64, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out[i-1] = xs[i] - xs[i-1]
	}
	return out
}

func countExtrema(xs []float64, match func(prev, curr, next float64) bool) int {
	count := 0
	for i := 1; i < len(xs)-1; i++ {
		if match(xs[i-1], xs[i], xs[i+1]) {
			count++
		}
	}
	return count
}

func longestRun(xs []float64, match func(float64) bool) int {
	longest, current := 0, 0
	for _, x := range xs {
		if match(x) {
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
