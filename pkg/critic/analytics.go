package critic

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/ontoforge/ontoforge-go/pkg/models"
)

// Comparative analytics over CriticScores. All functions are pure;
// degenerate inputs (empty lists, all-zero dimension vectors) resolve
// to the documented neutral value, commonly 0.0. Only out-of-range
// percentile arguments produce an error.

// DimensionMean returns the arithmetic mean of the six dimensions
func DimensionMean(s models.CriticScore) float64 {
	mean, err := stats.Mean(s.Dimensions())
	if err != nil {
		return 0
	}
	return mean
}

// DimensionMin returns the smallest dimension value
func DimensionMin(s models.CriticScore) float64 {
	min, err := stats.Min(s.Dimensions())
	if err != nil {
		return 0
	}
	return min
}

// DimensionMax returns the largest dimension value
func DimensionMax(s models.CriticScore) float64 {
	max, err := stats.Max(s.Dimensions())
	if err != nil {
		return 0
	}
	return max
}

// DimensionRange returns max minus min
func DimensionRange(s models.CriticScore) float64 {
	return DimensionMax(s) - DimensionMin(s)
}

// DimensionSum returns the sum of all dimensions
func DimensionSum(s models.CriticScore) float64 {
	sum, err := stats.Sum(s.Dimensions())
	if err != nil {
		return 0
	}
	return sum
}

// DimensionSpread returns the population standard deviation of the
// dimension vector
func DimensionSpread(s models.CriticScore) float64 {
	spread, err := stats.StandardDeviationPopulation(s.Dimensions())
	if err != nil {
		return 0
	}
	return spread
}

// DimensionHarmonicMean returns the harmonic mean of the dimensions,
// or 0 when any dimension is zero or negative
func DimensionHarmonicMean(s models.CriticScore) float64 {
	for _, d := range s.Dimensions() {
		if d <= 0 {
			return 0
		}
	}
	hm, err := stats.HarmonicMean(s.Dimensions())
	if err != nil {
		return 0
	}
	return hm
}

// DimensionGeometricMean returns the geometric mean of the dimensions,
// or 0 when any dimension is zero or negative
func DimensionGeometricMean(s models.CriticScore) float64 {
	for _, d := range s.Dimensions() {
		if d <= 0 {
			return 0
		}
	}
	gm, err := stats.GeometricMean(s.Dimensions())
	if err != nil {
		return 0
	}
	return gm
}

// DimensionCoefficientOfVariation returns spread divided by mean,
// or 0 when the mean is zero
func DimensionCoefficientOfVariation(s models.CriticScore) float64 {
	mean := DimensionMean(s)
	if mean == 0 {
		return 0
	}
	return DimensionSpread(s) / mean
}

// DimensionEntropy returns the Shannon entropy (bits) of the
// normalized dimension vector. A perfectly uniform vector yields
// log2(6); an all-zero vector yields 0.
func DimensionEntropy(s models.CriticScore) float64 {
	sum := DimensionSum(s)
	if sum == 0 {
		return 0
	}
	entropy := 0.0
	for _, d := range s.Dimensions() {
		if d <= 0 {
			continue
		}
		p := d / sum
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// DimensionCosineSimilarity returns the cosine similarity of two
// dimension vectors, or 0 when either vector is all-zero
func DimensionCosineSimilarity(a, b models.CriticScore) float64 {
	av, bv := a.Dimensions(), b.Dimensions()
	dot, na, nb := 0.0, 0.0, 0.0
	for i := range av {
		dot += av[i] * bv[i]
		na += av[i] * av[i]
		nb += bv[i] * bv[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// ScoreDistance returns the Euclidean distance between two dimension
// vectors
func ScoreDistance(a, b models.CriticScore) float64 {
	av, bv := a.Dimensions(), b.Dimensions()
	sum := 0.0
	for i := range av {
		diff := av[i] - bv[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// TopDimension returns the name and value of the largest dimension;
// ties resolve to the first dimension in canonical order
func TopDimension(s models.CriticScore) (string, float64) {
	names := models.DimensionNames()
	dims := s.Dimensions()
	bestIdx := 0
	for i := 1; i < len(dims); i++ {
		if dims[i] > dims[bestIdx] {
			bestIdx = i
		}
	}
	return names[bestIdx], dims[bestIdx]
}

// BottomDimension returns the name and value of the smallest
// dimension; ties resolve to the first dimension in canonical order
func BottomDimension(s models.CriticScore) (string, float64) {
	names := models.DimensionNames()
	dims := s.Dimensions()
	worstIdx := 0
	for i := 1; i < len(dims); i++ {
		if dims[i] < dims[worstIdx] {
			worstIdx = i
		}
	}
	return names[worstIdx], dims[worstIdx]
}

// TopKDimensions returns the names of the k largest dimensions in
// descending value order, ties broken by canonical dimension order
func TopKDimensions(s models.CriticScore, k int) []string {
	if k <= 0 {
		return []string{}
	}
	names := models.DimensionNames()
	dims := s.Dimensions()
	idx := make([]int, len(dims))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return dims[idx[a]] > dims[idx[b]] })
	if k > len(idx) {
		k = len(idx)
	}
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = names[idx[i]]
	}
	return out
}

// PercentileOverall returns the p-th percentile of the overall values
// of a score list. p outside [0,100] is a contract violation and
// produces an error; an empty list resolves to 0.0.
func PercentileOverall(scores []models.CriticScore, p float64) (float64, error) {
	if p < 0 || p > 100 {
		return 0, fmt.Errorf("percentile must be within [0,100], got %f", p)
	}
	if len(scores) == 0 {
		return 0, nil
	}
	overalls := make([]float64, len(scores))
	for i, s := range scores {
		overalls[i] = s.Overall
	}
	if p == 0 {
		min, _ := stats.Min(overalls)
		return min, nil
	}
	value, err := stats.Percentile(overalls, p)
	if err != nil {
		return 0, nil
	}
	return value, nil
}

// ScoreReliability returns 1 minus the normalized standard deviation
// of the overall values across repeated scorings of the same ontology.
// Fewer than two samples yield the neutral 0.0.
func ScoreReliability(scores []models.CriticScore) float64 {
	if len(scores) < 2 {
		return 0
	}
	overalls := make([]float64, len(scores))
	for i, s := range scores {
		overalls[i] = s.Overall
	}
	std, err := stats.StandardDeviationPopulation(overalls)
	if err != nil {
		return 0
	}
	// Scores live in [0,1]; the worst-case population std is 0.5.
	return models.Clamp01(1 - std/0.5)
}

// ScoreLetterGrade maps an overall score to a coarse letter grade
func ScoreLetterGrade(s models.CriticScore) string {
	switch {
	case s.Overall >= 0.9:
		return "A"
	case s.Overall >= 0.8:
		return "B"
	case s.Overall >= 0.7:
		return "C"
	case s.Overall >= 0.6:
		return "D"
	default:
		return "F"
	}
}
