// Package learning tunes extraction aggressiveness from historical
// refinement outcomes. The adapter is a pure-feedback state machine:
// it never mutates the generator; the generator polls the extraction
// hint instead.
package learning

import (
	"fmt"

	"github.com/ontoforge/ontoforge-go/pkg/models"
)

// Threshold bounds: the extraction-confidence threshold is always kept
// inside [MinThreshold, MaxThreshold], whatever the feedback history.
const (
	MinThreshold = 0.1
	MaxThreshold = 0.9
)

// Adapter consumes round outcomes and exposes an adaptive
// extraction-confidence threshold. Not safe for concurrent use.
type Adapter struct {
	domain           string
	baseThreshold    float64
	currentThreshold float64
	emaAlpha         float64
	minSamples       int

	feedback      []models.FeedbackRecord
	actionSuccess map[string]float64
	actionCount   map[string]int
}

// NewAdapter creates an adapter for the given domain. baseThreshold
// must lie in [MinThreshold, MaxThreshold], emaAlpha in (0,1], and
// minSamples must be positive; violations are construction errors.
func NewAdapter(domain string, baseThreshold, emaAlpha float64, minSamples int) (*Adapter, error) {
	if baseThreshold < MinThreshold || baseThreshold > MaxThreshold {
		return nil, fmt.Errorf("base threshold %f outside [%g,%g]", baseThreshold, MinThreshold, MaxThreshold)
	}
	if emaAlpha <= 0 || emaAlpha > 1 {
		return nil, fmt.Errorf("ema alpha %f outside (0,1]", emaAlpha)
	}
	if minSamples < 1 {
		return nil, fmt.Errorf("min samples must be positive, got %d", minSamples)
	}
	return &Adapter{
		domain:           domain,
		baseThreshold:    baseThreshold,
		currentThreshold: baseThreshold,
		emaAlpha:         emaAlpha,
		minSamples:       minSamples,
		feedback:         []models.FeedbackRecord{},
		actionSuccess:    map[string]float64{},
		actionCount:      map[string]int{},
	}, nil
}

// Domain returns the domain this adapter was built for
func (a *Adapter) Domain() string { return a.domain }

// CurrentThreshold returns the adaptive threshold before the
// action-success correction ExtractionHint applies
func (a *Adapter) CurrentThreshold() float64 { return a.currentThreshold }

// FeedbackCount returns the number of recorded feedback entries
func (a *Adapter) FeedbackCount() int { return len(a.feedback) }

// Feedback returns a copy of the append-only feedback history
func (a *Adapter) Feedback() []models.FeedbackRecord {
	out := make([]models.FeedbackRecord, len(a.feedback))
	copy(out, a.feedback)
	return out
}

// ApplyFeedback records one refinement outcome. The score is clamped
// to [0,1] defensively; per-action success sums and counts are
// updated; once the history reaches minSamples the threshold moves by
// EMA toward the target derived from the recent mean score.
func (a *Adapter) ApplyFeedback(finalScore float64, actions []string, confidenceAtExtraction *float64) {
	score := models.Clamp01(finalScore)
	record := models.FeedbackRecord{
		FinalScore:  score,
		ActionTypes: append([]string{}, actions...),
	}
	if confidenceAtExtraction != nil {
		c := models.Clamp01(*confidenceAtExtraction)
		record.ConfidenceAtExtraction = &c
	}
	a.feedback = append(a.feedback, record)

	for _, action := range actions {
		a.actionSuccess[action] += score
		a.actionCount[action]++
	}

	if len(a.feedback) >= a.minSamples {
		target := scoreToThreshold(a.recentMean())
		a.currentThreshold = clampThreshold(a.emaAlpha*target + (1-a.emaAlpha)*a.currentThreshold)
	}
}

// ExtractionHint returns the threshold the generator should use for
// its next extraction: the current threshold nudged by how well past
// actions have worked out, clamped to [MinThreshold, MaxThreshold].
func (a *Adapter) ExtractionHint() float64 {
	return clampThreshold(a.currentThreshold + 0.05*(0.5-a.meanActionSuccess()))
}

// ActionSuccessRates returns the mean outcome score per action type
func (a *Adapter) ActionSuccessRates() map[string]float64 {
	rates := make(map[string]float64, len(a.actionCount))
	for action, count := range a.actionCount {
		if count > 0 {
			rates[action] = a.actionSuccess[action] / float64(count)
		}
	}
	return rates
}

// scoreToThreshold maps outcome quality to extraction aggressiveness:
// quality 1.0 yields a permissive 0.2 threshold, quality 0.0 a strict
// 0.9
func scoreToThreshold(mean float64) float64 {
	return 0.9 - 0.7*models.Clamp01(mean)
}

// recentMean averages the newest minSamples feedback scores
func (a *Adapter) recentMean() float64 {
	if len(a.feedback) == 0 {
		return 0
	}
	window := a.minSamples
	if window > len(a.feedback) {
		window = len(a.feedback)
	}
	sum := 0.0
	for _, record := range a.feedback[len(a.feedback)-window:] {
		sum += record.FinalScore
	}
	return sum / float64(window)
}

// meanActionSuccess averages the per-action success rates; with no
// recorded actions it is neutral 0.5 so the hint correction vanishes
func (a *Adapter) meanActionSuccess() float64 {
	if len(a.actionCount) == 0 {
		return 0.5
	}
	sum := 0.0
	for _, rate := range a.ActionSuccessRates() {
		sum += rate
	}
	return sum / float64(len(a.actionCount))
}

func clampThreshold(v float64) float64 {
	if v < MinThreshold {
		return MinThreshold
	}
	if v > MaxThreshold {
		return MaxThreshold
	}
	return v
}
