package learning

import (
	"encoding/json"
	"fmt"

	"github.com/ontoforge/ontoforge-go/pkg/models"
)

// Record is the versioned persistence shape of an adapter. The flat
// key layout is the wire contract; decoded values must round-trip
// bit-for-bit.
type Record struct {
	Domain           string                  `json:"domain"`
	BaseThreshold    float64                 `json:"base_threshold"`
	CurrentThreshold float64                 `json:"current_threshold"`
	EMAAlpha         float64                 `json:"ema_alpha"`
	MinSamples       int                     `json:"min_samples"`
	Feedback         []models.FeedbackRecord `json:"feedback"`
	ActionSuccess    map[string]float64      `json:"action_success"`
	ActionCount      map[string]int          `json:"action_count"`
}

// ToRecord captures the full adapter state
func (a *Adapter) ToRecord() Record {
	record := Record{
		Domain:           a.domain,
		BaseThreshold:    a.baseThreshold,
		CurrentThreshold: a.currentThreshold,
		EMAAlpha:         a.emaAlpha,
		MinSamples:       a.minSamples,
		Feedback:         make([]models.FeedbackRecord, len(a.feedback)),
		ActionSuccess:    make(map[string]float64, len(a.actionSuccess)),
		ActionCount:      make(map[string]int, len(a.actionCount)),
	}
	copy(record.Feedback, a.feedback)
	for k, v := range a.actionSuccess {
		record.ActionSuccess[k] = v
	}
	for k, v := range a.actionCount {
		record.ActionCount[k] = v
	}
	return record
}

// FromRecord rebuilds an adapter from a persisted record, validating
// the same construction invariants as NewAdapter
func FromRecord(record Record) (*Adapter, error) {
	a, err := NewAdapter(record.Domain, record.BaseThreshold, record.EMAAlpha, record.MinSamples)
	if err != nil {
		return nil, fmt.Errorf("failed to restore adapter: %w", err)
	}
	a.currentThreshold = clampThreshold(record.CurrentThreshold)
	if record.Feedback != nil {
		a.feedback = append(a.feedback[:0], record.Feedback...)
	}
	for k, v := range record.ActionSuccess {
		a.actionSuccess[k] = v
	}
	for k, v := range record.ActionCount {
		a.actionCount[k] = v
	}
	return a, nil
}

// Serialize encodes the adapter state as JSON bytes
func (a *Adapter) Serialize() ([]byte, error) {
	data, err := json.Marshal(a.ToRecord())
	if err != nil {
		return nil, fmt.Errorf("failed to serialize adapter: %w", err)
	}
	return data, nil
}

// Deserialize rebuilds an adapter from JSON bytes produced by
// Serialize
func Deserialize(data []byte) (*Adapter, error) {
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to deserialize adapter: %w", err)
	}
	return FromRecord(record)
}
