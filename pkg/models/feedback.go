package models

// FeedbackRecord captures one completed refinement outcome consumed by
// the learning adapter. Records are immutable once appended and are
// ordered by record index.
type FeedbackRecord struct {
	FinalScore             float64  `json:"final_score"`
	ActionTypes            []string `json:"action_types"`
	ConfidenceAtExtraction *float64 `json:"confidence_at_extraction,omitempty"`
}
