package models

import "time"

// RefinementSession groups the rounds of one optimizer run over a
// domain
type RefinementSession struct {
	ID         string    `json:"id"`
	Domain     string    `json:"domain"`
	StopReason string    `json:"stop_reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
