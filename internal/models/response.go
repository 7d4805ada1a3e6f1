package models

import (
	"time"

	"gorm.io/datatypes"
)

// Response records the outcome of one provider invocation within a run.
// Content and ErrorMsg are mutually exclusive: exactly one is set. Rows are
// created once per (run, model, repetition) and never updated.
type Response struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	RunID      uint              `gorm:"not null;index" json:"run_id"`
	ModelID    uint              `gorm:"not null" json:"model_id"`
	Content    *string           `gorm:"type:text" json:"content"`
	TokensUsed *int              `json:"tokens_used"`
	LatencyMs  *int64            `json:"latency_ms"`
	ErrorMsg   *string           `gorm:"type:text" json:"error_msg"`
	Raw        datatypes.JSONMap `json:"raw,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Scoreable reports whether the response can enter a blind-scoring pool.
// Errored responses are excluded from scoring entirely.
func (r Response) Scoreable() bool {
	return r.ErrorMsg == nil
}
