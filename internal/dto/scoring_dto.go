package dto

import (
	"time"

	"github.com/modelarena/arena-api/internal/models"
)

// SessionResponse represents a scoring session to API consumers.
type SessionResponse struct {
	ID        uint      `json:"id"`
	RunID     uint      `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BlindResponse is one scoreable response as presented to the human rater.
// It deliberately carries no model identity; presentation order is a uniform
// random permutation of the pool.
type BlindResponse struct {
	ResponseID uint   `json:"response_id"`
	Content    string `json:"content"`
	TokensUsed *int   `json:"tokens_used"`
	LatencyMs  *int64 `json:"latency_ms"`
}

// ScoreRequest is the payload for recording one rating.
type ScoreRequest struct {
	ResponseID  uint    `json:"response_id" validate:"required,gt=0"`
	CriterionID uint    `json:"criterion_id" validate:"required,gt=0"`
	Value       float64 `json:"value" validate:"gte=0"`
	Notes       string  `json:"notes"`
}

// ScoreResponse represents a persisted score.
type ScoreResponse struct {
	ID          uint      `json:"id"`
	SessionID   uint      `json:"session_id"`
	ResponseID  uint      `json:"response_id"`
	CriterionID uint      `json:"criterion_id"`
	Value       float64   `json:"value"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewSessionResponse builds a session DTO.
func NewSessionResponse(session models.ScoringSession) SessionResponse {
	return SessionResponse{
		ID:        session.ID,
		RunID:     session.RunID,
		CreatedAt: session.CreatedAt,
	}
}

// NewScoreResponse builds a score DTO.
func NewScoreResponse(score models.Score) ScoreResponse {
	return ScoreResponse{
		ID:          score.ID,
		SessionID:   score.SessionID,
		ResponseID:  score.ResponseID,
		CriterionID: score.CriterionID,
		Value:       score.Value,
		Notes:       score.Notes,
		CreatedAt:   score.CreatedAt,
	}
}
