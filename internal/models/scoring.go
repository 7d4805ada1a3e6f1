package models

import "time"

// ScoringSession is one blind-scoring pass over a run's responses. A run may
// be scored any number of independent times.
type ScoringSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RunID     uint      `gorm:"not null;index" json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	Scores    []Score   `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"scores,omitempty"`
}

// Score is a single (session, response, criterion) rating. The composite
// unique index keeps a response from being scored twice for the same
// criterion within one session.
type Score struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   uint      `gorm:"not null;index;uniqueIndex:uniq_session_response_criterion" json:"session_id"`
	ResponseID  uint      `gorm:"not null;uniqueIndex:uniq_session_response_criterion" json:"response_id"`
	CriterionID uint      `gorm:"not null;uniqueIndex:uniq_session_response_criterion" json:"criterion_id"`
	Value       float64   `gorm:"not null" json:"value"`
	Notes       string    `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}
