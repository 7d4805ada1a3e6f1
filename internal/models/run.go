package models

import "time"

// Run is an immutable unit of work: one prompt dispatched to a frozen set of
// models a fixed number of times each. The model and criterion associations
// are snapshots stored as link rows, not live joins to current configuration.
type Run struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Prompt          string         `gorm:"type:text;not null" json:"prompt"`
	RepetitionCount int            `gorm:"not null;default:1" json:"repetition_count"`
	CreatedAt       time.Time      `json:"created_at"`
	Models          []RunModel     `gorm:"constraint:OnDelete:CASCADE" json:"models,omitempty"`
	Criteria        []RunCriterion `gorm:"constraint:OnDelete:CASCADE" json:"criteria,omitempty"`
	Responses       []Response     `gorm:"constraint:OnDelete:CASCADE" json:"responses,omitempty"`
}

// RunModel links a run to one model frozen at run creation time.
type RunModel struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	RunID   uint  `gorm:"not null;index" json:"run_id"`
	ModelID uint  `gorm:"not null" json:"model_id"`
	Model   Model `gorm:"constraint:OnUpdate:CASCADE" json:"model"`
}

// RunCriterion links a run to one criterion frozen at run creation time.
type RunCriterion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RunID       uint      `gorm:"not null;index" json:"run_id"`
	CriterionID uint      `gorm:"not null" json:"criterion_id"`
	Criterion   Criterion `gorm:"constraint:OnUpdate:CASCADE" json:"criterion"`
}
