package models

import "time"

// Criterion is a named rating dimension used during scoring and aggregation.
// Runs snapshot criterion IDs at creation time, so later edits never alter
// how past runs are interpreted.
type Criterion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	MaxScore  float64   `gorm:"not null" json:"max_score"`
	Weight    float64   `gorm:"default:1" json:"weight"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
