package models

import "time"

// Model is a configured provider target that runs can reference.
// The API key is stored encrypted; decryption happens once per model
// per run execution.
type Model struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:255;not null" json:"name"`
	Provider         string    `gorm:"size:32;not null" json:"provider"`
	ModelID          string    `gorm:"size:255;not null" json:"model_id"`
	Temperature      float64   `gorm:"default:1" json:"temperature"`
	MaxTokens        int       `gorm:"default:1024" json:"max_tokens"`
	Endpoint         string    `gorm:"size:512" json:"endpoint"`
	APIKeyCiphertext string    `gorm:"type:text" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HasCredential reports whether an encrypted API key is stored for the model.
func (m Model) HasCredential() bool {
	return m.APIKeyCiphertext != ""
}
