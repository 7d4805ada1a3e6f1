package dto

import "github.com/modelarena/arena-api/internal/models"

// ModelCreateRequest is the payload for registering a provider target.
type ModelCreateRequest struct {
	Name        string  `json:"name" validate:"required"`
	Provider    string  `json:"provider" validate:"required"`
	ModelID     string  `json:"model_id" validate:"required"`
	Temperature float64 `json:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `json:"max_tokens" validate:"gte=0"`
	Endpoint    string  `json:"endpoint" validate:"omitempty,url"`
	APIKey      string  `json:"api_key"`
}

// ModelUpdateRequest is the payload for updating a provider target. A nil
// APIKey leaves the stored credential untouched.
type ModelUpdateRequest struct {
	Name        *string  `json:"name"`
	Provider    *string  `json:"provider"`
	ModelID     *string  `json:"model_id"`
	Temperature *float64 `json:"temperature" validate:"omitempty,gte=0,lte=2"`
	MaxTokens   *int     `json:"max_tokens" validate:"omitempty,gte=0"`
	Endpoint    *string  `json:"endpoint" validate:"omitempty,url"`
	APIKey      *string  `json:"api_key"`
}

// ModelResponse represents a provider target to API consumers. The
// credential never leaves the service.
type ModelResponse struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Provider      string  `json:"provider"`
	ModelID       string  `json:"model_id"`
	Temperature   float64 `json:"temperature"`
	MaxTokens     int     `json:"max_tokens"`
	Endpoint      string  `json:"endpoint,omitempty"`
	HasCredential bool    `json:"has_credential"`
}

// NewModelResponse builds a response DTO from a model.
func NewModelResponse(model models.Model) ModelResponse {
	return ModelResponse{
		ID:            model.ID,
		Name:          model.Name,
		Provider:      model.Provider,
		ModelID:       model.ModelID,
		Temperature:   model.Temperature,
		MaxTokens:     model.MaxTokens,
		Endpoint:      model.Endpoint,
		HasCredential: model.HasCredential(),
	}
}
