package dto

import "github.com/modelarena/arena-api/internal/models"

// CriterionCreateRequest is the payload for defining a rating criterion.
// Weight defaults to 1 when omitted.
type CriterionCreateRequest struct {
	Name     string   `json:"name" validate:"required"`
	MaxScore float64  `json:"max_score" validate:"required,gt=0"`
	Weight   *float64 `json:"weight" validate:"omitempty,gt=0"`
}

// CriterionUpdateRequest is the payload for updating a criterion. Edits never
// retroactively change completed runs; the aggregator reads definitions
// through the run's frozen criterion snapshot.
type CriterionUpdateRequest struct {
	Name     *string  `json:"name"`
	MaxScore *float64 `json:"max_score" validate:"omitempty,gt=0"`
	Weight   *float64 `json:"weight" validate:"omitempty,gt=0"`
}

// CriterionResponse represents a criterion to API consumers.
type CriterionResponse struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	MaxScore float64 `json:"max_score"`
	Weight   float64 `json:"weight"`
}

// NewCriterionResponse builds a response DTO from a criterion.
func NewCriterionResponse(criterion models.Criterion) CriterionResponse {
	return CriterionResponse{
		ID:       criterion.ID,
		Name:     criterion.Name,
		MaxScore: criterion.MaxScore,
		Weight:   criterion.Weight,
	}
}
