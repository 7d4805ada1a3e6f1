package dto

import (
	"time"

	"github.com/modelarena/arena-api/internal/models"
)

// RunCreateRequest is the payload for creating a run. Both snapshot sets may
// be empty; a run with zero models executes as a no-op.
type RunCreateRequest struct {
	Prompt          string `json:"prompt" validate:"required"`
	RepetitionCount int    `json:"repetition_count" validate:"omitempty,gte=1"`
	ModelIDs        []uint `json:"model_ids" validate:"omitempty,dive,gt=0"`
	CriterionIDs    []uint `json:"criterion_ids" validate:"omitempty,dive,gt=0"`
}

// RunResponse is the summary view of a run.
type RunResponse struct {
	ID              uint      `json:"id"`
	Prompt          string    `json:"prompt"`
	RepetitionCount int       `json:"repetition_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// RunDetailResponse denormalizes a run with its frozen model and criterion
// sets and all persisted responses into one view object.
type RunDetailResponse struct {
	RunResponse
	Models    []ModelResponse     `json:"models"`
	Criteria  []CriterionResponse `json:"criteria"`
	Responses []ModelCallResponse `json:"responses"`
}

// ModelCallResponse represents one provider invocation outcome.
type ModelCallResponse struct {
	ID         uint      `json:"id"`
	RunID      uint      `json:"run_id"`
	ModelID    uint      `json:"model_id"`
	Content    *string   `json:"content"`
	TokensUsed *int      `json:"tokens_used"`
	LatencyMs  *int64    `json:"latency_ms"`
	ErrorMsg   *string   `json:"error_msg"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewRunResponse builds a summary DTO from a run.
func NewRunResponse(run models.Run) RunResponse {
	return RunResponse{
		ID:              run.ID,
		Prompt:          run.Prompt,
		RepetitionCount: run.RepetitionCount,
		CreatedAt:       run.CreatedAt,
	}
}

// NewRunDetailResponse builds the denormalized view DTO from a preloaded run.
func NewRunDetailResponse(run models.Run) RunDetailResponse {
	detail := RunDetailResponse{
		RunResponse: NewRunResponse(run),
		Models:      make([]ModelResponse, 0, len(run.Models)),
		Criteria:    make([]CriterionResponse, 0, len(run.Criteria)),
		Responses:   make([]ModelCallResponse, 0, len(run.Responses)),
	}

	for _, link := range run.Models {
		detail.Models = append(detail.Models, NewModelResponse(link.Model))
	}
	for _, link := range run.Criteria {
		detail.Criteria = append(detail.Criteria, NewCriterionResponse(link.Criterion))
	}
	for _, response := range run.Responses {
		detail.Responses = append(detail.Responses, NewModelCallResponse(response))
	}

	return detail
}

// NewModelCallResponse builds a response DTO from a persisted response row.
func NewModelCallResponse(response models.Response) ModelCallResponse {
	return ModelCallResponse{
		ID:         response.ID,
		RunID:      response.RunID,
		ModelID:    response.ModelID,
		Content:    response.Content,
		TokensUsed: response.TokensUsed,
		LatencyMs:  response.LatencyMs,
		ErrorMsg:   response.ErrorMsg,
		CreatedAt:  response.CreatedAt,
	}
}
