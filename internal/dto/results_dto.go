package dto

// RunResults is the derived, read-only ranked comparison for one
// (run, session) pair. It is recomputed on every request, never persisted.
type RunResults struct {
	RunID        uint          `json:"run_id"`
	SessionID    uint          `json:"session_id"`
	RankedModels []ModelResult `json:"ranked_models"`
}

// ModelResult is one model's aggregated standing within a session. Models
// without any score in the session are absent from the ranking entirely.
type ModelResult struct {
	ModelID    uint              `json:"model_id"`
	ModelName  string            `json:"model_name"`
	Provider   string            `json:"provider"`
	TotalScore float64           `json:"total_score"`
	Criteria   []CriterionResult `json:"criteria"`
	Responses  []ScoredResponse  `json:"responses"`
}

// CriterionResult is the per-criterion aggregation step for one model.
type CriterionResult struct {
	CriterionID   uint    `json:"criterion_id"`
	CriterionName string  `json:"criterion_name"`
	AvgRaw        float64 `json:"avg_raw"`
	AvgNormalized float64 `json:"avg_normalized"`
	WeightedAvg   float64 `json:"weighted_avg"`
}

// ScoredResponse is a response that received at least one score in the
// session, attached for traceability.
type ScoredResponse struct {
	ResponseID uint    `json:"response_id"`
	Content    *string `json:"content"`
	TokensUsed *int    `json:"tokens_used"`
	LatencyMs  *int64  `json:"latency_ms"`
}
