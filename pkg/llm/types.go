package llm

import "context"

// CompletionRequest carries everything an adapter needs for one provider
// call. Adapters hold no per-call state of their own; the credential and
// endpoint travel with the request.
type CompletionRequest struct {
	Model       string
	Prompt      string
	APIKey      string
	Endpoint    string
	Temperature float64
	MaxTokens   int
}

// Completion is the uniform result shape returned by every adapter.
type Completion struct {
	Content    string
	TokensUsed int
	LatencyMs  int64
	Raw        map[string]interface{}
}

// Completer is the uniform call contract over one LLM provider's API.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
	Provider() string
}

// estimateTokens approximates a token count when the provider omits usage
// metadata. Four characters per token is the usual rough cut.
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}
