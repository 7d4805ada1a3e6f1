package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OpenAIAdapter translates completion requests into OpenAI chat completion
// calls. A custom endpoint routes the call to any OpenAI-compatible server.
type OpenAIAdapter struct{}

// Provider returns the provider name this adapter serves.
func (OpenAIAdapter) Provider() string { return "openai" }

// Complete sends one chat completion request to OpenAI and returns the
// uniform completion result.
func (a OpenAIAdapter) Complete(parent context.Context, req CompletionRequest) (Completion, error) {
	tracer := otel.Tracer("github.com/modelarena/arena-api/pkg/llm/openai")
	ctx, span := tracer.Start(parent, "openai.complete", trace.WithAttributes(
		attribute.String("model", req.Model),
	))
	defer span.End()

	config := openai.DefaultConfig(req.APIKey)
	if req.Endpoint != "" {
		config.BaseURL = req.Endpoint
	}
	client := openai.NewClientWithConfig(config)

	request := openai.ChatCompletionRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
	}

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, request)
	latency := time.Since(start)
	callDuration.WithLabelValues("openai", req.Model).Observe(latency.Seconds())
	if err != nil {
		callFailures.WithLabelValues("openai", req.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, fmt.Errorf("openai complete: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		callFailures.WithLabelValues("openai", req.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, err
	}

	content := resp.Choices[0].Message.Content
	tokens := resp.Usage.TotalTokens
	if tokens == 0 {
		tokens = estimateTokens(req.Prompt) + estimateTokens(content)
	}

	return Completion{
		Content:    content,
		TokensUsed: tokens,
		LatencyMs:  latency.Milliseconds(),
		Raw: map[string]interface{}{
			"usage":         resp.Usage,
			"finish_reason": resp.Choices[0].FinishReason,
		},
	}, nil
}
