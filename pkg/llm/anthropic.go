package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AnthropicAdapter translates completion requests into Anthropic Messages
// API calls.
type AnthropicAdapter struct{}

// Provider returns the provider name this adapter serves.
func (AnthropicAdapter) Provider() string { return "anthropic" }

// Complete sends one message request to Anthropic and returns the uniform
// completion result.
func (a AnthropicAdapter) Complete(parent context.Context, req CompletionRequest) (Completion, error) {
	tracer := otel.Tracer("github.com/modelarena/arena-api/pkg/llm/anthropic")
	ctx, span := tracer.Start(parent, "anthropic.complete", trace.WithAttributes(
		attribute.String("model", req.Model),
	))
	defer span.End()

	opts := []option.RequestOption{}
	if req.APIKey != "" {
		opts = append(opts, option.WithAPIKey(req.APIKey))
	}
	if req.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(req.Endpoint))
	}
	client := anthropic.NewClient(opts...)

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}

	start := time.Now()
	message, err := client.Messages.New(ctx, params)
	latency := time.Since(start)
	callDuration.WithLabelValues("anthropic", req.Model).Observe(latency.Seconds())
	if err != nil {
		callFailures.WithLabelValues("anthropic", req.Model).Inc()
		wrapped := wrapAnthropicError(err)
		span.RecordError(wrapped)
		span.SetStatus(codes.Error, wrapped.Error())
		return Completion{}, wrapped
	}

	var text strings.Builder
	for _, block := range message.Content {
		switch content := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(content.Text)
		}
	}

	content := text.String()
	if content == "" {
		err := fmt.Errorf("empty response from anthropic")
		callFailures.WithLabelValues("anthropic", req.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, err
	}

	tokens := int(message.Usage.InputTokens + message.Usage.OutputTokens)
	if tokens == 0 {
		tokens = estimateTokens(req.Prompt) + estimateTokens(content)
	}

	return Completion{
		Content:    content,
		TokensUsed: tokens,
		LatencyMs:  latency.Milliseconds(),
		Raw: map[string]interface{}{
			"input_tokens":  message.Usage.InputTokens,
			"output_tokens": message.Usage.OutputTokens,
			"stop_reason":   message.StopReason,
		},
	}, nil
}

func wrapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401:
			return fmt.Errorf("anthropic authentication failed: %w", err)
		case 429:
			return fmt.Errorf("anthropic rate limit exceeded: %w", err)
		case 500, 502, 503, 504:
			return fmt.Errorf("anthropic server error (%d): %w", apiErr.StatusCode, err)
		default:
			return fmt.Errorf("anthropic API error (%d): %w", apiErr.StatusCode, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("anthropic request timeout: %w", err)
	}

	return fmt.Errorf("anthropic complete: %w", err)
}
