package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GoogleAdapter translates completion requests into Gemini generateContent
// calls.
type GoogleAdapter struct{}

// Provider returns the provider name this adapter serves.
func (GoogleAdapter) Provider() string { return "google" }

// Complete sends one generateContent request to the Gemini API and returns
// the uniform completion result.
func (a GoogleAdapter) Complete(parent context.Context, req CompletionRequest) (Completion, error) {
	tracer := otel.Tracer("github.com/modelarena/arena-api/pkg/llm/google")
	ctx, span := tracer.Start(parent, "google.complete", trace.WithAttributes(
		attribute.String("model", req.Model),
	))
	defer span.End()

	clientConfig := &genai.ClientConfig{
		APIKey:  req.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if req.Endpoint != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: req.Endpoint}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		callFailures.WithLabelValues("google", req.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, fmt.Errorf("google client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(clamp(req.Temperature, 0, 2))),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.Prompt, genai.RoleUser),
	}

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, req.Model, contents, config)
	latency := time.Since(start)
	callDuration.WithLabelValues("google", req.Model).Observe(latency.Seconds())
	if err != nil {
		callFailures.WithLabelValues("google", req.Model).Inc()
		wrapped := wrapGoogleError(err)
		span.RecordError(wrapped)
		span.SetStatus(codes.Error, wrapped.Error())
		return Completion{}, wrapped
	}

	content := resp.Text()
	if content == "" {
		err := fmt.Errorf("empty response from google")
		callFailures.WithLabelValues("google", req.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, err
	}

	tokens := googleTokenCount(resp.UsageMetadata, req.Prompt, content)

	completion := Completion{
		Content:    content,
		TokensUsed: tokens,
		LatencyMs:  latency.Milliseconds(),
	}
	if resp.UsageMetadata != nil {
		completion.Raw = map[string]interface{}{
			"prompt_tokens":     resp.UsageMetadata.PromptTokenCount,
			"candidates_tokens": resp.UsageMetadata.CandidatesTokenCount,
		}
	}

	return completion, nil
}

func googleTokenCount(usage *genai.GenerateContentResponseUsageMetadata, prompt, content string) int {
	if usage != nil && usage.PromptTokenCount+usage.CandidatesTokenCount > 0 {
		return int(usage.PromptTokenCount + usage.CandidatesTokenCount)
	}
	return estimateTokens(prompt) + estimateTokens(content)
}

func wrapGoogleError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" && len(apiErr.Errors) > 0 {
			message = apiErr.Errors[0].Message
		}
		return fmt.Errorf("google API error (%d): %s: %w", apiErr.Code, message, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("google request timeout: %w", err)
	}

	return fmt.Errorf("google complete: %w", err)
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
