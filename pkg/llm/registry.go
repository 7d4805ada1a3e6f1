// Package llm provides a uniform completion contract over heterogeneous LLM
// provider APIs. Each adapter is a stateless translation layer between
// CompletionRequest and one provider's wire protocol; clients are constructed
// per call from the request configuration so adapters never share mutable
// state across calls.
package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownProvider indicates a provider name with no registered adapter.
// This is a configuration error, not a network failure.
var ErrUnknownProvider = errors.New("unknown provider")

var adapters = map[string]Completer{
	"openai":    OpenAIAdapter{},
	"anthropic": AnthropicAdapter{},
	"google":    GoogleAdapter{},
}

// ForProvider resolves a provider name to its adapter. The mapping is total:
// every recognised name yields exactly one adapter and unrecognised names
// fail fast.
func ForProvider(name string) (Completer, error) {
	adapter, ok := adapters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return adapter, nil
}

// Providers lists the registered provider names.
func Providers() []string {
	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	return names
}
