package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForProviderResolvesKnownProviders(t *testing.T) {
	for _, name := range []string{"openai", "anthropic", "google"} {
		adapter, err := ForProvider(name)
		require.NoError(t, err)
		require.Equal(t, name, adapter.Provider())
	}
}

func TestForProviderNormalisesName(t *testing.T) {
	adapter, err := ForProvider("  OpenAI ")
	require.NoError(t, err)
	require.Equal(t, "openai", adapter.Provider())
}

func TestForProviderFailsFastOnUnknownName(t *testing.T) {
	_, err := ForProvider("parrot")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownProvider))
}

func TestEstimateTokensRoundsUp(t *testing.T) {
	require.Equal(t, 0, estimateTokens(""))
	require.Equal(t, 1, estimateTokens("abc"))
	require.Equal(t, 2, estimateTokens("abcdefgh"))
}
