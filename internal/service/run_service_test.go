package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/modelarena/arena-api/internal/dto"
	"github.com/modelarena/arena-api/internal/models"
	"github.com/modelarena/arena-api/internal/repository"
	"github.com/modelarena/arena-api/pkg/llm"
)

type stubCompleter struct {
	content string
	err     error
}

func (s stubCompleter) Provider() string { return "stub" }

func (s stubCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (llm.Completion, error) {
	if s.err != nil {
		return llm.Completion{}, s.err
	}
	return llm.Completion{Content: s.content, TokensUsed: 7, LatencyMs: 12}, nil
}

func stubResolver(adapters map[string]llm.Completer) CompleterResolver {
	return func(provider string) (llm.Completer, error) {
		adapter, ok := adapters[provider]
		if !ok {
			return nil, llm.ErrUnknownProvider
		}
		return adapter, nil
	}
}

func newTestRunService(t *testing.T, resolver CompleterResolver) (RunService, repository.ModelRepository) {
	t.Helper()
	db := setupTestDB(t)
	modelRepo := repository.NewModelRepository(db)
	runRepo := repository.NewRunRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	svc := NewRunService(runRepo, responseRepo, nil, nil, resolver, testValidator(), testLogger(), RunExecutorConfig{})
	return svc, modelRepo
}

func createModel(t *testing.T, repo repository.ModelRepository, name, provider string) models.Model {
	t.Helper()
	model := models.Model{Name: name, Provider: provider, ModelID: name + "-v1"}
	require.NoError(t, repo.Create(context.Background(), &model))
	return model
}

func TestRunExecutePersistsOneRowPerRepetition(t *testing.T) {
	resolver := stubResolver(map[string]llm.Completer{
		"alpha": stubCompleter{content: "answer a"},
		"beta":  stubCompleter{content: "answer b"},
	})
	svc, modelRepo := newTestRunService(t, resolver)

	first := createModel(t, modelRepo, "first", "alpha")
	second := createModel(t, modelRepo, "second", "beta")

	created, err := svc.Create(context.Background(), dto.RunCreateRequest{
		Prompt:          "compare yourselves",
		RepetitionCount: 3,
		ModelIDs:        []uint{first.ID, second.ID},
	})
	require.NoError(t, err)

	detail, err := svc.Execute(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, detail.Responses, 6)

	perModel := map[uint]int{}
	for _, response := range detail.Responses {
		perModel[response.ModelID]++
		require.NotNil(t, response.Content)
		require.Nil(t, response.ErrorMsg)
	}
	require.Equal(t, 3, perModel[first.ID])
	require.Equal(t, 3, perModel[second.ID])
}

func TestRunExecuteIsolatesFailures(t *testing.T) {
	resolver := stubResolver(map[string]llm.Completer{
		"alpha": stubCompleter{content: "fine"},
		"beta":  stubCompleter{err: errors.New("upstream exploded")},
	})
	svc, modelRepo := newTestRunService(t, resolver)

	healthy := createModel(t, modelRepo, "healthy", "alpha")
	broken := createModel(t, modelRepo, "broken", "beta")

	created, err := svc.Create(context.Background(), dto.RunCreateRequest{
		Prompt:          "prompt",
		RepetitionCount: 2,
		ModelIDs:        []uint{healthy.ID, broken.ID},
	})
	require.NoError(t, err)

	detail, err := svc.Execute(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, detail.Responses, 4)

	for _, response := range detail.Responses {
		if response.ModelID == healthy.ID {
			require.NotNil(t, response.Content)
			require.Nil(t, response.ErrorMsg)
			continue
		}
		require.Nil(t, response.Content)
		require.NotNil(t, response.ErrorMsg)
		require.Contains(t, *response.ErrorMsg, "upstream exploded")
	}
}

func TestRunExecuteRecordsUnknownProviderPerCall(t *testing.T) {
	resolver := stubResolver(map[string]llm.Completer{})
	svc, modelRepo := newTestRunService(t, resolver)

	model := createModel(t, modelRepo, "mystery", "unheard-of")

	created, err := svc.Create(context.Background(), dto.RunCreateRequest{
		Prompt:          "prompt",
		RepetitionCount: 2,
		ModelIDs:        []uint{model.ID},
	})
	require.NoError(t, err)

	detail, err := svc.Execute(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, detail.Responses, 2)
	for _, response := range detail.Responses {
		require.NotNil(t, response.ErrorMsg)
		require.Nil(t, response.Content)
	}
}

func TestRunExecuteEmptyModelSetIsNoOp(t *testing.T) {
	svc, _ := newTestRunService(t, stubResolver(nil))

	created, err := svc.Create(context.Background(), dto.RunCreateRequest{Prompt: "lonely"})
	require.NoError(t, err)
	require.Equal(t, 1, created.RepetitionCount)

	detail, err := svc.Execute(context.Background(), created.ID)
	require.NoError(t, err)
	require.Empty(t, detail.Responses)
}

func TestRunExecuteUnknownRun(t *testing.T) {
	svc, _ := newTestRunService(t, stubResolver(nil))

	_, err := svc.Execute(context.Background(), 4242)
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunCreateRequiresPrompt(t *testing.T) {
	svc, _ := newTestRunService(t, stubResolver(nil))

	_, err := svc.Create(context.Background(), dto.RunCreateRequest{})
	require.Error(t, err)
}
