package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/modelarena/arena-api/internal/dto"
	"github.com/modelarena/arena-api/internal/repository"
	"github.com/modelarena/arena-api/internal/secrets"
	"github.com/modelarena/arena-api/pkg/llm"
)

func newTestModelService(t *testing.T) (ModelService, repository.ModelRepository) {
	t.Helper()
	db := setupTestDB(t)
	keystore, err := secrets.New("test-master-key")
	require.NoError(t, err)
	repo := repository.NewModelRepository(db)
	return NewModelService(repo, keystore, testValidator(), testLogger()), repo
}

func TestModelCreateEncryptsCredential(t *testing.T) {
	svc, repo := newTestModelService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.ModelCreateRequest{
		Name:     "gpt",
		Provider: "OpenAI",
		ModelID:  "gpt-4o",
		APIKey:   "sk-plain-secret",
	})
	require.NoError(t, err)
	require.Equal(t, "openai", created.Provider)
	require.True(t, created.HasCredential)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.APIKeyCiphertext)
	require.NotContains(t, stored.APIKeyCiphertext, "sk-plain-secret")
}

func TestModelCreateRejectsUnknownProvider(t *testing.T) {
	svc, _ := newTestModelService(t)

	_, err := svc.Create(context.Background(), dto.ModelCreateRequest{
		Name:     "mystery",
		Provider: "aol",
		ModelID:  "m-1",
	})
	require.ErrorIs(t, err, llm.ErrUnknownProvider)
}

func TestModelUpdatePreservesCredentialWhenOmitted(t *testing.T) {
	svc, repo := newTestModelService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.ModelCreateRequest{
		Name:     "claude",
		Provider: "anthropic",
		ModelID:  "claude-3",
		APIKey:   "sk-ant",
	})
	require.NoError(t, err)

	before, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)

	newName := "claude renamed"
	updated, err := svc.Update(ctx, created.ID, dto.ModelUpdateRequest{Name: &newName})
	require.NoError(t, err)
	require.Equal(t, newName, updated.Name)
	require.True(t, updated.HasCredential)

	after, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, before.APIKeyCiphertext, after.APIKeyCiphertext)
}

func TestModelGetUnknown(t *testing.T) {
	svc, _ := newTestModelService(t)

	_, err := svc.Get(context.Background(), 99)
	require.ErrorIs(t, err, ErrModelNotFound)
}

func TestModelDelete(t *testing.T) {
	svc, _ := newTestModelService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.ModelCreateRequest{
		Name:     "gemini",
		Provider: "google",
		ModelID:  "gemini-pro",
	})
	require.NoError(t, err)
	require.False(t, created.HasCredential)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.ErrorIs(t, svc.Delete(ctx, created.ID), ErrModelNotFound)
}
