package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/modelarena/arena-api/internal/dto"
	"github.com/modelarena/arena-api/internal/repository"
)

func newTestCriterionService(t *testing.T) CriterionService {
	t.Helper()
	repo := repository.NewCriterionRepository(setupTestDB(t))
	return NewCriterionService(repo, testValidator(), testLogger())
}

func TestCriterionCreateDefaultsWeight(t *testing.T) {
	svc := newTestCriterionService(t)

	created, err := svc.Create(context.Background(), dto.CriterionCreateRequest{
		Name:     "accuracy",
		MaxScore: 10,
	})
	require.NoError(t, err)
	require.Equal(t, 1.0, created.Weight)
}

func TestCriterionCreateHonoursExplicitWeight(t *testing.T) {
	svc := newTestCriterionService(t)

	weight := 2.5
	created, err := svc.Create(context.Background(), dto.CriterionCreateRequest{
		Name:     "clarity",
		MaxScore: 5,
		Weight:   &weight,
	})
	require.NoError(t, err)
	require.Equal(t, 2.5, created.Weight)
}

func TestCriterionCreateRequiresPositiveMaxScore(t *testing.T) {
	svc := newTestCriterionService(t)

	_, err := svc.Create(context.Background(), dto.CriterionCreateRequest{Name: "bad"})
	require.Error(t, err)
}

func TestCriterionUpdateAndDelete(t *testing.T) {
	svc := newTestCriterionService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CriterionCreateRequest{Name: "depth", MaxScore: 10})
	require.NoError(t, err)

	newMax := 20.0
	updated, err := svc.Update(ctx, created.ID, dto.CriterionUpdateRequest{MaxScore: &newMax})
	require.NoError(t, err)
	require.Equal(t, 20.0, updated.MaxScore)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrCriterionNotFound)
}
