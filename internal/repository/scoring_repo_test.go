package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/modelarena/arena-api/internal/models"
)

func TestScoringRepositorySessionRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	runRepo := NewRunRepository(db)
	run := models.Run{Prompt: "p", RepetitionCount: 1}
	require.NoError(t, runRepo.Create(ctx, &run))

	repo := NewScoringRepository(db)
	session := models.ScoringSession{RunID: run.ID}
	require.NoError(t, repo.CreateSession(ctx, &session))

	loaded, err := repo.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, run.ID, loaded.RunID)

	sessions, err := repo.ListSessionsByRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
}

func TestScoringRepositoryScoreExists(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	repo := NewScoringRepository(db)
	session := models.ScoringSession{RunID: 1}
	require.NoError(t, repo.CreateSession(ctx, &session))

	exists, err := repo.ScoreExists(ctx, session.ID, 10, 20)
	require.NoError(t, err)
	require.False(t, exists)

	score := models.Score{SessionID: session.ID, ResponseID: 10, CriterionID: 20, Value: 5}
	require.NoError(t, repo.CreateScore(ctx, &score))

	exists, err = repo.ScoreExists(ctx, session.ID, 10, 20)
	require.NoError(t, err)
	require.True(t, exists)

	// A different criterion in the same session is a distinct slot.
	exists, err = repo.ScoreExists(ctx, session.ID, 10, 21)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestScoringRepositoryUniqueIndexRejectsDuplicateRows(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	repo := NewScoringRepository(db)
	session := models.ScoringSession{RunID: 1}
	require.NoError(t, repo.CreateSession(ctx, &session))

	first := models.Score{SessionID: session.ID, ResponseID: 1, CriterionID: 1, Value: 5}
	require.NoError(t, repo.CreateScore(ctx, &first))

	duplicate := models.Score{SessionID: session.ID, ResponseID: 1, CriterionID: 1, Value: 7}
	require.ErrorIs(t, repo.CreateScore(ctx, &duplicate), gorm.ErrDuplicatedKey)
}

func TestScoringRepositoryListSessionsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	repo := NewScoringRepository(db)
	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		session := models.ScoringSession{RunID: 1, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.CreateSession(ctx, &session))
	}

	sessions, err := repo.ListSessionsByRun(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	for i := 1; i < len(sessions); i++ {
		require.True(t, sessions[i-1].CreatedAt.After(sessions[i].CreatedAt))
	}
}

func TestScoringRepositoryListScoresOldestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	repo := NewScoringRepository(db)
	session := models.ScoringSession{RunID: 1}
	require.NoError(t, repo.CreateSession(ctx, &session))

	base := time.Now().UTC().Truncate(time.Second)
	// Insert newest-first so an ordered read cannot pass by insertion order.
	for i := 3; i >= 1; i-- {
		score := models.Score{
			SessionID:   session.ID,
			ResponseID:  uint(i),
			CriterionID: 1,
			Value:       float64(i),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.CreateScore(ctx, &score))
	}

	scores, err := repo.ListScoresBySession(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, scores, 3)
	for i := 1; i < len(scores); i++ {
		require.True(t, scores[i].CreatedAt.After(scores[i-1].CreatedAt))
	}
	require.Equal(t, uint(1), scores[0].ResponseID)
	require.Equal(t, uint(3), scores[2].ResponseID)
}
