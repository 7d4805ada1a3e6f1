package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/modelarena/arena-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Model{},
		&models.Criterion{},
		&models.Run{},
		&models.RunModel{},
		&models.RunCriterion{},
		&models.Response{},
		&models.ScoringSession{},
		&models.Score{},
	))
	return db
}

func TestRunRepositoryCreatePersistsSnapshotLinks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	model := models.Model{Name: "m", Provider: "openai", ModelID: "m-1"}
	require.NoError(t, NewModelRepository(db).Create(ctx, &model))
	criterion := models.Criterion{Name: "accuracy", MaxScore: 10, Weight: 1}
	require.NoError(t, NewCriterionRepository(db).Create(ctx, &criterion))

	repo := NewRunRepository(db)
	run := models.Run{
		Prompt:          "hello",
		RepetitionCount: 2,
		Models:          []models.RunModel{{ModelID: model.ID}},
		Criteria:        []models.RunCriterion{{CriterionID: criterion.ID}},
	}
	require.NoError(t, repo.Create(ctx, &run))
	require.NotZero(t, run.ID)

	loaded, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Models, 1)
	require.Equal(t, "m", loaded.Models[0].Model.Name)
	require.Len(t, loaded.Criteria, 1)
	require.Equal(t, "accuracy", loaded.Criteria[0].Criterion.Name)
}

func TestRunRepositorySnapshotSurvivesConfigurationEdits(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	criterionRepo := NewCriterionRepository(db)
	criterion := models.Criterion{Name: "accuracy", MaxScore: 10, Weight: 1}
	require.NoError(t, criterionRepo.Create(ctx, &criterion))

	repo := NewRunRepository(db)
	run := models.Run{
		Prompt:          "frozen",
		RepetitionCount: 1,
		Criteria:        []models.RunCriterion{{CriterionID: criterion.ID}},
	}
	require.NoError(t, repo.Create(ctx, &run))

	// Edit after the run: the link row still resolves to the criterion and
	// the aggregator reads the current definition through it.
	criterion.MaxScore = 100
	require.NoError(t, criterionRepo.Update(ctx, &criterion))

	loaded, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Criteria, 1)
	require.Equal(t, criterion.ID, loaded.Criteria[0].CriterionID)
}

func TestRunRepositoryGetWithDetailsOrdersResponses(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	repo := NewRunRepository(db)
	run := models.Run{Prompt: "ordered", RepetitionCount: 1}
	require.NoError(t, repo.Create(ctx, &run))

	responseRepo := NewResponseRepository(db)
	for i := 0; i < 3; i++ {
		content := fmt.Sprintf("answer %d", i)
		response := models.Response{RunID: run.ID, ModelID: 1, Content: &content}
		require.NoError(t, responseRepo.Create(ctx, &response))
	}

	loaded, err := repo.GetWithDetails(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Responses, 3)
	for i := 1; i < len(loaded.Responses); i++ {
		require.LessOrEqual(t, loaded.Responses[i-1].ID, loaded.Responses[i].ID)
	}
}

func TestRunRepositoryListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	repo := NewRunRepository(db)
	for i := 0; i < 3; i++ {
		run := models.Run{Prompt: fmt.Sprintf("run %d", i), RepetitionCount: 1}
		require.NoError(t, repo.Create(ctx, &run))
	}

	runs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
}

func TestRunRepositoryGetUnknown(t *testing.T) {
	db := setupTestDB(t)

	_, err := NewRunRepository(db).GetByID(context.Background(), 12345)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
