package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/modelarena/arena-api/internal/models"
	"github.com/modelarena/arena-api/internal/repository"
)

type resultsFixture struct {
	db       *gorm.DB
	svc      ResultsService
	scoring  repository.ScoringRepository
	run      models.Run
	session  models.ScoringSession
	modelA   models.Model
	modelB   models.Model
	accuracy models.Criterion
	clarity  models.Criterion
	respA    models.Response
	respB    models.Response
}

func setupResultsFixture(t *testing.T) resultsFixture {
	t.Helper()
	db := setupTestDB(t)
	ctx := context.Background()

	modelRepo := repository.NewModelRepository(db)
	criterionRepo := repository.NewCriterionRepository(db)
	runRepo := repository.NewRunRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	scoringRepo := repository.NewScoringRepository(db)

	modelA := models.Model{Name: "model-a", Provider: "alpha", ModelID: "a-v1"}
	require.NoError(t, modelRepo.Create(ctx, &modelA))
	modelB := models.Model{Name: "model-b", Provider: "beta", ModelID: "b-v1"}
	require.NoError(t, modelRepo.Create(ctx, &modelB))

	accuracy := models.Criterion{Name: "accuracy", MaxScore: 10, Weight: 1}
	require.NoError(t, criterionRepo.Create(ctx, &accuracy))
	clarity := models.Criterion{Name: "clarity", MaxScore: 5, Weight: 2}
	require.NoError(t, criterionRepo.Create(ctx, &clarity))

	run := models.Run{
		Prompt:          "prompt",
		RepetitionCount: 1,
		Models:          []models.RunModel{{ModelID: modelA.ID}, {ModelID: modelB.ID}},
		Criteria:        []models.RunCriterion{{CriterionID: accuracy.ID}, {CriterionID: clarity.ID}},
	}
	require.NoError(t, runRepo.Create(ctx, &run))

	contentA := "answer from a"
	respA := models.Response{RunID: run.ID, ModelID: modelA.ID, Content: &contentA}
	require.NoError(t, responseRepo.Create(ctx, &respA))
	contentB := "answer from b"
	respB := models.Response{RunID: run.ID, ModelID: modelB.ID, Content: &contentB}
	require.NoError(t, responseRepo.Create(ctx, &respB))

	session := models.ScoringSession{RunID: run.ID}
	require.NoError(t, scoringRepo.CreateSession(ctx, &session))

	return resultsFixture{
		db:       db,
		svc:      NewResultsService(runRepo, scoringRepo, testLogger()),
		scoring:  scoringRepo,
		run:      run,
		session:  session,
		modelA:   modelA,
		modelB:   modelB,
		accuracy: accuracy,
		clarity:  clarity,
		respA:    respA,
		respB:    respB,
	}
}

func (fx resultsFixture) score(t *testing.T, responseID, criterionID uint, value float64) {
	t.Helper()
	score := models.Score{
		SessionID:   fx.session.ID,
		ResponseID:  responseID,
		CriterionID: criterionID,
		Value:       value,
	}
	require.NoError(t, fx.scoring.CreateScore(context.Background(), &score))
}

func (fx resultsFixture) addResponse(t *testing.T, modelID uint, content string) models.Response {
	t.Helper()
	response := models.Response{RunID: fx.run.ID, ModelID: modelID, Content: &content}
	require.NoError(t, repository.NewResponseRepository(fx.db).Create(context.Background(), &response))
	return response
}

func TestResultsComputeRanksModels(t *testing.T) {
	fx := setupResultsFixture(t)
	ctx := context.Background()

	fx.score(t, fx.respA.ID, fx.accuracy.ID, 8)
	fx.score(t, fx.respB.ID, fx.accuracy.ID, 6)
	fx.score(t, fx.respA.ID, fx.clarity.ID, 4)
	fx.score(t, fx.respB.ID, fx.clarity.ID, 3)

	results, err := fx.svc.Compute(ctx, fx.run.ID, fx.session.ID)
	require.NoError(t, err)
	require.Len(t, results.RankedModels, 2)

	first := results.RankedModels[0]
	require.Equal(t, fx.modelA.ID, first.ModelID)
	require.Len(t, first.Criteria, 2)
	require.InDelta(t, 8.0, first.Criteria[0].AvgRaw, 1e-9)
	require.InDelta(t, 80.0, first.Criteria[0].AvgNormalized, 1e-9)
	require.InDelta(t, 80.0, first.Criteria[0].WeightedAvg, 1e-9)
	require.InDelta(t, 4.0, first.Criteria[1].AvgRaw, 1e-9)
	require.InDelta(t, 80.0, first.Criteria[1].AvgNormalized, 1e-9)
	require.InDelta(t, 160.0, first.Criteria[1].WeightedAvg, 1e-9)
	require.InDelta(t, 240.0, first.TotalScore, 1e-9)

	second := results.RankedModels[1]
	require.Equal(t, fx.modelB.ID, second.ModelID)
	require.InDelta(t, 60.0, second.Criteria[0].WeightedAvg, 1e-9)
	require.InDelta(t, 120.0, second.Criteria[1].WeightedAvg, 1e-9)
	require.InDelta(t, 180.0, second.TotalScore, 1e-9)
}

// Averaging walkthrough: accuracy scored {8, 6} on a 0-10 scale at weight 1
// contributes 70, clarity scored {4, 3} on a 0-5 scale at weight 2
// contributes 140, total 210.
func TestResultsComputeAveragesRepeatedScores(t *testing.T) {
	fx := setupResultsFixture(t)
	ctx := context.Background()

	secondA := fx.addResponse(t, fx.modelA.ID, "second answer from a")

	fx.score(t, fx.respA.ID, fx.accuracy.ID, 8)
	fx.score(t, secondA.ID, fx.accuracy.ID, 6)
	fx.score(t, fx.respA.ID, fx.clarity.ID, 4)
	fx.score(t, secondA.ID, fx.clarity.ID, 3)

	results, err := fx.svc.Compute(ctx, fx.run.ID, fx.session.ID)
	require.NoError(t, err)
	require.Len(t, results.RankedModels, 1)

	model := results.RankedModels[0]
	require.Equal(t, fx.modelA.ID, model.ModelID)
	require.InDelta(t, 7.0, model.Criteria[0].AvgRaw, 1e-9)
	require.InDelta(t, 70.0, model.Criteria[0].AvgNormalized, 1e-9)
	require.InDelta(t, 70.0, model.Criteria[0].WeightedAvg, 1e-9)
	require.InDelta(t, 3.5, model.Criteria[1].AvgRaw, 1e-9)
	require.InDelta(t, 70.0, model.Criteria[1].AvgNormalized, 1e-9)
	require.InDelta(t, 140.0, model.Criteria[1].WeightedAvg, 1e-9)
	require.InDelta(t, 210.0, model.TotalScore, 1e-9)
	require.Len(t, model.Responses, 2)
}

func TestResultsComputeTieBreaksByModelID(t *testing.T) {
	fx := setupResultsFixture(t)
	ctx := context.Background()

	fx.score(t, fx.respA.ID, fx.accuracy.ID, 5)
	fx.score(t, fx.respB.ID, fx.accuracy.ID, 5)

	results, err := fx.svc.Compute(ctx, fx.run.ID, fx.session.ID)
	require.NoError(t, err)
	require.Len(t, results.RankedModels, 2)
	require.Equal(t, fx.modelA.ID, results.RankedModels[0].ModelID)
	require.Equal(t, fx.modelB.ID, results.RankedModels[1].ModelID)
}

func TestResultsComputeSkipsUnscoredModels(t *testing.T) {
	fx := setupResultsFixture(t)
	ctx := context.Background()

	fx.score(t, fx.respA.ID, fx.accuracy.ID, 7)

	results, err := fx.svc.Compute(ctx, fx.run.ID, fx.session.ID)
	require.NoError(t, err)
	require.Len(t, results.RankedModels, 1)
	require.Equal(t, fx.modelA.ID, results.RankedModels[0].ModelID)
}

func TestResultsComputeEmptySession(t *testing.T) {
	fx := setupResultsFixture(t)

	results, err := fx.svc.Compute(context.Background(), fx.run.ID, fx.session.ID)
	require.NoError(t, err)
	require.Empty(t, results.RankedModels)
}

func TestResultsComputeUnknownRun(t *testing.T) {
	fx := setupResultsFixture(t)

	_, err := fx.svc.Compute(context.Background(), fx.run.ID+999, fx.session.ID)
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestResultsComputeIsIdempotent(t *testing.T) {
	fx := setupResultsFixture(t)
	ctx := context.Background()

	fx.score(t, fx.respA.ID, fx.accuracy.ID, 9)
	fx.score(t, fx.respB.ID, fx.accuracy.ID, 2)

	first, err := fx.svc.Compute(ctx, fx.run.ID, fx.session.ID)
	require.NoError(t, err)
	second, err := fx.svc.Compute(ctx, fx.run.ID, fx.session.ID)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
