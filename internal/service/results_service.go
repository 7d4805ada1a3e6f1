package service

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/modelarena/arena-api/internal/dto"
	"github.com/modelarena/arena-api/internal/models"
	"github.com/modelarena/arena-api/internal/repository"
)

// ResultsService computes the ranked comparison for one (run, session) pair.
// Results are a pure projection over stored rows: recomputed on every call,
// never cached, so they always reflect the current score set.
type ResultsService interface {
	Compute(ctx context.Context, runID, sessionID uint) (dto.RunResults, error)
}

type resultsService struct {
	runs    repository.RunRepository
	scoring repository.ScoringRepository
	logger  zerolog.Logger
}

// NewResultsService constructs the results service.
func NewResultsService(runRepo repository.RunRepository, scoringRepo repository.ScoringRepository, logger zerolog.Logger) ResultsService {
	return &resultsService{
		runs:    runRepo,
		scoring: scoringRepo,
		logger:  logger.With().Str("component", "results_service").Logger(),
	}
}

// Compute aggregates the session's scores into a ranked result set. A
// missing run is the only error condition; a missing session or a session
// with no scores yields an empty ranking. Models without any score in the
// session are absent from the ranking rather than ranked at zero.
func (s *resultsService) Compute(ctx context.Context, runID, sessionID uint) (dto.RunResults, error) {
	run, err := s.runs.GetWithDetails(ctx, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RunResults{}, ErrRunNotFound
		}
		return dto.RunResults{}, err
	}

	results := dto.RunResults{
		RunID:        runID,
		SessionID:    sessionID,
		RankedModels: []dto.ModelResult{},
	}

	scores, err := s.scoring.ListScoresBySession(ctx, sessionID)
	if err != nil {
		return dto.RunResults{}, err
	}
	if len(scores) == 0 {
		return results, nil
	}

	responseByID := make(map[uint]models.Response, len(run.Responses))
	for _, response := range run.Responses {
		responseByID[response.ID] = response
	}
	criterionByID := make(map[uint]models.Criterion, len(run.Criteria))
	for _, link := range run.Criteria {
		criterionByID[link.CriterionID] = link.Criterion
	}
	modelByID := make(map[uint]models.Model, len(run.Models))
	for _, link := range run.Models {
		modelByID[link.ModelID] = link.Model
	}

	// Group score values by (model, criterion) and track which responses
	// received at least one score, per model. Scores pointing outside the
	// run's responses or criterion snapshot are ignored.
	grouped := make(map[uint]map[uint][]float64)
	scoredResponses := make(map[uint]map[uint]struct{})
	for _, score := range scores {
		response, ok := responseByID[score.ResponseID]
		if !ok {
			continue
		}
		if _, ok := criterionByID[score.CriterionID]; !ok {
			continue
		}

		if grouped[response.ModelID] == nil {
			grouped[response.ModelID] = make(map[uint][]float64)
			scoredResponses[response.ModelID] = make(map[uint]struct{})
		}
		grouped[response.ModelID][score.CriterionID] = append(grouped[response.ModelID][score.CriterionID], score.Value)
		scoredResponses[response.ModelID][score.ResponseID] = struct{}{}
	}

	for _, link := range run.Models {
		byCriterion, ok := grouped[link.ModelID]
		if !ok {
			continue
		}
		model := modelByID[link.ModelID]

		result := dto.ModelResult{
			ModelID:   link.ModelID,
			ModelName: model.Name,
			Provider:  model.Provider,
			Criteria:  make([]dto.CriterionResult, 0, len(byCriterion)),
			Responses: make([]dto.ScoredResponse, 0, len(scoredResponses[link.ModelID])),
		}

		// Criteria follow the run's snapshot order for determinism.
		for _, criterionLink := range run.Criteria {
			values, ok := byCriterion[criterionLink.CriterionID]
			if !ok {
				continue
			}
			criterion := criterionByID[criterionLink.CriterionID]

			avgRaw := mean(values)
			avgNormalized := avgRaw * 100 / criterion.MaxScore
			weighted := avgNormalized * criterion.Weight

			result.Criteria = append(result.Criteria, dto.CriterionResult{
				CriterionID:   criterion.ID,
				CriterionName: criterion.Name,
				AvgRaw:        avgRaw,
				AvgNormalized: avgNormalized,
				WeightedAvg:   weighted,
			})
			result.TotalScore += weighted
		}

		// Scored responses follow response creation order.
		for _, response := range run.Responses {
			if response.ModelID != link.ModelID {
				continue
			}
			if _, ok := scoredResponses[link.ModelID][response.ID]; !ok {
				continue
			}
			result.Responses = append(result.Responses, dto.ScoredResponse{
				ResponseID: response.ID,
				Content:    response.Content,
				TokensUsed: response.TokensUsed,
				LatencyMs:  response.LatencyMs,
			})
		}

		results.RankedModels = append(results.RankedModels, result)
	}

	// Rank by total score descending; equal totals fall back to model ID
	// ascending so the ordering is fully deterministic.
	sort.SliceStable(results.RankedModels, func(i, j int) bool {
		a, b := results.RankedModels[i], results.RankedModels[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		return a.ModelID < b.ModelID
	})

	return results, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values))
}
