package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/modelarena/arena-api/internal/dto"
	"github.com/modelarena/arena-api/internal/models"
	"github.com/modelarena/arena-api/internal/repository"
)

var (
	// ErrSessionNotFound indicates the scoring session does not exist.
	ErrSessionNotFound = errors.New("scoring session not found")
	// ErrResponseNotFound indicates the response does not exist.
	ErrResponseNotFound = errors.New("response not found")
	// ErrResponseNotInRun indicates the response belongs to a different run
	// than the session.
	ErrResponseNotInRun = errors.New("response does not belong to the session's run")
	// ErrResponseNotScoreable indicates the response recorded a provider
	// failure and is excluded from scoring.
	ErrResponseNotScoreable = errors.New("errored responses cannot be scored")
	// ErrCriterionNotInRun indicates the criterion is outside the run's
	// frozen criterion snapshot.
	ErrCriterionNotInRun = errors.New("criterion is not part of the run")
	// ErrDuplicateScore indicates the (session, response, criterion) slot is
	// already taken.
	ErrDuplicateScore = errors.New("response already scored for this criterion in this session")
)

// ScoringService exposes the blind-scoring lifecycle over a run's responses.
type ScoringService interface {
	CreateSession(ctx context.Context, runID uint) (dto.SessionResponse, error)
	ListSessions(ctx context.Context, runID uint) ([]dto.SessionResponse, error)
	SessionScores(ctx context.Context, sessionID uint) ([]dto.ScoreResponse, error)
	BlindPool(ctx context.Context, sessionID uint) ([]dto.BlindResponse, error)
	ScoreResponse(ctx context.Context, sessionID uint, payload dto.ScoreRequest) (dto.ScoreResponse, error)
}

type scoringService struct {
	sessions  repository.ScoringRepository
	runs      repository.RunRepository
	responses repository.ResponseRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewScoringService constructs the scoring service.
func NewScoringService(scoringRepo repository.ScoringRepository, runRepo repository.RunRepository, responseRepo repository.ResponseRepository, validate *validator.Validate, logger zerolog.Logger) ScoringService {
	return &scoringService{
		sessions:  scoringRepo,
		runs:      runRepo,
		responses: responseRepo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "scoring_service").Logger(),
	}
}

// CreateSession opens a new, empty blind-scoring pass over the run. Sessions
// are independent; any number may coexist per run.
func (s *scoringService) CreateSession(ctx context.Context, runID uint) (dto.SessionResponse, error) {
	if _, err := s.runs.GetByID(ctx, runID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionResponse{}, ErrRunNotFound
		}
		return dto.SessionResponse{}, err
	}

	session := models.ScoringSession{RunID: runID}
	if err := s.sessions.CreateSession(ctx, &session); err != nil {
		return dto.SessionResponse{}, err
	}

	s.logger.Info().Uint("run_id", runID).Uint("session_id", session.ID).Msg("scoring session created")
	return dto.NewSessionResponse(session), nil
}

func (s *scoringService) ListSessions(ctx context.Context, runID uint) ([]dto.SessionResponse, error) {
	sessions, err := s.sessions.ListSessionsByRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, dto.NewSessionResponse(session))
	}
	return items, nil
}

func (s *scoringService) SessionScores(ctx context.Context, sessionID uint) ([]dto.ScoreResponse, error) {
	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	scores, err := s.sessions.ListScoresBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ScoreResponse, 0, len(scores))
	for _, score := range scores {
		items = append(items, dto.NewScoreResponse(score))
	}
	return items, nil
}

// BlindPool returns the session's scoreable responses in uniform random
// order with model identity withheld. Errored responses never enter the
// pool. Shuffling is presentation-only; stored rows are untouched.
func (s *scoringService) BlindPool(ctx context.Context, sessionID uint) ([]dto.BlindResponse, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	responses, err := s.responses.ListByRun(ctx, session.RunID)
	if err != nil {
		return nil, err
	}

	pool := make([]dto.BlindResponse, 0, len(responses))
	for _, response := range responses {
		if !response.Scoreable() {
			continue
		}
		content := ""
		if response.Content != nil {
			content = *response.Content
		}
		pool = append(pool, dto.BlindResponse{
			ResponseID: response.ID,
			Content:    content,
			TokensUsed: response.TokensUsed,
			LatencyMs:  response.LatencyMs,
		})
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	return pool, nil
}

// ScoreResponse records one rating. The (session, response, criterion) slot
// is single-use: a second submission is rejected rather than silently
// admitted into the aggregator's mean.
func (s *scoringService) ScoreResponse(ctx context.Context, sessionID uint, payload dto.ScoreRequest) (dto.ScoreResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScoreResponse{}, err
	}

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScoreResponse{}, ErrSessionNotFound
		}
		return dto.ScoreResponse{}, err
	}

	response, err := s.responses.GetByID(ctx, payload.ResponseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScoreResponse{}, ErrResponseNotFound
		}
		return dto.ScoreResponse{}, err
	}
	if response.RunID != session.RunID {
		return dto.ScoreResponse{}, ErrResponseNotInRun
	}
	if !response.Scoreable() {
		return dto.ScoreResponse{}, ErrResponseNotScoreable
	}

	run, err := s.runs.GetByID(ctx, session.RunID)
	if err != nil {
		return dto.ScoreResponse{}, err
	}
	if !runHasCriterion(run, payload.CriterionID) {
		return dto.ScoreResponse{}, ErrCriterionNotInRun
	}

	exists, err := s.sessions.ScoreExists(ctx, sessionID, payload.ResponseID, payload.CriterionID)
	if err != nil {
		return dto.ScoreResponse{}, err
	}
	if exists {
		return dto.ScoreResponse{}, ErrDuplicateScore
	}

	score := models.Score{
		SessionID:   sessionID,
		ResponseID:  payload.ResponseID,
		CriterionID: payload.CriterionID,
		Value:       payload.Value,
		Notes:       strings.TrimSpace(s.sanitizer.Sanitize(payload.Notes)),
	}
	if err := s.sessions.CreateScore(ctx, &score); err != nil {
		// Two concurrent submissions can both pass the existence check; the
		// composite unique index catches the loser.
		if isDuplicateScoreError(err) {
			return dto.ScoreResponse{}, ErrDuplicateScore
		}
		return dto.ScoreResponse{}, err
	}

	return dto.NewScoreResponse(score), nil
}

func isDuplicateScoreError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

func runHasCriterion(run models.Run, criterionID uint) bool {
	for _, link := range run.Criteria {
		if link.CriterionID == criterionID {
			return true
		}
	}
	return false
}
