package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/modelarena/arena-api/internal/dto"
	"github.com/modelarena/arena-api/internal/models"
	"github.com/modelarena/arena-api/internal/repository"
)

// ErrCriterionNotFound indicates the criterion does not exist.
var ErrCriterionNotFound = errors.New("criterion not found")

// CriterionService manages rating criterion definitions. Past runs are
// insulated from edits by their criterion snapshots.
type CriterionService interface {
	Create(ctx context.Context, payload dto.CriterionCreateRequest) (dto.CriterionResponse, error)
	Update(ctx context.Context, id uint, payload dto.CriterionUpdateRequest) (dto.CriterionResponse, error)
	Get(ctx context.Context, id uint) (dto.CriterionResponse, error)
	List(ctx context.Context) ([]dto.CriterionResponse, error)
	Delete(ctx context.Context, id uint) error
}

type criterionService struct {
	repo      repository.CriterionRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCriterionService constructs the criterion service.
func NewCriterionService(repo repository.CriterionRepository, validate *validator.Validate, logger zerolog.Logger) CriterionService {
	return &criterionService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "criterion_service").Logger(),
	}
}

func (s *criterionService) Create(ctx context.Context, payload dto.CriterionCreateRequest) (dto.CriterionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CriterionResponse{}, err
	}

	weight := 1.0
	if payload.Weight != nil {
		weight = *payload.Weight
	}

	criterion := models.Criterion{
		Name:     payload.Name,
		MaxScore: payload.MaxScore,
		Weight:   weight,
	}
	if err := s.repo.Create(ctx, &criterion); err != nil {
		return dto.CriterionResponse{}, err
	}

	s.logger.Info().Uint("criterion_id", criterion.ID).Str("name", criterion.Name).Msg("criterion created")
	return dto.NewCriterionResponse(criterion), nil
}

func (s *criterionService) Update(ctx context.Context, id uint, payload dto.CriterionUpdateRequest) (dto.CriterionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CriterionResponse{}, err
	}

	criterion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CriterionResponse{}, ErrCriterionNotFound
		}
		return dto.CriterionResponse{}, err
	}

	if payload.Name != nil {
		criterion.Name = *payload.Name
	}
	if payload.MaxScore != nil {
		criterion.MaxScore = *payload.MaxScore
	}
	if payload.Weight != nil {
		criterion.Weight = *payload.Weight
	}

	if err := s.repo.Update(ctx, &criterion); err != nil {
		return dto.CriterionResponse{}, err
	}

	return dto.NewCriterionResponse(criterion), nil
}

func (s *criterionService) Get(ctx context.Context, id uint) (dto.CriterionResponse, error) {
	criterion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CriterionResponse{}, ErrCriterionNotFound
		}
		return dto.CriterionResponse{}, err
	}
	return dto.NewCriterionResponse(criterion), nil
}

func (s *criterionService) List(ctx context.Context) ([]dto.CriterionResponse, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CriterionResponse, 0, len(items))
	for _, criterion := range items {
		responses = append(responses, dto.NewCriterionResponse(criterion))
	}
	return responses, nil
}

func (s *criterionService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCriterionNotFound
		}
		return err
	}
	return s.repo.Delete(ctx, id)
}
