package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/modelarena/arena-api/internal/dto"
	"github.com/modelarena/arena-api/internal/models"
	"github.com/modelarena/arena-api/internal/repository"
	"github.com/modelarena/arena-api/internal/secrets"
	"github.com/modelarena/arena-api/pkg/llm"
)

// ErrModelNotFound indicates the provider target does not exist.
var ErrModelNotFound = errors.New("model not found")

// ModelService manages configured provider targets. API keys are encrypted
// before they touch the database and are only ever decrypted for run
// execution, never for API consumers.
type ModelService interface {
	Create(ctx context.Context, payload dto.ModelCreateRequest) (dto.ModelResponse, error)
	Update(ctx context.Context, id uint, payload dto.ModelUpdateRequest) (dto.ModelResponse, error)
	Get(ctx context.Context, id uint) (dto.ModelResponse, error)
	List(ctx context.Context) ([]dto.ModelResponse, error)
	Delete(ctx context.Context, id uint) error
}

type modelService struct {
	repo      repository.ModelRepository
	keystore  *secrets.Keystore
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewModelService constructs the model configuration service.
func NewModelService(repo repository.ModelRepository, keystore *secrets.Keystore, validate *validator.Validate, logger zerolog.Logger) ModelService {
	return &modelService{
		repo:      repo,
		keystore:  keystore,
		validator: validate,
		logger:    logger.With().Str("component", "model_service").Logger(),
	}
}

func (s *modelService) Create(ctx context.Context, payload dto.ModelCreateRequest) (dto.ModelResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ModelResponse{}, err
	}

	provider := strings.ToLower(strings.TrimSpace(payload.Provider))
	if _, err := llm.ForProvider(provider); err != nil {
		return dto.ModelResponse{}, err
	}

	ciphertext, err := s.keystore.Encrypt(payload.APIKey)
	if err != nil {
		return dto.ModelResponse{}, err
	}

	model := models.Model{
		Name:             payload.Name,
		Provider:         provider,
		ModelID:          payload.ModelID,
		Temperature:      payload.Temperature,
		MaxTokens:        payload.MaxTokens,
		Endpoint:         payload.Endpoint,
		APIKeyCiphertext: ciphertext,
	}
	if err := s.repo.Create(ctx, &model); err != nil {
		return dto.ModelResponse{}, err
	}

	s.logger.Info().Uint("model_id", model.ID).Str("provider", provider).Msg("model registered")
	return dto.NewModelResponse(model), nil
}

func (s *modelService) Update(ctx context.Context, id uint, payload dto.ModelUpdateRequest) (dto.ModelResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ModelResponse{}, err
	}

	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ModelResponse{}, ErrModelNotFound
		}
		return dto.ModelResponse{}, err
	}

	if payload.Name != nil {
		model.Name = *payload.Name
	}
	if payload.Provider != nil {
		provider := strings.ToLower(strings.TrimSpace(*payload.Provider))
		if _, err := llm.ForProvider(provider); err != nil {
			return dto.ModelResponse{}, err
		}
		model.Provider = provider
	}
	if payload.ModelID != nil {
		model.ModelID = *payload.ModelID
	}
	if payload.Temperature != nil {
		model.Temperature = *payload.Temperature
	}
	if payload.MaxTokens != nil {
		model.MaxTokens = *payload.MaxTokens
	}
	if payload.Endpoint != nil {
		model.Endpoint = *payload.Endpoint
	}
	if payload.APIKey != nil {
		ciphertext, err := s.keystore.Encrypt(*payload.APIKey)
		if err != nil {
			return dto.ModelResponse{}, err
		}
		model.APIKeyCiphertext = ciphertext
	}

	if err := s.repo.Update(ctx, &model); err != nil {
		return dto.ModelResponse{}, err
	}

	return dto.NewModelResponse(model), nil
}

func (s *modelService) Get(ctx context.Context, id uint) (dto.ModelResponse, error) {
	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ModelResponse{}, ErrModelNotFound
		}
		return dto.ModelResponse{}, err
	}
	return dto.NewModelResponse(model), nil
}

func (s *modelService) List(ctx context.Context) ([]dto.ModelResponse, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ModelResponse, 0, len(items))
	for _, model := range items {
		responses = append(responses, dto.NewModelResponse(model))
	}
	return responses, nil
}

func (s *modelService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrModelNotFound
		}
		return err
	}
	return s.repo.Delete(ctx, id)
}
