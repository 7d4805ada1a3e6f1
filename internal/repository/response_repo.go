package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/modelarena/arena-api/internal/models"
)

// ResponseRepository defines data operations for provider invocation
// outcomes. Responses are insert-only; each outcome is persisted as a single
// independent statement so partial run completion is always a valid state.
type ResponseRepository interface {
	Create(ctx context.Context, response *models.Response) error
	GetByID(ctx context.Context, id uint) (models.Response, error)
	ListByRun(ctx context.Context, runID uint) ([]models.Response, error)
}

type responseRepository struct {
	db *gorm.DB
}

// NewResponseRepository instantiates the repository.
func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) Create(ctx context.Context, response *models.Response) error {
	return r.db.WithContext(ctx).Create(response).Error
}

func (r *responseRepository) GetByID(ctx context.Context, id uint) (models.Response, error) {
	var response models.Response
	if err := r.db.WithContext(ctx).First(&response, id).Error; err != nil {
		return models.Response{}, err
	}
	return response, nil
}

func (r *responseRepository) ListByRun(ctx context.Context, runID uint) ([]models.Response, error) {
	var responses []models.Response
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("created_at ASC").
		Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}
