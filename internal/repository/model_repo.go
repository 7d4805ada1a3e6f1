package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/modelarena/arena-api/internal/models"
)

// ModelRepository defines data operations for configured provider targets.
type ModelRepository interface {
	List(ctx context.Context) ([]models.Model, error)
	GetByID(ctx context.Context, id uint) (models.Model, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Model, error)
	Create(ctx context.Context, model *models.Model) error
	Update(ctx context.Context, model *models.Model) error
	Delete(ctx context.Context, id uint) error
}

type modelRepository struct {
	db *gorm.DB
}

// NewModelRepository instantiates the repository.
func NewModelRepository(db *gorm.DB) ModelRepository {
	return &modelRepository{db: db}
}

func (r *modelRepository) List(ctx context.Context) ([]models.Model, error) {
	var items []models.Model
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *modelRepository) GetByID(ctx context.Context, id uint) (models.Model, error) {
	var model models.Model
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		return models.Model{}, err
	}
	return model, nil
}

func (r *modelRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Model, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var items []models.Model
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *modelRepository) Create(ctx context.Context, model *models.Model) error {
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *modelRepository) Update(ctx context.Context, model *models.Model) error {
	return r.db.WithContext(ctx).Save(model).Error
}

func (r *modelRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Model{}, id).Error
}
