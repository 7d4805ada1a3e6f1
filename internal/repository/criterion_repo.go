package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/modelarena/arena-api/internal/models"
)

// CriterionRepository defines data operations for rating criteria.
type CriterionRepository interface {
	List(ctx context.Context) ([]models.Criterion, error)
	GetByID(ctx context.Context, id uint) (models.Criterion, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Criterion, error)
	Create(ctx context.Context, criterion *models.Criterion) error
	Update(ctx context.Context, criterion *models.Criterion) error
	Delete(ctx context.Context, id uint) error
}

type criterionRepository struct {
	db *gorm.DB
}

// NewCriterionRepository instantiates the repository.
func NewCriterionRepository(db *gorm.DB) CriterionRepository {
	return &criterionRepository{db: db}
}

func (r *criterionRepository) List(ctx context.Context) ([]models.Criterion, error) {
	var items []models.Criterion
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *criterionRepository) GetByID(ctx context.Context, id uint) (models.Criterion, error) {
	var criterion models.Criterion
	if err := r.db.WithContext(ctx).First(&criterion, id).Error; err != nil {
		return models.Criterion{}, err
	}
	return criterion, nil
}

func (r *criterionRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Criterion, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var items []models.Criterion
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *criterionRepository) Create(ctx context.Context, criterion *models.Criterion) error {
	return r.db.WithContext(ctx).Create(criterion).Error
}

func (r *criterionRepository) Update(ctx context.Context, criterion *models.Criterion) error {
	return r.db.WithContext(ctx).Save(criterion).Error
}

func (r *criterionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Criterion{}, id).Error
}
