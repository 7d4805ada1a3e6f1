package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/modelarena/arena-api/internal/models"
)

// RunRepository defines data operations for runs and their snapshot links.
type RunRepository interface {
	Create(ctx context.Context, run *models.Run) error
	GetByID(ctx context.Context, id uint) (models.Run, error)
	GetWithDetails(ctx context.Context, id uint) (models.Run, error)
	List(ctx context.Context) ([]models.Run, error)
}

type runRepository struct {
	db *gorm.DB
}

// NewRunRepository instantiates the repository.
func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{db: db}
}

// Create persists the run together with its model and criterion link rows in
// one insert; the snapshot sets are immutable afterwards.
func (r *runRepository) Create(ctx context.Context, run *models.Run) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *runRepository) GetByID(ctx context.Context, id uint) (models.Run, error) {
	var run models.Run
	if err := r.db.WithContext(ctx).
		Preload("Models").
		Preload("Models.Model").
		Preload("Criteria").
		Preload("Criteria.Criterion").
		First(&run, id).Error; err != nil {
		return models.Run{}, err
	}
	return run, nil
}

func (r *runRepository) GetWithDetails(ctx context.Context, id uint) (models.Run, error) {
	var run models.Run
	if err := r.db.WithContext(ctx).
		Preload("Models").
		Preload("Models.Model").
		Preload("Criteria").
		Preload("Criteria.Criterion").
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("responses.created_at ASC")
		}).
		First(&run, id).Error; err != nil {
		return models.Run{}, err
	}
	return run, nil
}

func (r *runRepository) List(ctx context.Context) ([]models.Run, error) {
	var runs []models.Run
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
