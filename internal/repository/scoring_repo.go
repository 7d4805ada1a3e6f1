package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/modelarena/arena-api/internal/models"
)

// ScoringRepository defines data operations for scoring sessions and scores.
type ScoringRepository interface {
	CreateSession(ctx context.Context, session *models.ScoringSession) error
	GetSession(ctx context.Context, id uint) (models.ScoringSession, error)
	ListSessionsByRun(ctx context.Context, runID uint) ([]models.ScoringSession, error)
	CreateScore(ctx context.Context, score *models.Score) error
	ListScoresBySession(ctx context.Context, sessionID uint) ([]models.Score, error)
	ScoreExists(ctx context.Context, sessionID, responseID, criterionID uint) (bool, error)
}

type scoringRepository struct {
	db *gorm.DB
}

// NewScoringRepository instantiates the repository.
func NewScoringRepository(db *gorm.DB) ScoringRepository {
	return &scoringRepository{db: db}
}

func (r *scoringRepository) CreateSession(ctx context.Context, session *models.ScoringSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *scoringRepository) GetSession(ctx context.Context, id uint) (models.ScoringSession, error) {
	var session models.ScoringSession
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return models.ScoringSession{}, err
	}
	return session, nil
}

// ListSessionsByRun returns sessions newest-first.
func (r *scoringRepository) ListSessionsByRun(ctx context.Context, runID uint) ([]models.ScoringSession, error) {
	var sessions []models.ScoringSession
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *scoringRepository) CreateScore(ctx context.Context, score *models.Score) error {
	return r.db.WithContext(ctx).Create(score).Error
}

// ListScoresBySession returns scores oldest-first.
func (r *scoringRepository) ListScoresBySession(ctx context.Context, sessionID uint) ([]models.Score, error) {
	var scores []models.Score
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *scoringRepository) ScoreExists(ctx context.Context, sessionID, responseID, criterionID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Score{}).
		Where("session_id = ? AND response_id = ? AND criterion_id = ?", sessionID, responseID, criterionID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
