package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/emotion_diary/internal/models"
)

func (r *GormRepo) SaveAnalysis(ctx context.Context, a *models.SentimentAnalysis) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *GormRepo) LatestAnalysisForDiary(ctx context.Context, diaryID uint) (*models.SentimentAnalysis, error) {
	var a models.SentimentAnalysis
	if err := r.DB.WithContext(ctx).
		Where("diary_id = ?", diaryID).
		Order("analyzed_at DESC, id DESC").
		First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// Trend returns the user's analyses in ascending time order. A nil since
// means no lower bound.
func (r *GormRepo) Trend(ctx context.Context, userID uint, since *time.Time) ([]models.SentimentAnalysis, error) {
	q := r.DB.WithContext(ctx).Where("user_id = ?", userID)
	if since != nil {
		q = q.Where("analyzed_at >= ?", since.UTC())
	}
	var items []models.SentimentAnalysis
	if err := q.Order("analyzed_at ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

type LevelCount struct {
	EmotionLevel int
	N            int64
}

func (r *GormRepo) CountByLevel(ctx context.Context, userID uint, since time.Time) ([]LevelCount, error) {
	var rows []LevelCount
	if err := r.DB.WithContext(ctx).Model(&models.SentimentAnalysis{}).
		Select("emotion_level, COUNT(*) AS n").
		Where("user_id = ? AND analyzed_at >= ?", userID, since.UTC()).
		Group("emotion_level").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
