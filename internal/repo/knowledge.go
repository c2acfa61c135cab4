package repo

import (
	"context"

	"github.com/Skotchmaster/emotion_diary/internal/models"
)

func (r *GormRepo) ListKnowledge(ctx context.Context) ([]models.EmotionKnowledge, error) {
	var items []models.EmotionKnowledge
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Recommend returns up to limit entries of category whose intensity is at
// least minIntensity.
func (r *GormRepo) Recommend(ctx context.Context, category string, minIntensity float64, limit int) ([]models.EmotionKnowledge, error) {
	items := make([]models.EmotionKnowledge, 0, limit)
	if err := r.DB.WithContext(ctx).
		Where("category = ? AND intensity >= ?", category, minIntensity).
		Order("intensity ASC, id ASC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpsertKnowledge matches on category and recommended action.
func (r *GormRepo) UpsertKnowledge(ctx context.Context, k *models.EmotionKnowledge) error {
	return r.DB.WithContext(ctx).
		Where("category = ? AND recommended_action = ?", k.Category, k.RecommendedAction).
		Assign(models.EmotionKnowledge{
			Intensity:          k.Intensity,
			PsychologicalBasis: k.PsychologicalBasis,
			ContentType:        k.ContentType,
			ContentURL:         k.ContentURL,
			TargetNeeds:        k.TargetNeeds,
			Description:        k.Description,
		}).
		FirstOrCreate(k).Error
}
