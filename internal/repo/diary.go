package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/emotion_diary/internal/models"
)

func (r *GormRepo) CreateDiary(ctx context.Context, d *models.Diary) (*models.Diary, error) {
	if err := r.DB.WithContext(ctx).Omit("Tags.*").Create(d).Error; err != nil {
		return nil, translate(err)
	}
	return d, nil
}

func (r *GormRepo) GetDiary(ctx context.Context, id uint) (*models.Diary, error) {
	var d models.Diary
	if err := r.DB.WithContext(ctx).Preload("Tags").First(&d, id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *GormRepo) ListDiariesByUser(ctx context.Context, userID uint, offset, limit int) (int64, []models.Diary, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Diary{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Diary, 0, limit)
	if err := r.DB.WithContext(ctx).Preload("Tags").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// ListDiaries pages over every diary. Admin use only.
func (r *GormRepo) ListDiaries(ctx context.Context, offset, limit int) (int64, []models.Diary, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Diary{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Diary, 0, limit)
	if err := r.DB.WithContext(ctx).Preload("Tags").Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// UpdateDiary saves scalar fields of d. When tags is non-nil the tag set is
// replaced with it.
func (r *GormRepo) UpdateDiary(ctx context.Context, d *models.Diary, tags []models.Tag) (*models.Diary, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(d).Updates(map[string]any{
			"title":       d.Title,
			"content":     d.Content,
			"category_id": d.CategoryID,
			"visibility":  d.Visibility,
			"updated_at":  time.Now().UTC(),
		}).Error; err != nil {
			return err
		}
		if tags != nil {
			return tx.Model(d).Association("Tags").Replace(tags)
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return r.GetDiary(ctx, d.ID)
}

func (r *GormRepo) DeleteDiary(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Diary{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("diary %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GormRepo) CategoryExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var items []models.Category
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) EnsureCategories(ctx context.Context, names ...string) error {
	for _, n := range names {
		c := models.Category{Name: n}
		if err := r.DB.WithContext(ctx).Where("name = ?", n).FirstOrCreate(&c).Error; err != nil {
			return err
		}
	}
	return nil
}
