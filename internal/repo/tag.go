package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/emotion_diary/internal/models"
)

func (r *GormRepo) CreateTag(ctx context.Context, t *models.Tag) (*models.Tag, error) {
	q := r.DB.WithContext(ctx).Model(&models.Tag{}).Where("name = ?", t.Name)
	if t.UserID == nil {
		q = q.Where("user_id IS NULL")
	} else {
		q = q.Where("user_id = ?", *t.UserID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrAlreadyExists
	}

	if err := r.DB.WithContext(ctx).Create(t).Error; err != nil {
		return nil, translate(err)
	}
	return t, nil
}

// ListTags returns system tags plus the tags owned by userID.
func (r *GormRepo) ListTags(ctx context.Context, userID uint) ([]models.Tag, error) {
	var items []models.Tag
	if err := r.DB.WithContext(ctx).
		Where("type = ? OR user_id = ?", models.TagTypeSystem, userID).
		Order("type ASC, name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindTagsByIDs returns the subset of ids visible to userID.
func (r *GormRepo) FindTagsByIDs(ctx context.Context, userID uint, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	var items []models.Tag
	if err := r.DB.WithContext(ctx).
		Where("id IN ?", ids).
		Where("type = ? OR user_id = ?", models.TagTypeSystem, userID).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteTag removes a user tag and detaches it from every diary that uses
// it, soft-deleted diaries included.
func (r *GormRepo) DeleteTag(ctx context.Context, userID, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag models.Tag
		err := tx.Where("id = ? AND user_id = ? AND type = ?", id, userID, models.TagTypeUser).
			First(&tag).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("tag %d: %w", id, ErrNotFound)
			}
			return err
		}

		if err := tx.Exec("DELETE FROM diary_tags WHERE tag_id = ?", tag.ID).Error; err != nil {
			return translate(err)
		}
		if err := tx.Delete(&tag).Error; err != nil {
			return translate(err)
		}
		return nil
	})
}
