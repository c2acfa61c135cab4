package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/emotion_diary/internal/models"
	"github.com/Skotchmaster/emotion_diary/pkg/roles"
)

// CreateUser inserts u with the given roles, creating missing role rows.
// It returns ErrAlreadyExists when the email or username is taken.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User, rs ...roles.Role) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).
			Where("email = ? OR username = ?", u.Email, u.Username).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrAlreadyExists
		}

		rows, err := ensureRoles(tx, rs)
		if err != nil {
			return err
		}
		u.Roles = rows

		if err := tx.Create(u).Error; err != nil {
			return translate(err)
		}
		return nil
	})
}

func (r *GormRepo) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Preload("Roles").First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Preload("Roles").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Preload("Roles").Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) ListUsers(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.User, 0, limit)
	if err := r.DB.WithContext(ctx).Preload("Roles").Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) AssignRole(ctx context.Context, userID uint, role roles.Role) (*models.User, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return translate(err)
		}
		rows, err := ensureRoles(tx, []roles.Role{role})
		if err != nil {
			return err
		}
		return tx.Model(&user).Association("Roles").Append(rows)
	})
	if err != nil {
		return nil, err
	}
	return r.FindUserByID(ctx, userID)
}

func (r *GormRepo) RevokeRole(ctx context.Context, userID uint, role roles.Role) (*models.User, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return translate(err)
		}
		var row models.Role
		if err := tx.Where("name = ?", string(roles.Normalize(string(role)))).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		return tx.Model(&user).Association("Roles").Delete(&row)
	})
	if err != nil {
		return nil, err
	}
	return r.FindUserByID(ctx, userID)
}

func (r *GormRepo) UpdatePassword(ctx context.Context, userID uint, hash string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return nil
}
