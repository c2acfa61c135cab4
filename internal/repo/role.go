package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/emotion_diary/internal/models"
	"github.com/Skotchmaster/emotion_diary/pkg/roles"
)

func ensureRoles(tx *gorm.DB, rs []roles.Role) ([]models.Role, error) {
	names := roles.NormalizeAll(roles.Strings(rs))
	out := make([]models.Role, 0, len(names))
	for _, name := range names {
		row := models.Role{Name: string(name)}
		if err := tx.Where("name = ?", row.Name).FirstOrCreate(&row).Error; err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *GormRepo) EnsureRoles(ctx context.Context, rs ...roles.Role) ([]models.Role, error) {
	return ensureRoles(r.DB.WithContext(ctx), rs)
}

func (r *GormRepo) FindRoleByName(ctx context.Context, name roles.Role) (*models.Role, error) {
	var role models.Role
	if err := r.DB.WithContext(ctx).Preload("Permissions").
		Where("name = ?", string(roles.Normalize(string(name)))).First(&role).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (r *GormRepo) ListRoles(ctx context.Context) ([]models.Role, error) {
	var items []models.Role
	if err := r.DB.WithContext(ctx).Preload("Permissions").Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GrantPermission creates the permission if needed and attaches it to role.
func (r *GormRepo) GrantPermission(ctx context.Context, role roles.Role, perm models.Permission) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := ensureRoles(tx, []roles.Role{role})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("grant permission %q: empty role", perm.Name)
		}
		if err := tx.Where("name = ?", perm.Name).
			Attrs(models.Permission{Description: perm.Description, ParentID: perm.ParentID}).
			FirstOrCreate(&perm).Error; err != nil {
			return err
		}
		return tx.Model(&rows[0]).Association("Permissions").Append(&perm)
	})
}
