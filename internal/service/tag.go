package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/emotion_diary/internal/models"
	"github.com/Skotchmaster/emotion_diary/internal/repo"
)

const maxTagLen = 64

type TagService struct {
	Repo *repo.GormRepo
}

func (s *TagService) Create(ctx context.Context, userID uint, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxTagLen {
		return nil, fmt.Errorf("%w: tag name must be 1-%d characters", ErrValidation, maxTagLen)
	}

	owner := userID
	tag, err := s.Repo.CreateTag(ctx, &models.Tag{Name: name, Type: models.TagTypeUser, UserID: &owner})
	if err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: tag %q already exists", ErrConflict, name)
		}
		return nil, err
	}
	return tag, nil
}

func (s *TagService) List(ctx context.Context, userID uint) ([]models.Tag, error) {
	return s.Repo.ListTags(ctx, userID)
}

// Delete removes one of the user's own tags. System tags cannot be deleted.
func (s *TagService) Delete(ctx context.Context, userID, id uint) error {
	if err := s.Repo.DeleteTag(ctx, userID, id); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return ErrNotFound
		case errors.Is(err, repo.ErrInUse):
			return ErrConflict
		}
		return err
	}
	return nil
}
