package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/emotion_diary/internal/events"
	"github.com/Skotchmaster/emotion_diary/internal/models"
	"github.com/Skotchmaster/emotion_diary/internal/repo"
	"github.com/Skotchmaster/emotion_diary/pkg/logging"
	"github.com/Skotchmaster/emotion_diary/pkg/roles"
)

type AdminService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *AdminService) ListUsers(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	return s.Repo.ListUsers(ctx, offset, limit)
}

func parseRole(name string) (roles.Role, error) {
	r := roles.Normalize(name)
	if !roles.Known(r) {
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, name)
	}
	return r, nil
}

// GrantRole adds role to the user. Changes take effect on the store path
// immediately and in claims on the user's next login.
func (s *AdminService) GrantRole(ctx context.Context, actorID, userID uint, name string) (*models.User, error) {
	r, err := parseRole(name)
	if err != nil {
		return nil, err
	}
	u, err := s.Repo.AssignRole(ctx, userID, r)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	logging.FromContext(ctx).Info("role_granted", "actor_id", actorID, "target_id", userID, "role", r)
	e := events.New(events.RoleGranted, userID)
	e.Attrs = map[string]any{"role": r.String(), "actor_id": actorID}
	publish(ctx, s.Events, events.TopicUsers, e)
	return u, nil
}

func (s *AdminService) RevokeRole(ctx context.Context, actorID, userID uint, name string) (*models.User, error) {
	r, err := parseRole(name)
	if err != nil {
		return nil, err
	}
	if actorID == userID && r == roles.Admin {
		return nil, fmt.Errorf("%w: cannot revoke your own admin role", ErrConflict)
	}
	u, err := s.Repo.RevokeRole(ctx, userID, r)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	logging.FromContext(ctx).Info("role_revoked", "actor_id", actorID, "target_id", userID, "role", r)
	e := events.New(events.RoleRevoked, userID)
	e.Attrs = map[string]any{"role": r.String(), "actor_id": actorID}
	publish(ctx, s.Events, events.TopicUsers, e)
	return u, nil
}
