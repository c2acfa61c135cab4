package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/emotion_diary/internal/events"
	"github.com/Skotchmaster/emotion_diary/internal/models"
	"github.com/Skotchmaster/emotion_diary/internal/rate"
	"github.com/Skotchmaster/emotion_diary/internal/repo"
	"github.com/Skotchmaster/emotion_diary/internal/transport"
	pkg_hash "github.com/Skotchmaster/emotion_diary/pkg/hash"
	"github.com/Skotchmaster/emotion_diary/pkg/logging"
	"github.com/Skotchmaster/emotion_diary/pkg/roles"
	"github.com/Skotchmaster/emotion_diary/pkg/tokens"
)

const minPasswordLen = 6

type AuthService struct {
	Repo    *repo.GormRepo
	Issuer  *tokens.Issuer
	Limiter rate.Limiter
	Events  events.Publisher
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *models.User
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRegister(req); err != nil {
		return nil, err
	}

	pwHash, err := pkg_hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUser(ctx, user, roles.User); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: email or username already registered", ErrConflict)
		}
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUsers, events.New(events.UserRegistered, user.ID))
	return user, nil
}

func validateRegister(req transport.RegisterRequest) error {
	if n := len(req.Username); n < 3 || n > 64 {
		return fmt.Errorf("%w: username must be 3-64 characters", ErrValidation)
	}
	if req.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != req.Email {
		return fmt.Errorf("%w: email is malformed", ErrValidation)
	}
	if len(req.Password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	return nil
}

// Login authenticates by email, or by username when the identifier has no
// "@", and issues a bearer token carrying the user's roles.
func (s *AuthService) Login(ctx context.Context, identifier, password, clientIP string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if identifier == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	if s.Limiter != nil {
		res, err := s.Limiter.Allow(ctx, rate.Key("login", identifier, clientIP))
		switch {
		case err != nil:
			l.Warn("rate_limit_unavailable", "error", err)
		case !res.Allowed:
			return nil, &RetryError{After: res.RetryAfter}
		}
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.Repo.FindUserByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.Repo.FindUserByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.Issuer.Issue(tokens.ClaimSet{
		UserID: strconv.FormatUint(uint64(user.ID), 10),
		Name:   user.Username,
		Roles:  user.RoleNames(),
	})
	if err != nil {
		return nil, err
	}

	return &LoginResult{AccessToken: token, ExpiresAt: exp, User: user}, nil
}

func (s *AuthService) Current(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, id uint, current, next string) error {
	if len(next) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	user, err := s.Current(ctx, id)
	if err != nil {
		return err
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	pwHash, err := pkg_hash.HashPassword(next)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, id, pwHash)
}
