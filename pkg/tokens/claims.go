package tokens

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/emotion_diary/pkg/roles"
)

var (
	ErrTokenInvalid   = errors.New("token invalid")
	ErrMissingSubject = errors.New("claim set has no subject")
	ErrConfig         = errors.New("invalid token config")
)

// ClaimSet is the identity carried by a bearer token: one subject id,
// an optional display name and zero or more roles.
type ClaimSet struct {
	UserID string
	Name   string
	Roles  []roles.Role
}

func (c ClaimSet) Subject() (string, bool) {
	s := strings.TrimSpace(c.UserID)
	return s, s != ""
}

func (c ClaimSet) HasRole(r roles.Role) bool {
	want := roles.Normalize(string(r))
	if want == "" {
		return false
	}
	for _, have := range c.Roles {
		if roles.Normalize(string(have)) == want {
			return true
		}
	}
	return false
}

// Claims is the JWT payload.
type Claims struct {
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) ClaimSet() ClaimSet {
	return ClaimSet{
		UserID: c.Subject,
		Name:   c.Name,
		Roles:  roles.NormalizeAll(c.Roles),
	}
}

type Config struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

func (c Config) Validate() error {
	switch {
	case len(c.Secret) == 0:
		return fmt.Errorf("%w: signing secret is empty", ErrConfig)
	case strings.TrimSpace(c.Issuer) == "":
		return fmt.Errorf("%w: issuer is empty", ErrConfig)
	case strings.TrimSpace(c.Audience) == "":
		return fmt.Errorf("%w: audience is empty", ErrConfig)
	case c.TTL <= 0:
		return fmt.Errorf("%w: ttl must be positive, got %s", ErrConfig, c.TTL)
	}
	return nil
}
