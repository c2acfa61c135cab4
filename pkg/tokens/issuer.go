package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Skotchmaster/emotion_diary/pkg/roles"
)

type Issuer struct {
	cfg Config
}

func NewIssuer(cfg Config) (*Issuer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	cfg.Secret = secret
	return &Issuer{cfg: cfg}, nil
}

func (i *Issuer) TTL() time.Duration { return i.cfg.TTL }

func (i *Issuer) Issue(cs ClaimSet) (string, time.Time, error) {
	return i.IssueAt(cs, time.Now())
}

// IssueAt signs cs with exp = now + TTL. Role names are normalized before
// they are embedded.
func (i *Issuer) IssueAt(cs ClaimSet, now time.Time) (string, time.Time, error) {
	sub, ok := cs.Subject()
	if !ok {
		return "", time.Time{}, ErrMissingSubject
	}

	now = now.UTC().Truncate(time.Second)
	exp := now.Add(i.cfg.TTL)

	claims := Claims{
		Name:  cs.Name,
		Roles: roles.Strings(roles.NormalizeAll(roles.Strings(cs.Roles))),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.cfg.Issuer,
			Subject:   sub,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}
