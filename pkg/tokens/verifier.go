package tokens

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Verifier struct {
	cfg Config
}

func NewVerifier(cfg Config) (*Verifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	cfg.Secret = secret
	return &Verifier{cfg: cfg}, nil
}

// Verify checks the signature, then issuer and audience, then expiry
// against now. Every failure is reported as ErrTokenInvalid; the cause is
// wrapped for logging only.
func (v *Verifier) Verify(token string, now time.Time) (ClaimSet, error) {
	if token == "" {
		return ClaimSet{}, fmt.Errorf("%w: empty token", ErrTokenInvalid)
	}

	var claims Claims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return v.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return ClaimSet{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !tkn.Valid {
		return ClaimSet{}, ErrTokenInvalid
	}
	if err := v.validate(&claims, now); err != nil {
		return ClaimSet{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	return claims.ClaimSet(), nil
}

func (v *Verifier) validate(c *Claims, now time.Time) error {
	if c.Issuer != v.cfg.Issuer {
		return jwt.ErrTokenInvalidIssuer
	}
	if !slices.Contains(c.Audience, v.cfg.Audience) {
		return jwt.ErrTokenInvalidAudience
	}
	if c.ExpiresAt == nil {
		return fmt.Errorf("%w: exp", jwt.ErrTokenRequiredClaimMissing)
	}
	if !now.Before(c.ExpiresAt.Time) {
		return jwt.ErrTokenExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return jwt.ErrTokenNotValidYet
	}
	return nil
}
