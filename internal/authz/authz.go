// Package authz decides whether a verified caller holds a required role.
//
// The decision first looks at the role claims carried by the token. Only
// when the claim is absent does it consult the credential store, and any
// failure on that path denies the request.
package authz

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Skotchmaster/emotion_diary/internal/models"
	"github.com/Skotchmaster/emotion_diary/internal/repo"
	"github.com/Skotchmaster/emotion_diary/pkg/roles"
	"github.com/Skotchmaster/emotion_diary/pkg/tokens"
)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrInsufficientRole = errors.New("insufficient role")
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

type Reason string

const (
	ReasonClaim            Reason = "claim"
	ReasonStore            Reason = "store"
	ReasonUnauthenticated  Reason = "unauthenticated"
	ReasonInsufficientRole Reason = "insufficient_role"
	ReasonStoreUnavailable Reason = "store_unavailable"
)

type Result struct {
	Decision Decision
	Reason   Reason
	// Err is nil on Allow and one of the package sentinels on Deny.
	Err error
}

func (r Result) Allowed() bool { return r.Decision == Allow }

// CredentialStore looks users up by id. An absent user is reported as
// repo.ErrNotFound; anything else is treated as the store being unavailable.
type CredentialStore interface {
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
}

type Authorizer struct {
	Store    CredentialStore
	Observer Observer
}

func New(store CredentialStore, obs Observer) *Authorizer {
	return &Authorizer{Store: store, Observer: obs}
}

func (a *Authorizer) Authorize(ctx context.Context, claims tokens.ClaimSet, required roles.Role) Result {
	res := a.decide(ctx, claims, required)
	if a.Observer != nil {
		a.Observer.Observe(ctx, claims, required, res)
	}
	return res
}

func (a *Authorizer) decide(ctx context.Context, claims tokens.ClaimSet, required roles.Role) Result {
	sub, ok := claims.Subject()
	if !ok {
		return Result{Decision: Deny, Reason: ReasonUnauthenticated, Err: ErrUnauthenticated}
	}

	required = roles.Normalize(string(required))
	if required == "" {
		return Result{Decision: Deny, Reason: ReasonInsufficientRole, Err: fmt.Errorf("%w: empty requirement", ErrInsufficientRole)}
	}

	if claims.HasRole(required) {
		return Result{Decision: Allow, Reason: ReasonClaim}
	}

	if a.Store == nil {
		return storeUnavailable(errors.New("no credential store configured"))
	}

	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return storeUnavailable(fmt.Errorf("malformed subject %q", sub))
	}

	user, err := a.Store.FindUserByID(ctx, uint(id))
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return Result{Decision: Deny, Reason: ReasonInsufficientRole, Err: fmt.Errorf("%w: user %d not found", ErrInsufficientRole, id)}
	case err != nil:
		return storeUnavailable(err)
	case user == nil:
		return Result{Decision: Deny, Reason: ReasonInsufficientRole, Err: fmt.Errorf("%w: user %d not found", ErrInsufficientRole, id)}
	}

	if user.HasRole(required) {
		return Result{Decision: Allow, Reason: ReasonStore}
	}
	return Result{Decision: Deny, Reason: ReasonInsufficientRole, Err: ErrInsufficientRole}
}

func storeUnavailable(cause error) Result {
	return Result{Decision: Deny, Reason: ReasonStoreUnavailable, Err: fmt.Errorf("%w: %w", ErrStoreUnavailable, cause)}
}
