package auth

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/emotion_diary/internal/authz"
	"github.com/Skotchmaster/emotion_diary/pkg/logging"
	"github.com/Skotchmaster/emotion_diary/pkg/roles"
	"github.com/Skotchmaster/emotion_diary/pkg/tokens"
)

const (
	ClaimsKey = "claims"
	UserIDKey = "user_id"
	RolesKey  = "roles"
)

type Middleware struct {
	Verifier   *tokens.Verifier
	Authorizer *authz.Authorizer
	Now        func() time.Time
}

func New(v *tokens.Verifier, a *authz.Authorizer) *Middleware {
	return &Middleware{Verifier: v, Authorizer: a, Now: time.Now}
}

// Authenticate verifies the bearer token and stores its claim set in the
// echo context. Failures answer 401 with a generic body.
func (m *Middleware) Authenticate() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ClaimsKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return m.Verifier.Verify(auth, m.now())
		},
		ErrorHandler: func(c echo.Context, err error) error {
			l := logging.FromContext(c.Request().Context()).With("handler", "auth.authenticate")
			reason := "invalid token"
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				reason = "missing token"
			} else if errors.Is(err, jwt.ErrTokenExpired) {
				reason = "expired token"
			}
			l.Warn("authenticate_failed", "status", 401, "reason", reason, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		},
	})
}

// RequireRole authenticates the request and then asks the authorizer
// whether the caller holds role.
func (m *Middleware) RequireRole(role roles.Role) echo.MiddlewareFunc {
	authenticate := m.Authenticate()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return authenticate(m.authorize(role, next))
	}
}

func (m *Middleware) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireRole(roles.User)(next)
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireRole(roles.Admin)(next)
}

func (m *Middleware) authorize(role roles.Role, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, _ := ClaimsFrom(c)

		res := m.Authorizer.Authorize(c.Request().Context(), claims, role)
		if !res.Allowed() {
			if errors.Is(res.Err, authz.ErrUnauthenticated) {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func (m *Middleware) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

func setUserContext(c echo.Context, claims tokens.ClaimSet) {
	sub, _ := claims.Subject()
	c.Set(UserIDKey, sub)
	c.Set(RolesKey, claims.Roles)
}

func ClaimsFrom(c echo.Context) (tokens.ClaimSet, bool) {
	cs, ok := c.Get(ClaimsKey).(tokens.ClaimSet)
	return cs, ok
}

var ErrNoUser = errors.New("no authenticated user")

// UserID returns the numeric subject of the authenticated caller.
func UserID(c echo.Context) (uint, error) {
	cs, ok := ClaimsFrom(c)
	if !ok {
		return 0, ErrNoUser
	}
	sub, ok := cs.Subject()
	if !ok {
		return 0, ErrNoUser
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrNoUser
	}
	return uint(id), nil
}

// IsAdmin runs the admin decision for the authenticated caller, so a role
// granted in the store after the token was issued counts as well.
func (m *Middleware) IsAdmin(c echo.Context) bool {
	cs, ok := ClaimsFrom(c)
	if !ok {
		return false
	}
	return m.Authorizer.Authorize(c.Request().Context(), cs, roles.Admin).Allowed()
}
