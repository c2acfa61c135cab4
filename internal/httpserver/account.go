package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/emotion_diary/internal/middleware/auth"
	"github.com/Skotchmaster/emotion_diary/internal/service"
	"github.com/Skotchmaster/emotion_diary/internal/transport"
	"github.com/Skotchmaster/emotion_diary/pkg/logging"
)

type AccountHTTP struct {
	Svc *service.AuthService
}

func (h *AccountHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register_failed", "invalid body", err)
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(c, l, "register_failed", err)
	}

	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *AccountHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_failed", "invalid body", err)
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password, c.RealIP())
	if err != nil {
		return fail(c, l, "login_failed", err)
	}

	l.Info("login_success", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, transport.LoginResponse{
		AccessToken: res.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   res.ExpiresAt,
		User:        res.User,
	})
}

func (h *AccountHTTP) Current(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.current")

	id, err := authmw.UserID(c)
	if err != nil {
		l.Warn("current_failed", "status", 401, "reason", "no user in context", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	user, err := h.Svc.Current(ctx, id)
	if err != nil {
		return fail(c, l, "current_failed", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AccountHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.change_password")

	id, err := authmw.UserID(c)
	if err != nil {
		l.Warn("change_password_failed", "status", 401, "reason", "no user in context", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "change_password_failed", "invalid body", err)
	}
	if err := h.Svc.ChangePassword(ctx, id, req.CurrentPassword, req.NewPassword); err != nil {
		return fail(c, l, "change_password_failed", err)
	}

	l.Info("change_password_success", "user_id", id)
	return c.NoContent(http.StatusNoContent)
}
