package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/emotion_diary/internal/service"
	"github.com/Skotchmaster/emotion_diary/internal/transport"
	"github.com/Skotchmaster/emotion_diary/internal/util"
	"github.com/Skotchmaster/emotion_diary/pkg/logging"
)

type AdminHTTP struct {
	Svc *service.AdminService
}

func (h *AdminHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_users")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, users, err := h.Svc.ListUsers(ctx, offset, limit)
	if err != nil {
		return fail(c, l, "list_users_failed", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": users,
		"meta": util.Meta(page, offset, limit, total),
	})
}

func (h *AdminHTTP) GrantRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.grant_role")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, ok := util.ParseUint(c.Param("id"))
	if !ok {
		return badRequest(l, "grant_role_failed", "id is not a positive integer", nil)
	}
	var req transport.RoleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "grant_role_failed", "invalid body", err)
	}

	user, err := h.Svc.GrantRole(ctx, actor.UserID, id, req.Role)
	if err != nil {
		return fail(c, l, "grant_role_failed", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AdminHTTP) RevokeRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.revoke_role")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, ok := util.ParseUint(c.Param("id"))
	if !ok {
		return badRequest(l, "revoke_role_failed", "id is not a positive integer", nil)
	}

	user, err := h.Svc.RevokeRole(ctx, actor.UserID, id, c.Param("role"))
	if err != nil {
		return fail(c, l, "revoke_role_failed", err)
	}
	return c.JSON(http.StatusOK, user)
}
