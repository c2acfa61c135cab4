package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/emotion_diary/internal/service"
	"github.com/Skotchmaster/emotion_diary/internal/transport"
	"github.com/Skotchmaster/emotion_diary/internal/util"
	"github.com/Skotchmaster/emotion_diary/pkg/logging"
)

type TagHTTP struct {
	Svc *service.TagService
}

func (h *TagHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tag.list")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	items, err := h.Svc.List(ctx, actor.UserID)
	if err != nil {
		return fail(c, l, "list_tags_failed", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": items})
}

func (h *TagHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tag.create")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req transport.CreateTagRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_tag_failed", "invalid body", err)
	}

	tag, err := h.Svc.Create(ctx, actor.UserID, req.Name)
	if err != nil {
		return fail(c, l, "create_tag_failed", err)
	}

	l.Info("create_tag_success", "tag_id", tag.ID)
	return c.JSON(http.StatusCreated, tag)
}

func (h *TagHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tag.delete")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, ok := util.ParseUint(c.Param("id"))
	if !ok {
		return badRequest(l, "delete_tag_failed", "id is not a positive integer", nil)
	}
	if err := h.Svc.Delete(ctx, actor.UserID, id); err != nil {
		return fail(c, l, "delete_tag_failed", err)
	}

	l.Info("delete_tag_success", "tag_id", id)
	return c.NoContent(http.StatusNoContent)
}
