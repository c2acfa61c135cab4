package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/emotion_diary/internal/middleware/auth"
	"github.com/Skotchmaster/emotion_diary/internal/service"
	"github.com/Skotchmaster/emotion_diary/internal/transport"
	"github.com/Skotchmaster/emotion_diary/internal/util"
	"github.com/Skotchmaster/emotion_diary/pkg/logging"
)

type DiaryHTTP struct {
	Svc  *service.DiaryService
	Auth *authmw.Middleware
}

func actorFrom(c echo.Context) (service.Actor, error) {
	id, err := authmw.UserID(c)
	if err != nil {
		return service.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return service.Actor{UserID: id}, nil
}

func (h *DiaryHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "diary.list")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.List(ctx, actor.UserID, offset, limit)
	if err != nil {
		return fail(c, l, "list_diaries_failed", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": util.Meta(page, offset, limit, total),
	})
}

func (h *DiaryHTTP) ListAll(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "diary.list_all")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.ListAll(ctx, offset, limit)
	if err != nil {
		return fail(c, l, "list_all_diaries_failed", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": util.Meta(page, offset, limit, total),
	})
}

func (h *DiaryHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "diary.create")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req transport.CreateDiaryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_diary_failed", "invalid body", err)
	}

	d, err := h.Svc.Create(ctx, actor.UserID, req)
	if err != nil {
		return fail(c, l, "create_diary_failed", err)
	}

	l.Info("create_diary_success", "diary_id", d.ID)
	return c.JSON(http.StatusCreated, d)
}

func (h *DiaryHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "diary.get")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, ok := util.ParseUint(c.Param("id"))
	if !ok {
		return badRequest(l, "get_diary_failed", "id is not a positive integer", nil)
	}
	if h.Auth != nil {
		actor.Admin = h.Auth.IsAdmin(c)
	}

	d, err := h.Svc.Get(ctx, actor, id)
	if err != nil {
		return fail(c, l, "get_diary_failed", err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DiaryHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "diary.patch")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, ok := util.ParseUint(c.Param("id"))
	if !ok {
		return badRequest(l, "patch_diary_failed", "id is not a positive integer", nil)
	}

	var req transport.PatchDiaryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "patch_diary_failed", "invalid body", err)
	}

	d, err := h.Svc.Update(ctx, actor, id, req)
	if err != nil {
		return fail(c, l, "patch_diary_failed", err)
	}

	l.Info("patch_diary_success", "diary_id", d.ID)
	return c.JSON(http.StatusOK, d)
}

func (h *DiaryHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "diary.delete")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, ok := util.ParseUint(c.Param("id"))
	if !ok {
		return badRequest(l, "delete_diary_failed", "id is not a positive integer", nil)
	}

	if err := h.Svc.Delete(ctx, actor, id); err != nil {
		return fail(c, l, "delete_diary_failed", err)
	}

	l.Info("delete_diary_success", "diary_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *DiaryHTTP) Analyze(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "diary.analyze")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, ok := util.ParseUint(c.Param("id"))
	if !ok {
		return badRequest(l, "analyze_diary_failed", "id is not a positive integer", nil)
	}

	res, err := h.Svc.Analyze(ctx, actor, id)
	if err != nil {
		return fail(c, l, "analyze_diary_failed", err)
	}

	l.Info("analyze_diary_success", "diary_id", id, "sentiment", res.Analysis.Sentiment)
	return c.JSON(http.StatusOK, res)
}

func (h *DiaryHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "diary.search")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, docs, err := h.Svc.Search(ctx, actor.UserID, c.QueryParam("q"), offset, limit)
	if err != nil {
		return fail(c, l, "search_diaries_failed", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": docs,
		"meta": util.Meta(page, offset, limit, total),
	})
}
