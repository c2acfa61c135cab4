package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/emotion_diary/internal/service"
	"github.com/Skotchmaster/emotion_diary/pkg/logging"
)

type KnowledgeHTTP struct {
	Svc *service.KnowledgeService
}

func (h *KnowledgeHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "knowledge.list")

	items, err := h.Svc.List(ctx)
	if err != nil {
		return fail(c, l, "list_knowledge_failed", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *KnowledgeHTTP) Recommend(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "knowledge.recommend")

	intensity, err := strconv.ParseFloat(c.QueryParam("intensity"), 64)
	if err != nil {
		return badRequest(l, "recommend_failed", "intensity must be a number", err)
	}

	items, err := h.Svc.Recommend(ctx, c.QueryParam("category"), intensity)
	if err != nil {
		return fail(c, l, "recommend_failed", err)
	}
	return c.JSON(http.StatusOK, items)
}
