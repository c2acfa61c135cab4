package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/emotion_diary/internal/service"
	"github.com/Skotchmaster/emotion_diary/pkg/logging"
)

type ChartHTTP struct {
	Svc *service.ChartService
}

func (h *ChartHTTP) Trend(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "chart.trend")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	points, err := h.Svc.Trend(ctx, actor.UserID, c.Param("period"))
	if err != nil {
		return fail(c, l, "chart_trend_failed", err)
	}
	return c.JSON(http.StatusOK, points)
}

func (h *ChartHTTP) Donut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "chart.donut")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	donut, err := h.Svc.Donut(ctx, actor.UserID)
	if err != nil {
		return fail(c, l, "chart_donut_failed", err)
	}
	return c.JSON(http.StatusOK, donut)
}
