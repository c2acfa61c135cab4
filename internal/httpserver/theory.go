package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/emotion_diary/internal/service"
	"github.com/Skotchmaster/emotion_diary/internal/transport"
	"github.com/Skotchmaster/emotion_diary/pkg/logging"
)

type TheoryHTTP struct {
	Svc *service.TheoryService
}

func (h *TheoryHTTP) Analyze(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "theory.analyze")

	name, reply, err := h.Svc.Analyze(ctx, c.QueryParam("theory"), c.QueryParam("context"))
	if err != nil {
		return fail(c, l, "theory_failed", err)
	}
	return c.JSON(http.StatusOK, transport.TheoryResponse{Theory: name, Reply: reply})
}
