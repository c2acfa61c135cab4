package httpserver

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/emotion_diary/internal/service"
)

// fail logs err under event and converts it to the HTTP error the client
// sees. Validation messages are passed through, everything else is generic.
func fail(c echo.Context, l *slog.Logger, event string, err error) error {
	var retry *service.RetryError
	switch {
	case errors.As(err, &retry):
		secs := int(math.Ceil(retry.After.Seconds()))
		if secs < 1 {
			secs = 1
		}
		c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
		l.Warn(event, "status", 429, "reason", "rate limited", "retry_after", secs)
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many attempts, try again later")
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "reason", "invalid request", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		l.Warn(event, "status", 401, "reason", "invalid credentials")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", "not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrConflict):
		l.Warn(event, "status", 409, "reason", "conflict", "error", err)
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUnavailable):
		l.Error(event, "status", 503, "reason", "dependency unavailable", "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		l.Error(event, "status", 500, "reason", "internal error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", 400, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}
