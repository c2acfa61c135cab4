package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/emotion_diary/internal/metrics"
	loggingmw "github.com/Skotchmaster/emotion_diary/pkg/middleware/logging"
)

// Common is the middleware chain every request passes through, outermost
// first.
func Common(base *slog.Logger) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestID(),
		loggingmw.RequestLogger(base),
		metrics.Middleware(),
		ecM.Secure(),
		ecM.BodyLimit("1M"),
		ecM.CORSWithConfig(ecM.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}),
	}
}
