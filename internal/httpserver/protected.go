package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/emotion_diary/internal/middleware/auth"
)

// whoami answers the protected check routes with the caller's identity.
func whoami(message string) echo.HandlerFunc {
	return func(c echo.Context) error {
		cs, _ := authmw.ClaimsFrom(c)
		sub, _ := cs.Subject()
		return c.JSON(http.StatusOK, map[string]any{
			"message": message,
			"user_id": sub,
			"name":    cs.Name,
			"roles":   cs.Roles,
		})
	}
}
