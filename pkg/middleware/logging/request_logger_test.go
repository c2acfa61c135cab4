package loggingmw

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/emotion_diary/pkg/logging"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logging.NewWithWriter("info", &buf)

	e := echo.New()
	e.Use(echomw.RequestID())
	e.Use(RequestLogger(base))
	e.GET("/ok", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside")
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var inside, okLine, missLine map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &inside))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &okLine))
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &missLine))

	assert.Equal(t, "inside", inside["msg"])
	assert.NotEmpty(t, inside["request_id"])
	assert.Equal(t, "/ok", okLine["path"])
	assert.EqualValues(t, 200, okLine["status"])
	assert.Equal(t, "WARN", missLine["level"])
	assert.EqualValues(t, 404, missLine["status"])
}
