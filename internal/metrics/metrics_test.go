package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	h, err := Register(prometheus.NewRegistry())
	require.NoError(t, err)
	require.NotNil(t, h)

	before := testutil.ToFloat64(authzDecisionsTotal.WithLabelValues("deny", "store_unavailable"))
	ObserveAuthz("deny", "store_unavailable")
	after := testutil.ToFloat64(authzDecisionsTotal.WithLabelValues("deny", "store_unavailable"))
	assert.Equal(t, before+1, after)

	e := echo.New()
	e.Use(Middleware())
	e.GET("/ping/:id", func(c echo.Context) error { return c.NoContent(http.StatusTeapot) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping/7", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/ping/:id", "418")))
}
