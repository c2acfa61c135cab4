package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once   sync.Once
	regErr error

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	authzDecisionsTotal *prometheus.CounterVec
	eventsPublishTotal  *prometheus.CounterVec
)

// Register creates the collectors once and returns the /metrics handler.
// A nil registry means the default one.
func Register(reg prometheus.Registerer) (http.Handler, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	once.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests handled",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		authzDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Authorization decisions by outcome and reason",
		}, []string{"decision", "reason"})

		eventsPublishTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Domain events handed to the broker",
		}, []string{"topic", "result"})

		for _, c := range []prometheus.Collector{httpRequestsTotal, httpRequestDuration, authzDecisionsTotal, eventsPublishTotal} {
			if err := registerCollector(reg, c); err != nil {
				regErr = err
				return
			}
		}
	})
	if regErr != nil {
		return nil, regErr
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		return promhttp.HandlerFor(g, promhttp.HandlerOpts{}), nil
	}
	return promhttp.Handler(), nil
}

func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// Middleware records request count and latency labelled by route template.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if httpRequestsTotal == nil {
				return next(c)
			}
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			method := c.Request().Method

			httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func ObserveAuthz(decision, reason string) {
	if authzDecisionsTotal == nil {
		return
	}
	authzDecisionsTotal.WithLabelValues(decision, reason).Inc()
}

func ObservePublish(topic string, err error) {
	if eventsPublishTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	eventsPublishTotal.WithLabelValues(topic, result).Inc()
}
