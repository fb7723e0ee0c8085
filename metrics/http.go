package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMiddlewareConfig configures the HTTP metrics middleware.
type HTTPMiddlewareConfig struct {
	// RequestTotal uses labels: method, path, status.
	RequestTotal *prometheus.CounterVec

	// RequestDuration uses labels: method, path, status.
	RequestDuration *prometheus.HistogramVec

	// Skipper allows skipping metrics for specific requests.
	Skipper func(fiber.Ctx) bool
}

// HTTPMetricsMiddleware records a counter and a latency histogram per
// request. The path label is the matched route pattern, not the raw
// URL, to keep cardinality bounded.
func HTTPMetricsMiddleware(cfg *HTTPMiddlewareConfig) fiber.Handler {
	config := &HTTPMiddlewareConfig{}
	if cfg != nil {
		*config = *cfg
	}
	if config.RequestTotal == nil {
		config.RequestTotal = HTTPRequestTotal
	}
	if config.RequestDuration == nil {
		config.RequestDuration = HTTPRequestDuration
	}

	return func(c fiber.Ctx) error {
		if config.Skipper != nil && config.Skipper(c) {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		path := ""
		if route := c.Route(); route != nil {
			path = route.Path
		}
		if path == "" || path == "/" {
			path = c.Path()
		}

		status := strconv.Itoa(c.Response().StatusCode())
		config.RequestTotal.WithLabelValues(c.Method(), path, status).Inc()
		config.RequestDuration.WithLabelValues(c.Method(), path, status).Observe(elapsed.Seconds())

		return err
	}
}
