package metrics

import (
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

/* ========================================================================
 * Prometheus Metrics
 * ======================================================================== */

var (
	// HTTPRequestDuration observes HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fintrack",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestTotal counts HTTP requests.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fintrack",
			Subsystem: "http",
			Name:      "request_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// DBQueryDuration observes database query latency.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fintrack",
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	// CacheHitTotal counts cache lookups by outcome.
	CacheHitTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fintrack",
			Subsystem: "cache",
			Name:      "hit_total",
			Help:      "Total number of cache hits",
		},
		[]string{"cache_name", "hit"}, // hit: true, false
	)

	// TransactionsRecorded counts recorded transactions by type.
	TransactionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fintrack",
			Subsystem: "domain",
			Name:      "transactions_recorded_total",
			Help:      "Total number of transactions recorded",
		},
		[]string{"transaction_type"},
	)

	// AccountRenames counts account rename operations by outcome.
	AccountRenames = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fintrack",
			Subsystem: "domain",
			Name:      "account_renames_total",
			Help:      "Total number of account rename operations",
		},
		[]string{"outcome"}, // ok, conflict, error
	)

	// AccountDeactivations counts account deactivation operations.
	AccountDeactivations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fintrack",
			Subsystem: "domain",
			Name:      "account_deactivations_total",
			Help:      "Total number of account deactivation operations",
		},
		[]string{"outcome"},
	)
)

// RegisterMetricsEndpoint exposes /metrics on the fiber app through
// the fasthttp adaptor.
func RegisterMetricsEndpoint(app *fiber.App) {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	app.Get("/metrics", func(c fiber.Ctx) error {
		handler(c.RequestCtx())
		return nil
	})
}

// NewCounter creates a custom counter.
func NewCounter(namespace, subsystem, name, help string, labels []string) *prometheus.CounterVec {
	return promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// NewGauge creates a custom gauge.
func NewGauge(namespace, subsystem, name, help string, labels []string) *prometheus.GaugeVec {
	return promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// NewHistogram creates a custom histogram.
func NewHistogram(namespace, subsystem, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	return promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}
