package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "flexi").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// PathLabel derives the path label from a request. Override this to
	// keep label cardinality bounded, e.g. by mapping to route patterns.
	// Default: the raw request path.
	PathLabel func(*http.Request) string
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// WithPathLabel sets the function deriving the path label.
func WithPathLabel(fn func(*http.Request) string) MetricsOption {
	return func(c *MetricsConfig) {
		c.PathLabel = fn
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "flexi",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
		PathLabel: func(r *http.Request) string {
			if r.URL.Path == "" {
				return "/"
			}
			return r.URL.Path
		},
	}
}

// metrics holds the Prometheus metrics for request traffic.
type metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
	responseBytes    *prometheus.CounterVec
}

// globalMetrics is the singleton metrics instance, created on the first call
// to Prometheus(). Registering the same metric names twice panics, so every
// later call shares it.
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

// initMetrics initializes the Prometheus metrics.
func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of HTTP requests handled",
			ConstLabels: config.ConstLabels,
		}, []string{"path", "method", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Request handling duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"path", "method"}),

		requestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_in_flight",
			Help:        "Number of requests currently being handled",
			ConstLabels: config.ConstLabels,
		}),

		responseBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "response_bytes_total",
			Help:        "Total bytes written in HTTP responses",
			ConstLabels: config.ConstLabels,
		}, []string{"path"}),
	}
}

// Prometheus creates middleware that collects Prometheus metrics for every
// request passing through it.
//
// Metrics collected:
//   - flexi_requests_total: Counter of requests by path, method, and status
//   - flexi_request_duration_seconds: Histogram of request duration by path and method
//   - flexi_requests_in_flight: Gauge of concurrently handled requests
//   - flexi_response_bytes_total: Counter of response body bytes by path
//
// Example:
//
//	app.Use(middleware.Prometheus(
//	    middleware.WithNamespace("myapp"),
//	))
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) func(http.Handler) http.Handler {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := config.PathLabel(r)

			m.requestsInFlight.Inc()
			defer m.requestsInFlight.Dec()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rec, r)

			m.requestDuration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
			m.requestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(rec.status)).Inc()
			m.responseBytes.WithLabelValues(path).Add(float64(rec.bytes))
		})
	}
}

// statusRecorder captures the response status and body size.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.wroteHeader = true
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += int64(n)
	return n, err
}

// Flush implements http.Flusher when the underlying writer does.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
