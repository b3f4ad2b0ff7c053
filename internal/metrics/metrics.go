package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP metrics are registered on first use and stay nil while business
// metrics are disabled.
var (
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPActiveConnections prometheus.Gauge

	businessEnabled atomic.Bool
	httpMetricsOnce sync.Once

	registry     *prometheus.Registry
	registryOnce sync.Once
)

// Registry returns the registry every metric in this package is exposed from.
// The default Prometheus registry is left alone so tests can build their own.
func Registry() *prometheus.Registry {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
	return registry
}

// EnableBusinessMetrics turns HTTP and record-operation metrics on or off
func EnableBusinessMetrics(enabled bool) {
	businessEnabled.Store(enabled)
}

// BusinessMetricsEnabled reports whether business metrics are being recorded
func BusinessMetricsEnabled() bool {
	return businessEnabled.Load()
}

// initializeHTTPMetrics initializes HTTP metrics if they haven't been initialized yet
func initializeHTTPMetrics() {
	httpMetricsOnce.Do(func() {
		HTTPRequestsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		)

		HTTPRequestDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		)

		HTTPActiveConnections = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_connections",
				Help: "Number of active HTTP connections",
			},
		)

		Registry().MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			HTTPActiveConnections,
		)
	})
}

// RecordHTTPRequest records metrics for an HTTP request
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if !BusinessMetricsEnabled() {
		return
	}
	initializeHTTPMetrics()

	status := strconv.Itoa(statusCode)

	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// IncActiveConnections increments active connections
func IncActiveConnections() {
	if !BusinessMetricsEnabled() {
		return
	}
	initializeHTTPMetrics()

	HTTPActiveConnections.Inc()
}

// DecActiveConnections decrements active connections
func DecActiveConnections() {
	if !BusinessMetricsEnabled() {
		return
	}
	initializeHTTPMetrics()

	HTTPActiveConnections.Dec()
}

// Handler serves the metrics registry in Prometheus exposition format
func Handler() http.Handler {
	reg := Registry()
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
