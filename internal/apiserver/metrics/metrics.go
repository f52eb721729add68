// Package metrics exposes the pathtracer API's prometheus metrics,
// grounded on lake/api/metrics/metrics.go.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pathtracer_build_info",
			Help: "Build information of the pathtracer API",
		},
		[]string{"version", "commit", "date"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pathtracer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pathtracer_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pathtracer_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	TraceHopsTotal = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pathtracer_trace_hops",
			Help:    "Number of hops in the longest published path of a trace",
			Buckets: prometheus.LinearBuckets(1, 2, 12),
		},
	)

	CollectorErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pathtracer_collector_errors_total",
			Help: "Total number of Collector errors encountered while walking",
		},
		[]string{"device"},
	)
)

// Middleware records HTTP metrics for every request, grounded on
// lake/api/metrics/metrics.go's Middleware.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		HTTPRequestsInFlight.Inc()
		defer HTTPRequestsInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = r.URL.Path
		}

		status := strconv.Itoa(ww.Status())
		duration := time.Since(start).Seconds()

		HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// RecordTraceHops records the longest published path length of a trace.
func RecordTraceHops(hops int) {
	TraceHopsTotal.Observe(float64(hops))
}

// RecordCollectorError increments the per-device Collector error count.
func RecordCollectorError(device string) {
	CollectorErrorsTotal.WithLabelValues(device).Inc()
}
