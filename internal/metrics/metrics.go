// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ShortURLsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shorturl_created_total",
			Help: "Total number of short URLs created",
		},
	)

	// Redirects is partitioned by outcome: ok, not_found, expired, error.
	Redirects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shorturl_redirects_total",
			Help: "Total number of shortcode resolutions by outcome",
		},
		[]string{"result"},
	)

	// ClicksTracked is partitioned by result: ok, failed.
	ClicksTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shorturl_clicks_tracked_total",
			Help: "Total number of click records appended",
		},
		[]string{"result"},
	)

	ExpiredSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shorturl_swept_total",
			Help: "Total number of expired short URLs deleted by sweeps",
		},
	)

	StorageBackend = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shorturl_storage_backend",
			Help: "Set to 1 for the storage backend currently serving requests",
		},
		[]string{"backend"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// SetStorageBackend marks name as the only active backend.
func SetStorageBackend(name string) {
	StorageBackend.Reset()
	StorageBackend.WithLabelValues(name).Set(1)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count, latency and in-flight gauge.
// The route label is the matched chi pattern to keep cardinality low.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		labels := prometheus.Labels{
			"method": r.Method,
			"route":  routePattern(r),
			"status": strconv.Itoa(status),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
