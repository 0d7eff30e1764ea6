package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hydrovacfinder",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hydrovacfinder",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hydrovacfinder",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	searches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hydrovacfinder",
			Subsystem: "search",
			Name:      "queries_total",
			Help:      "Total number of proximity searches.",
		},
		[]string{"outcome"},
	)

	fallbackReads = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hydrovacfinder",
			Subsystem: "storage",
			Name:      "fallback_reads_total",
			Help:      "Reads served from the embedded seed dataset.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		searches,
		fallbackReads,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordSearch counts a proximity search by outcome ("hit", "no_location",
// "error").
func RecordSearch(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	searches.WithLabelValues(outcome).Inc()
}

// RecordFallbackRead counts a read served from the embedded seed dataset.
func RecordFallbackRead() {
	fallbackReads.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses record ids so metric label cardinality stays
// bounded.
func canonicalPath(raw string) string {
	if raw == "" || raw == "/" {
		return "/"
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "api" {
		return "/" + parts[0]
	}
	if len(parts) == 1 {
		return "/api"
	}
	resource := parts[1]
	if len(parts) == 2 {
		return "/api/" + resource
	}
	// Admin and webhook routes keep their subresource; everything else
	// collapses ids to a placeholder.
	switch resource {
	case "admin", "webhooks":
		return "/api/" + resource + "/" + parts[2]
	}
	switch parts[2] {
	case "search", "slideshow", "validate":
		return "/api/" + resource + "/" + parts[2]
	default:
		return "/api/" + resource + "/:id"
	}
}
