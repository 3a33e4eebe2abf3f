package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records per-route request counts and latencies.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	upstream *prometheus.CounterVec
}

// NewMetrics registers the collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "klipy",
			Subsystem: "preview",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "klipy",
			Subsystem: "preview",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "klipy",
			Subsystem: "preview",
			Name:      "upstream_errors_total",
			Help:      "Failed calls to the Klipy API, by error kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		m.requests,
		m.duration,
		m.upstream,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Instrument wraps next, labelling its samples with route.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := wrap(w)
		next.ServeHTTP(wrapped, r)

		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.Status())).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// UpstreamError counts a failed API call of the given kind.
func (m *Metrics) UpstreamError(kind string) {
	if m == nil {
		return
	}
	m.upstream.WithLabelValues(kind).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
