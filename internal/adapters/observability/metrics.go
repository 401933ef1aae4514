package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tours", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tours", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	StoreRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tours", Name: "store_requests_total", Help: "Requests to the tour store."},
		[]string{"backend", "op", "status"},
	)
	StoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tours", Name: "store_request_duration_seconds",
			Help:    "Tour store request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "op"},
	)
	LimiterEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tours", Name: "review_limiter_events_total", Help: "Review limiter decisions."},
		[]string{"event"}, // event: allow|deny|error
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, StoreRequests, StoreLatency, LimiterEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

// ObserveStore records one store round trip. status is an HTTP status for the
// REST backend and "ok"/"error"/"not_found" for SQL.
func ObserveStore(backend, op, status string, dur time.Duration) {
	StoreRequests.WithLabelValues(backend, op, status).Inc()
	StoreLatency.WithLabelValues(backend, op).Observe(dur.Seconds())
}

func ObserveLimiter(event string) {
	LimiterEvents.WithLabelValues(event).Inc()
}

func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	return fmt.Sprintf("%T", err)
}
