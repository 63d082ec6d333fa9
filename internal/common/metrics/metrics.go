package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gateway outcome labels.
const (
	OutcomeSuccess   = "success"
	OutcomeDeclined  = "declined"
	OutcomeTransport = "transport_error"
)

// HTTP metrics
var (
	// HTTPRequestDuration tracks request latency by method, path, and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)

// Gateway metrics
var (
	// GatewayRequestDuration tracks DataCash round trips by transaction kind and outcome.
	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Duration of DataCash gateway round trips in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"kind", "outcome"},
	)

	// GatewayResponsesTotal counts parsed gateway responses by kind and raw status code.
	GatewayResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_responses_total",
			Help: "Total number of DataCash responses by status code",
		},
		[]string{"kind", "status"},
	)

	// GatewayPreconditionFailures counts calls rejected before any request was sent.
	GatewayPreconditionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_precondition_failures_total",
			Help: "Total number of gateway calls rejected before sending",
		},
		[]string{"kind"},
	)
)

// Journal metrics
var (
	// JournalReplays counts requests answered from the journal by idempotency key.
	JournalReplays = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "journal_idempotent_replays_total",
			Help: "Total number of requests replayed from the transaction journal",
		},
	)

	// JournalAppendFailures counts gateway outcomes that could not be journaled.
	JournalAppendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "journal_append_failures_total",
			Help: "Total number of failed transaction journal appends",
		},
	)

	// DBPoolConnectionsInUse gauges the number of in-use database connections.
	DBPoolConnectionsInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_pool_connections_in_use",
			Help: "Number of database connections currently in use",
		},
	)

	// DBPoolConnectionsIdle gauges the number of idle database connections.
	DBPoolConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_pool_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns an HTTP middleware that records request metrics.
// Side effects: records Prometheus metrics and reads the current time.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip metrics endpoint itself
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := normalizePath(r.URL.Path)

		HTTPRequestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
		HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
	})
}

// normalizePath collapses transaction IDs so the path label stays bounded.
func normalizePath(path string) string {
	if rest, ok := strings.CutPrefix(path, "/transactions/"); ok && rest != "" {
		return "/transactions/{id}"
	}
	return path
}

// RecordGatewayCall records the latency and outcome of one gateway round trip.
// status is the raw response status and is ignored for transport errors.
// Side effects: records Prometheus metrics.
func RecordGatewayCall(kind, outcome, status string, duration time.Duration) {
	GatewayRequestDuration.WithLabelValues(kind, outcome).Observe(duration.Seconds())
	if outcome == OutcomeTransport {
		return
	}
	if status == "" {
		status = "none"
	}
	GatewayResponsesTotal.WithLabelValues(kind, status).Inc()
}

// RecordPreconditionFailure increments the precondition failure counter.
// Side effects: records a Prometheus metric.
func RecordPreconditionFailure(kind string) {
	GatewayPreconditionFailures.WithLabelValues(kind).Inc()
}

// RecordReplay increments the idempotent replay counter.
// Side effects: records a Prometheus metric.
func RecordReplay() {
	JournalReplays.Inc()
}

// RecordJournalFailure increments the journal append failure counter.
// Side effects: records a Prometheus metric.
func RecordJournalFailure() {
	JournalAppendFailures.Inc()
}

// RecordPoolStats publishes connection pool gauges.
// Side effects: records Prometheus metrics.
func RecordPoolStats(inUse, idle int32) {
	DBPoolConnectionsInUse.Set(float64(inUse))
	DBPoolConnectionsIdle.Set(float64(idle))
}
