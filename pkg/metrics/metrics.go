// Package metrics provides Prometheus instrumentation for the arena HTTP
// surface: issued credentials, guard rejections and request latency.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CredentialsIssued counts cookies attached to responses, labeled by
	// cookie name.
	CredentialsIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_credentials_issued_total",
		Help: "Total number of credential cookies issued",
	}, []string{"name"})

	// GuardRejections counts requests stopped by a guard
	GuardRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_guard_rejections_total",
		Help: "Total number of requests rejected by a guard",
	}, []string{"guard"})

	// RequestDuration records handler latency in seconds per operation.
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arena_request_duration_seconds",
		Help:    "Handler latency in seconds",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"operation", "status"})

	// SessionCacheLookups tracks session cache lookups by outcome
	SessionCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_session_cache_lookups_total",
		Help: "Session cache lookups",
	}, []string{"result"}) // result = "hit", "miss"
)

func init() {
	prometheus.MustRegister(
		CredentialsIssued,
		GuardRejections,
		RequestDuration,
		SessionCacheLookups,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
