// Package metrics defines the server's Prometheus instrumentation: HTTP
// request counts and latencies, vault save verdicts, and rollback
// recovery gaps observed by the ledger endpoints.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the server's collectors. All fields are safe for
// concurrent use.
type Metrics struct {
	// RequestsTotal counts finished HTTP requests by method, route
	// pattern, and status code.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration observes request latency by route pattern.
	RequestDuration *prometheus.HistogramVec

	// VaultSavesTotal counts save verdicts by status ("Ok", "Outdated").
	VaultSavesTotal *prometheus.CounterVec

	// RecoveryGapsTotal counts accepted saves that skipped revisions,
	// i.e. rollback recoveries acknowledged by the server.
	RecoveryGapsTotal prometheus.Counter
}

// NewMetrics registers the collectors on reg and returns them. Passing
// prometheus.DefaultRegisterer wires them to the default /metrics
// exposition.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vault_http_requests_total",
			Help: "Finished HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "code"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vault_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),

		VaultSavesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vault_saves_total",
			Help: "Vault save attempts by verdict.",
		}, []string{"status"}),

		RecoveryGapsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "vault_recovery_gaps_total",
			Help: "Accepted saves that left a revision gap (rollback recoveries).",
		}),
	}
}
