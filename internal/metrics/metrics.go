package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wallet_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// LedgerTransactionsTotal counts submitted transactions by outcome:
	// applied, replayed, rejected or failed.
	LedgerTransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_ledger_transactions_total",
			Help: "Total number of ledger transactions by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	LedgerFallbackCommitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_ledger_fallback_commits_total",
			Help: "Transactions committed without an atomic multi-step unit",
		},
		[]string{"kind"},
	)

	LedgerUnreconciledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wallet_ledger_unreconciled_total",
			Help: "Fallback-mode balance mutations that could not be compensated after a failed log append",
		},
	)

	IdempotencyCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wallet_idempotency_cache_hits_total",
			Help: "Replays answered from the idempotency cache",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wallet_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)

// Outcome labels for LedgerTransactionsTotal.
const (
	OutcomeApplied  = "applied"
	OutcomeReplayed = "replayed"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordTransaction(kind, outcome string) {
	LedgerTransactionsTotal.WithLabelValues(kind, outcome).Inc()
}

func RecordFallbackCommit(kind string) {
	LedgerFallbackCommitsTotal.WithLabelValues(kind).Inc()
}

func RecordUnreconciled() {
	LedgerUnreconciledTotal.Inc()
}

func RecordCacheHit() {
	IdempotencyCacheHitsTotal.Inc()
}

func SetBreakerState(name string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
}
