// Package metrics exposes the Prometheus collectors shared by the ledger
// binaries. Collectors register on the default registry at init.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ledger"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	transactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Transactions finalized, by type and terminal status.",
		},
		[]string{"type", "status"},
	)

	transfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Transfer sagas that reached a resting state.",
		},
		[]string{"type", "state"},
	)

	accountServiceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "account_service_requests_total",
			Help:      "Calls to the product service, by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	accountServiceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "account_service_request_duration_seconds",
			Help:      "Latency of calls to the product service.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
		},
		[]string{"name"},
	)

	outboxMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_messages_total",
			Help:      "Outbox relay results.",
		},
		[]string{"result"},
	)

	balanceMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_mutations_total",
			Help:      "Balance mutation attempts on products.",
		},
		[]string{"product_type", "result"},
	)
)

// Outbox relay results
const (
	OutboxPublished  = "published"
	OutboxRetried    = "retried"
	OutboxDeadLetter = "dead_letter"
)

func ObserveHTTPRequest(method, route, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func TransactionFinalized(txType, status string) {
	transactionsTotal.WithLabelValues(txType, status).Inc()
}

func TransferSettled(transferType, state string) {
	transfersTotal.WithLabelValues(transferType, state).Inc()
}

func ObserveAccountServiceCall(operation, outcome string, seconds float64) {
	accountServiceRequests.WithLabelValues(operation, outcome).Inc()
	accountServiceDuration.WithLabelValues(operation).Observe(seconds)
}

// SetBreakerState records the numeric breaker state (0 closed, 1 half-open, 2 open)
func SetBreakerState(name string, state int) {
	breakerState.WithLabelValues(name).Set(float64(state))
}

func OutboxResult(result string) {
	outboxMessagesTotal.WithLabelValues(result).Inc()
}

func BalanceMutation(productType, result string) {
	balanceMutationsTotal.WithLabelValues(productType, result).Inc()
}

// Handler serves the default registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}
