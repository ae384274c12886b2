// Package metrics exposes Prometheus collectors for the ledger service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nxt_ledger"

// Transaction outcomes
const (
	STATUS_COMMITTED = "committed"
	STATUS_REVERTED  = "reverted"
	STATUS_FAILED    = "failed"
)

// Rejection reasons for mutating requests
const (
	REJECTED_RATE_LIMITED = "rate_limited"
	REJECTED_DENIED       = "denied"
)

var Transactions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "chain",
	Name:      "transactions_total",
	Help:      "Submitted transactions by method and outcome.",
}, []string{"method", "status"})

var Reverts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "chain",
	Name:      "reverts_total",
	Help:      "Reverted transactions by revert reason.",
}, []string{"reason"})

var Sequence = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "chain",
	Name:      "sequence",
	Help:      "Sequence number of the last committed transaction.",
})

var EventsPublished = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "emitter",
	Name:      "events_published_total",
	Help:      "Ledger events relayed to the message broker.",
})

var PublishCursor = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "emitter",
	Name:      "publish_cursor",
	Help:      "Sequence of the last transaction whose events were all published.",
})

var RequestsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_rejected_total",
	Help:      "Mutating requests rejected before reaching the ledger.",
}, []string{"reason"})

var RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route and status.",
	Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
}, []string{"method", "route", "status"})

// ObserveTransaction records the outcome of one submitted transaction.
// A revert reason is only recorded for reverted transactions.
func ObserveTransaction(method, status, reason string) {
	Transactions.WithLabelValues(method, status).Inc()
	if status == STATUS_REVERTED && reason != "" {
		Reverts.WithLabelValues(reason).Inc()
	}
}

// ObserveRequest records the latency of one HTTP request
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
