// Package metrics registers the Prometheus collectors shared by the server and
// the client core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	rpcRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "superapp_rpc_requests_total",
		Help: "Total RPC calls handled, by procedure and code",
	}, []string{"procedure", "code"})

	rpcDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "superapp_rpc_duration_seconds",
		Help:    "RPC latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"procedure"})

	payments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "superapp_payments_total",
		Help: "Payment intents processed, by type and result",
	}, []string{"type", "result"})

	outboxQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "superapp_outbox_queued_total",
		Help: "Chat messages written to the offline outbox",
	})

	outboxReplayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "superapp_outbox_replayed_total",
		Help: "Queued chat messages replayed, by result",
	}, []string{"result"})

	refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "superapp_refreshes_total",
		Help: "Client data refreshes, by kind and result",
	}, []string{"kind", "result"})
)

// ObserveRPC records one handled RPC.
func ObserveRPC(procedure, code string, seconds float64) {
	rpcRequests.WithLabelValues(procedure, code).Inc()
	rpcDuration.WithLabelValues(procedure).Observe(seconds)
}

// ObservePayment records one processed payment intent.
func ObservePayment(paymentType, result string) {
	payments.WithLabelValues(paymentType, result).Inc()
}

// MessageQueued records a message written to the outbox.
func MessageQueued() {
	outboxQueued.Inc()
}

// MessageReplayed records one replay attempt.
func MessageReplayed(result string) {
	outboxReplayed.WithLabelValues(result).Inc()
}

// ObserveRefresh records one refresh attempt ("full" or "chats").
func ObserveRefresh(kind, result string) {
	refreshes.WithLabelValues(kind, result).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
