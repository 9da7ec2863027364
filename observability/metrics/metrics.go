package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ActionsTotal counts submitted actions by name and outcome
// (applied/failed/unrecognized).
var ActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gigchain",
	Name:      "actions_total",
	Help:      "Number of actions submitted to the dispatcher.",
}, []string{"action", "outcome"})

// ConfirmLatencySeconds observes the simulated settlement latency between a
// receipt entering pending state and its confirmation.
var ConfirmLatencySeconds = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "gigchain",
	Name:      "confirm_latency_seconds",
	Help:      "Simulated settlement latency from submission to confirmation.",
	Buckets:   prometheus.DefBuckets,
})

// RPCRequestsTotal counts JSON-RPC requests by method and status.
var RPCRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gigchain",
	Name:      "rpc_requests_total",
	Help:      "Number of JSON-RPC requests served.",
}, []string{"method", "status"})
