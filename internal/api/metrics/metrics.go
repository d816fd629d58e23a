// Package metrics defines and registers the custom Prometheus metrics of the
// bookkeeper API. HTTP request metrics come from echoprometheus under the
// same Namespace. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every bookkeeper metric name.
const Namespace = "bookkeeper"

// ── Store metrics ─────────────────────────────────────────────────────────────

// StoreOperationsTotal counts document store round trips.
// Labels:
//   - backend: "memory", "jsonbin", "mongo" or "redis"
//   - op: "load", "save" or "ping"
//   - result: "ok", "conflict" or "error"
var StoreOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "store_operations_total",
		Help:      "Total number of document store operations, by backend, operation and result.",
	},
	[]string{"backend", "op", "result"},
)

// StoreOperationDuration measures document store latency.
var StoreOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "store_operation_duration_seconds",
		Help:      "Duration of document store operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"backend", "op"},
)

// IdempotencyTotal counts idempotency key lookups.
// Label:
//   - result: "hit" (record already created) or "miss"
var IdempotencyTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "idempotency_lookups_total",
		Help:      "Total number of idempotency key lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Ledger metrics ────────────────────────────────────────────────────────────

// RecordsCreatedTotal counts newly created ledger records.
// Label:
//   - kind: "session", "sale", "expense" or "debt"
var RecordsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "records_created_total",
		Help:      "Total number of ledger records created, by kind.",
	},
	[]string{"kind"},
)

// ReportsGeneratedTotal counts rendered reports and exports.
// Label:
//   - format: "text", "sales", "expenses" or "debts"
var ReportsGeneratedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "reports_generated_total",
		Help:      "Total number of reports and CSV exports generated.",
	},
	[]string{"format"},
)
