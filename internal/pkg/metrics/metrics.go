// Package metrics defines and registers all custom Prometheus metrics for the
// account service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// ── Account operations ───────────────────────────────────────────────────────

// OperationsTotal counts account service calls by outcome.
// Labels:
//   - operation: register, login, logout, reset_password, toggle_sync, edit_user_info
//   - result: "ok" or the error kind (e.g. "duplicate_username", "invalid_credentials")
var OperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of account operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// OperationDuration measures account operations end-to-end, including
// password hashing.
// Label:
//   - operation: see OperationsTotal
var OperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of account operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// TokenRejectionsTotal counts bearer tokens that failed to decode.
// Label:
//   - reason: missing, malformed, bad_signature, expired, missing_claim
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Total number of rejected bearer tokens, by reason.",
	},
	[]string{"reason"},
)

// ── Activity audit trail ─────────────────────────────────────────────────────

// ActivityRecordedTotal counts audit events persisted by the dispatcher.
// Label:
//   - kind: activity kind (e.g. "login", "renamed")
var ActivityRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_recorded_total",
		Help:      "Total number of account activity events persisted.",
	},
	[]string{"kind"},
)

// ActivityErrorsTotal counts audit events that could not be persisted.
var ActivityErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_errors_total",
		Help:      "Total number of account activity events that failed to persist.",
	},
)

// ActivityDroppedTotal counts audit events dropped because a worker queue was full.
var ActivityDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_dropped_total",
		Help:      "Total number of account activity events dropped on a full queue.",
	},
)

// ActivityQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Current number of activity events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
