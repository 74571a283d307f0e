// Package metrics defines and registers all custom Prometheus metrics for the
// room booking API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Collectors are registered with the default registry through promauto when
// the package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "booking"

// ── Reservation metrics ───────────────────────────────────────────────────────

// ReservationsCreatedTotal counts reservations admitted by the scheduler.
// Label:
//   - scope: the calendar scope in effect ("room" or "global")
var ReservationsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_created_total",
		Help:      "Total number of reservations created.",
	},
	[]string{"scope"},
)

// ReservationConflictsTotal counts requests rejected because the slot was taken.
// Label:
//   - operation: "create" or "update"
var ReservationConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservation_conflicts_total",
		Help:      "Total number of reservation requests rejected by overlap detection.",
	},
	[]string{"operation"},
)

// ReservationOperationDuration measures scheduler operations end to end,
// including lock wait time.
// Labels:
//   - operation: "create", "update" or "delete"
//   - outcome: "ok" or "error"
var ReservationOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reservation_operation_duration_seconds",
		Help:      "Duration of reservation scheduler operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation", "outcome"},
)

// SlotLockWaitsTotal counts slot lock acquisitions.
// Label:
//   - result: "acquired", "busy" or "expired" (lease ran out before the write)
var SlotLockWaitsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "slot_lock_acquisitions_total",
		Help:      "Total number of slot lock attempts, labelled by result.",
	},
	[]string{"result"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected bearer tokens and logins.
// Label:
//   - reason: "revoked", "invalid_or_expired", "missing_subject", "user_not_found", "bad_credentials"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of authentication failures, by reason.",
	},
	[]string{"reason"},
)

// TokensRevokedTotal counts logouts.
var TokensRevokedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_revoked_total",
		Help:      "Total number of revoked access tokens.",
	},
)

// RevokedTokensPurgedTotal counts revocation records removed after expiry.
var RevokedTokensPurgedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "revoked_tokens_purged_total",
		Help:      "Total number of expired revocation records purged.",
	},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of audit events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsTotal counts audit events by outcome.
// Label:
//   - result: "stored", "failed" or "dropped"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of reservation audit events, labelled by outcome.",
	},
	[]string{"result"},
)
