// Package metrics defines and registers all custom Prometheus metrics for the
// adminflow API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and served from /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adminflow"

// ── Sync metrics ──────────────────────────────────────────────────────────────

// SyncPassesTotal counts reconciliation passes.
// Labels:
//   - directory: "github" or "slack"
//   - result: "ok", "fetch_failed", "locked" or "error"
var SyncPassesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_passes_total",
		Help:      "Total number of directory reconciliation passes, by outcome.",
	},
	[]string{"directory", "result"},
)

// MembershipChangesTotal counts successful directory mutations.
// Labels:
//   - directory: "github" or "slack"
//   - op: "add" or "remove"
var MembershipChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "membership_changes_total",
		Help:      "Total number of members added to or removed from external directories.",
	},
	[]string{"directory", "op"},
)

// SyncDuration measures a full pass, roster fetch included.
var SyncDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sync_duration_seconds",
		Help:      "Duration of a reconciliation pass.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	},
	[]string{"directory"},
)

// ── Email metrics ─────────────────────────────────────────────────────────────

// EmailsSentTotal counts delivery attempts.
// Label:
//   - result: "sent" or "failed"
var EmailsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_sent_total",
		Help:      "Total number of notification emails handed to the mail provider.",
	},
	[]string{"result"},
)

// EmailQueueDepth tracks messages waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EmailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "email_queue_depth",
		Help:      "Current number of emails pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Registration metrics ──────────────────────────────────────────────────────

// RegistrationDecisionsTotal counts admin review decisions.
// Label:
//   - status: "APPROVED" or "REJECTED"
var RegistrationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registration_decisions_total",
		Help:      "Total number of registration review decisions.",
	},
	[]string{"status"},
)
