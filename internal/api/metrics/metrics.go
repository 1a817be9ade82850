// Package metrics defines and registers the custom Prometheus metrics for the
// mealclub API. It is the single source of truth for metric names, labels,
// and help strings.
//
// All metrics are registered with the default registry at package init via
// promauto; HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mealclub"

// ── Session metrics ───────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login outcomes.
// Labels:
//   - action:  "login" or "register"
//   - outcome: "success", "invalid", "locked", "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register/login attempts by outcome.",
	},
	[]string{"action", "outcome"},
)

// GateDecisionsTotal counts Authorization Gate decisions.
// Label:
//   - decision: "allow", "unauthenticated", "forbidden"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of authorization gate decisions.",
	},
	[]string{"decision"},
)

// RouteRedirectsTotal counts page navigations redirected by the route policy.
// Label:
//   - target: "login" or "unauthorized"
var RouteRedirectsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "route_policy_redirects_total",
		Help:      "Total number of browser navigations redirected by the route policy.",
	},
	[]string{"target"},
)

// ── Poll metrics ──────────────────────────────────────────────────────────────

// PollsCreatedTotal counts created polls.
var PollsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "polls_created_total",
		Help:      "Total number of polls created.",
	},
)

// VotesRecordedTotal counts accepted poll responses.
// Labels:
//   - choice: "yes" or "no"
//   - kind:   "new" or "overwrite"
var VotesRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_recorded_total",
		Help:      "Total number of accepted poll responses.",
	},
	[]string{"choice", "kind"},
)

// VotesRejectedTotal counts rejected poll responses.
// Label:
//   - reason: "invalid_choice", "poll_closed", "poll_not_found"
var VotesRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_rejected_total",
		Help:      "Total number of rejected poll responses.",
	},
	[]string{"reason"},
)

// VoteSyncQueueDepth tracks pending vote-history writes per dispatcher worker.
// Label:
//   - worker_id: numeric worker index
var VoteSyncQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "vote_sync_queue_depth",
		Help:      "Current number of vote-history writes pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// VoteSyncDuration measures one member vote-history write.
var VoteSyncDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "vote_sync_duration_seconds",
		Help:      "Duration of a member vote-history write.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)
