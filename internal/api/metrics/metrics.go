// Package metrics defines the Prometheus metrics exported by the auth service.
// All metrics are registered with the default registry via promauto and are
// served on /metrics alongside the echoprometheus HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "authcore"

// ── Authentication gate ───────────────────────────────────────────────────────

// SignupsTotal counts signup attempts.
// Label:
//   - result: "created", "duplicate_username", "duplicate_email",
//     "invalid_admin_token", "invalid_input" or "error"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "throttled" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// LoginDuration measures login handling including password verification.
var LoginDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "login_duration_seconds",
		Help:      "Duration of login requests, dominated by password hashing.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Authorization filter ──────────────────────────────────────────────────────

// TokenValidationsTotal counts token checks performed by the filter.
// Label:
//   - result: "valid", or the failure kind ("malformed", "invalid_signature",
//     "expired", "unsupported_algorithm", "missing_token")
var TokenValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_validations_total",
		Help:      "Total number of bearer token validations, by result.",
	},
	[]string{"result"},
)

// AccessDeniedTotal counts requests rejected by route guards.
// Label:
//   - reason: "unauthenticated" or "forbidden"
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of requests rejected by authorization guards.",
	},
	[]string{"reason"},
)
