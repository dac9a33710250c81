// Package metrics defines the Prometheus collectors of the account server.
// Collectors are package-level; RegisterMetrics attaches them to a registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

// Authentication methods.
const (
	MethodPassword  = "password"
	MethodBiometric = "biometric"
)

// Account mutations.
const (
	OperationRegister          = "register"
	OperationRegisterBiometric = "register_biometric"
	OperationUpdate            = "update"
	OperationRemove            = "remove"
)

// AuthAttempts counts login attempts by method and outcome.
var AuthAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gophaccounts_auth_attempts_total",
		Help: "Total number of login attempts",
	},
	[]string{"method", "outcome"},
)

// GuardDecisions counts access guard decisions. Rejections are labelled with
// the stage that failed.
var GuardDecisions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gophaccounts_guard_decisions_total",
		Help: "Total number of access guard decisions",
	},
	[]string{"outcome"},
)

// AccountMutations counts account mutations by operation and outcome.
var AccountMutations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gophaccounts_account_mutations_total",
		Help: "Total number of account mutations",
	},
	[]string{"operation", "outcome"},
)

// HTTPRequestDuration observes HTTP request latency.
var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "gophaccounts_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"path", "code"},
)

// RegisterMetrics registers the server collectors with reg.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(AuthAttempts)
	reg.MustRegister(GuardDecisions)
	reg.MustRegister(AccountMutations)
	reg.MustRegister(HTTPRequestDuration)
}

func RecordAuthAttempt(method, outcome string) {
	AuthAttempts.WithLabelValues(method, outcome).Inc()
}

func RecordGuardDecision(outcome string) {
	GuardDecisions.WithLabelValues(outcome).Inc()
}

func RecordAccountMutation(operation, outcome string) {
	AccountMutations.WithLabelValues(operation, outcome).Inc()
}

func RecordHTTPRequest(path, code string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(path, code).Observe(d.Seconds())
}
