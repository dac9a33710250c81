package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterMetrics(reg)

	RecordAuthAttempt(MethodPassword, OutcomeSuccess)
	RecordGuardDecision("allowed")
	RecordAccountMutation(OperationRegister, OutcomeSuccess)
	RecordHTTPRequest("/graphql", "200", 10*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["gophaccounts_auth_attempts_total"])
	assert.True(t, names["gophaccounts_guard_decisions_total"])
	assert.True(t, names["gophaccounts_account_mutations_total"])
	assert.True(t, names["gophaccounts_http_request_duration_seconds"])

	assert.Panics(t, func() { RegisterMetrics(reg) }, "double registration must panic")
}

func TestRecordAuthAttempt(t *testing.T) {
	before := testutil.ToFloat64(AuthAttempts.WithLabelValues(MethodBiometric, OutcomeFailure))
	RecordAuthAttempt(MethodBiometric, OutcomeFailure)
	after := testutil.ToFloat64(AuthAttempts.WithLabelValues(MethodBiometric, OutcomeFailure))

	assert.Equal(t, before+1, after)
}

func TestRecordAccountMutation(t *testing.T) {
	before := testutil.ToFloat64(AccountMutations.WithLabelValues(OperationRemove, OutcomeError))
	RecordAccountMutation(OperationRemove, OutcomeError)
	after := testutil.ToFloat64(AccountMutations.WithLabelValues(OperationRemove, OutcomeError))

	assert.Equal(t, before+1, after)
}

func TestRecordHTTPRequest(t *testing.T) {
	RecordHTTPRequest("/healthz", "200", time.Millisecond)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(HTTPRequestDuration), 1)
}
