package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/auth"
	"github.com/dmitrijs2005/gophaccounts/internal/server/metrics"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	accounts map[string]*models.Account
	err      error
	calls    int
}

func (f *fakeAccounts) FindOne(_ context.Context, id string) (*models.Account, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func newGuard(t *testing.T) (*Guard, *auth.TokenCodec, *fakeAccounts) {
	t.Helper()
	codec := auth.NewTokenCodec("guard-secret", time.Hour)
	accounts := &fakeAccounts{accounts: map[string]*models.Account{
		"a-1": {ID: "a-1", Email: "alice@example.com"},
	}}
	return NewGuard(codec, accounts, logging.Discard()), codec, accounts
}

func mint(t *testing.T, c *auth.TokenCodec, id string) string {
	t.Helper()
	tok, err := c.Mint(id)
	require.NoError(t, err)
	return tok
}

func TestAuthorize_Success(t *testing.T) {
	g, codec, _ := newGuard(t)
	before := testutil.ToFloat64(metrics.GuardDecisions.WithLabelValues(DecisionAllowed))

	ctx, err := g.Authorize(WithToken(context.Background(), mint(t, codec, "a-1")))
	require.NoError(t, err)

	a, ok := AccountFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", a.Email)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.GuardDecisions.WithLabelValues(DecisionAllowed)))
}

func TestAuthorize_Rejections(t *testing.T) {
	g, codec, accounts := newGuard(t)
	expired := auth.NewTokenCodec("guard-secret", -time.Minute)
	foreign := auth.NewTokenCodec("other-secret", time.Hour)

	tests := []struct {
		name     string
		ctx      context.Context
		decision string
	}{
		{"no token", context.Background(), DecisionNoToken},
		{"malformed", WithToken(context.Background(), "garbage"), DecisionInvalidToken},
		{"expired", WithToken(context.Background(), mint(t, expired, "a-1")), DecisionInvalidToken},
		{"wrong secret", WithToken(context.Background(), mint(t, foreign, "a-1")), DecisionInvalidToken},
		{"removed account", WithToken(context.Background(), mint(t, codec, "gone")), DecisionUnknownAccount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(metrics.GuardDecisions.WithLabelValues(tt.decision))

			ctx, err := g.Authorize(tt.ctx)
			require.ErrorIs(t, err, common.ErrUnauthenticated)
			assert.Nil(t, ctx)
			assert.Equal(t, before+1, testutil.ToFloat64(metrics.GuardDecisions.WithLabelValues(tt.decision)))
		})
	}

	// the store is only consulted once the token checks out
	assert.Equal(t, 1, accounts.calls)
}

func TestAuthorize_StoreFailurePropagates(t *testing.T) {
	g, codec, accounts := newGuard(t)
	accounts.err = errors.New("db down")

	_, err := g.Authorize(WithToken(context.Background(), mint(t, codec, "a-1")))
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrUnauthenticated))
	assert.Contains(t, err.Error(), "db down")
}

func TestProtect(t *testing.T) {
	g, codec, _ := newGuard(t)

	called := 0
	me := Protect(g, func(ctx context.Context) (*models.Account, error) {
		called++
		a, _ := AccountFromContext(ctx)
		return a, nil
	})

	a, err := me(WithToken(context.Background(), mint(t, codec, "a-1")))
	require.NoError(t, err)
	assert.Equal(t, "a-1", a.ID)

	a, err = me(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthenticated)
	assert.Nil(t, a)
	assert.Equal(t, 1, called, "handler must not run for rejected callers")
}

func TestAccountFromContext_Missing(t *testing.T) {
	_, ok := AccountFromContext(context.Background())
	assert.False(t, ok)
}
