// Package guard authorizes protected operations: it verifies the bearer
// token carried in the request context, resolves the account it names and
// attaches that account to the context.
package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/metrics"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
)

// Decision labels for the guard counter.
const (
	DecisionAllowed        = "allowed"
	DecisionNoToken        = "no_token"
	DecisionInvalidToken   = "invalid_token"
	DecisionUnknownAccount = "unknown_account"
	DecisionError          = "error"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type AccountFinder interface {
	FindOne(ctx context.Context, accountID string) (*models.Account, error)
}

type Guard struct {
	verifier TokenVerifier
	accounts AccountFinder
	logger   logging.Logger
}

func NewGuard(v TokenVerifier, a AccountFinder, l logging.Logger) *Guard {
	return &Guard{
		verifier: v,
		accounts: a,
		logger:   l.With("module", "guard"),
	}
}

// Authorize returns ctx enriched with the caller's account. Missing, invalid
// or expired tokens and tokens naming a removed account fail with
// common.ErrUnauthenticated. Other store failures are returned wrapped.
func (g *Guard) Authorize(ctx context.Context) (context.Context, error) {
	token, ok := TokenFromContext(ctx)
	if !ok {
		return nil, g.reject(ctx, DecisionNoToken, nil)
	}

	accountID, err := g.verifier.Verify(token)
	if err != nil {
		return nil, g.reject(ctx, DecisionInvalidToken, err)
	}

	account, err := g.accounts.FindOne(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, g.reject(ctx, DecisionUnknownAccount, err)
		}
		metrics.RecordGuardDecision(DecisionError)
		g.logger.Error(ctx, "account lookup failed", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("error resolving account: %w", err)
	}

	metrics.RecordGuardDecision(DecisionAllowed)

	return context.WithValue(ctx, accountKey, account), nil
}

func (g *Guard) reject(ctx context.Context, stage string, cause error) error {
	metrics.RecordGuardDecision(stage)
	if cause != nil {
		g.logger.Info(ctx, "request rejected", "stage", stage, "error", cause)
	} else {
		g.logger.Debug(ctx, "request rejected", "stage", stage)
	}
	return common.ErrUnauthenticated
}

// Protect wraps handler so that it only runs for an authorized caller.
// The handler receives the enriched context; use AccountFromContext to read
// the caller. A rejection is returned as is and never retried.
func Protect[T any](g *Guard, handler func(ctx context.Context) (T, error)) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		ctx, err := g.Authorize(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		return handler(ctx)
	}
}

// AccountFromContext returns the account attached by Authorize.
func AccountFromContext(ctx context.Context) (*models.Account, bool) {
	a, ok := ctx.Value(accountKey).(*models.Account)
	return a, ok && a != nil
}
