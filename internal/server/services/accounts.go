// Package services implements the account use cases: session issuance
// (register, login, biometric login and registration) and profile
// mutation (find, update, remove).
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/auth"
	"github.com/dmitrijs2005/gophaccounts/internal/server/config"
	"github.com/dmitrijs2005/gophaccounts/internal/server/metrics"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("gophaccounts/services")

// dummyPassword is hashed once and verified against when a login names an
// unknown email, so both branches pay for one hash comparison.
const dummyPassword = "gophaccounts-dummy-password"

// TokenMinter issues session tokens for an account id.
type TokenMinter interface {
	Mint(accountID string) (string, error)
}

// Session is the result of a successful login.
type Session struct {
	AccountID   string
	Email       string
	AccessToken string
}

// AccountPatch lists the profile fields to change. Nil fields are left as is.
type AccountPatch struct {
	Email    *string
	Password *string
}

type AccountService struct {
	db                      *sql.DB
	repomanager             repomanager.RepositoryManager
	hasher                  auth.PasswordHasher
	tokens                  TokenMinter
	allowBiometricOverwrite bool
	logger                  logging.Logger
	now                     func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher,
	tokens TokenMinter, cfg *config.Config, logger logging.Logger) *AccountService {
	return &AccountService{
		db:                      db,
		repomanager:             m,
		hasher:                  hasher,
		tokens:                  tokens,
		allowBiometricOverwrite: cfg.AllowBiometricOverwrite,
		logger:                  logger.With("module", "services/accounts"),
		now:                     func() time.Time { return time.Now().UTC() },
	}
}

func (s *AccountService) accounts() accounts.Repository {
	return s.repomanager.Accounts(s.db)
}

// Register creates an account with no biometric key.
func (s *AccountService) Register(ctx context.Context, email, password string) (account *models.Account, err error) {
	ctx, span := tracer.Start(ctx, "accounts.register")
	defer func() {
		endSpan(span, err)
		metrics.RecordAccountMutation(metrics.OperationRegister, outcome(err))
	}()

	repo := s.accounts()

	_, err = repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateAccount
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error searching account: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	now := s.now()
	account, err = repo.Create(ctx, &models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	span.SetAttributes(attribute.String("account.id", account.ID))
	s.logger.Info(ctx, "account registered", "account_id", account.ID)

	return account, nil
}

// Login checks email and password and issues a session. Unknown email and
// wrong password fail with the same error.
func (s *AccountService) Login(ctx context.Context, email, password string) (session *Session, err error) {
	ctx, span := tracer.Start(ctx, "accounts.login")
	defer func() {
		endSpan(span, err)
		metrics.RecordAuthAttempt(metrics.MethodPassword, authOutcome(err))
	}()

	account, err := s.accounts().GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching account: %w", err)
	}

	if account == nil {
		if _, verr := s.hasher.Verify(password, s.getDummyHash()); verr != nil {
			s.logger.Debug(ctx, "dummy hash verification failed", "error", verr)
		}
		return nil, common.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	return s.issue(ctx, account)
}

// BiometricLogin issues a session for the account holding key.
func (s *AccountService) BiometricLogin(ctx context.Context, key string) (session *Session, err error) {
	ctx, span := tracer.Start(ctx, "accounts.biometric_login")
	defer func() {
		endSpan(span, err)
		metrics.RecordAuthAttempt(metrics.MethodBiometric, authOutcome(err))
	}()

	account, err := s.accounts().GetByBiometricKey(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidBiometricKey
		}
		return nil, fmt.Errorf("error searching account: %w", err)
	}

	return s.issue(ctx, account)
}

// RegisterBiometric attaches key to the account. A key already held by any
// account, the caller's included, is rejected.
func (s *AccountService) RegisterBiometric(ctx context.Context, accountID, key string) (account *models.Account, err error) {
	ctx, span := tracer.Start(ctx, "accounts.register_biometric",
		trace.WithAttributes(attribute.String("account.id", accountID)))
	defer func() {
		endSpan(span, err)
		metrics.RecordAccountMutation(metrics.OperationRegisterBiometric, outcome(err))
	}()

	repo := s.accounts()

	_, err = repo.GetByBiometricKey(ctx, key)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateBiometricKey
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error searching biometric key: %w", err)
	}

	account, err = repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("error searching account: %w", err)
	}

	if account.HasBiometricKey() && !s.allowBiometricOverwrite {
		return nil, common.ErrBiometricKeyAlreadySet
	}

	account.BiometricKey = &key
	account.UpdatedAt = s.now()

	account, err = repo.Update(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("error updating account: %w", err)
	}

	s.logger.Info(ctx, "biometric key registered", "account_id", account.ID)

	return account, nil
}

// FindOne returns the account with the given id.
func (s *AccountService) FindOne(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.accounts().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("error searching account: %w", err)
	}
	return account, nil
}

// Update applies patch to the account. UpdatedAt is refreshed even when the
// patch changes nothing.
func (s *AccountService) Update(ctx context.Context, accountID string, patch AccountPatch) (account *models.Account, err error) {
	ctx, span := tracer.Start(ctx, "accounts.update",
		trace.WithAttributes(attribute.String("account.id", accountID)))
	defer func() {
		endSpan(span, err)
		metrics.RecordAccountMutation(metrics.OperationUpdate, outcome(err))
	}()

	repo := s.accounts()

	account, err = repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("error searching account: %w", err)
	}

	if patch.Email != nil && *patch.Email != account.Email {
		other, err := repo.GetByEmail(ctx, *patch.Email)
		switch {
		case err == nil && other.ID != account.ID:
			return nil, common.ErrDuplicateAccount
		case err != nil && !errors.Is(err, common.ErrorNotFound):
			return nil, fmt.Errorf("error searching account: %w", err)
		}
		account.Email = *patch.Email
	}

	if patch.Password != nil {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		account.PasswordHash = hash
	}

	account.UpdatedAt = s.now()

	account, err = repo.Update(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("error updating account: %w", err)
	}

	return account, nil
}

// Remove deletes the account and returns the deleted record. Tokens issued
// to it stop passing the access guard.
func (s *AccountService) Remove(ctx context.Context, accountID string) (account *models.Account, err error) {
	ctx, span := tracer.Start(ctx, "accounts.remove",
		trace.WithAttributes(attribute.String("account.id", accountID)))
	defer func() {
		endSpan(span, err)
		metrics.RecordAccountMutation(metrics.OperationRemove, outcome(err))
	}()

	account, err = s.accounts().Delete(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("error deleting account: %w", err)
	}

	s.logger.Info(ctx, "account removed", "account_id", account.ID)

	return account, nil
}

func (s *AccountService) issue(ctx context.Context, account *models.Account) (*Session, error) {
	token, err := s.tokens.Mint(account.ID)
	if err != nil {
		return nil, fmt.Errorf("error minting token: %w", err)
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("account.id", account.ID))

	return &Session{AccountID: account.ID, Email: account.Email, AccessToken: token}, nil
}

func (s *AccountService) getDummyHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.logger.Error(context.Background(), "error hashing dummy password", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// outcome classifies err for the mutation counter: rejected requests are
// failures, anything unexpected is an error.
func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, common.ErrDuplicateAccount),
		errors.Is(err, common.ErrDuplicateBiometricKey),
		errors.Is(err, common.ErrBiometricKeyAlreadySet),
		errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrorValidation):
		return metrics.OutcomeFailure
	default:
		return metrics.OutcomeError
	}
}

func authOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidBiometricKey):
		return metrics.OutcomeFailure
	default:
		return metrics.OutcomeError
	}
}
