package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/dbx"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	emailConstraint        = "accounts_email_key"
	biometricKeyConstraint = "accounts_biometric_key_key"

	accountColumns = `id, email, password_hash, biometric_key, created_at, updated_at`
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	query :=
		`INSERT INTO accounts (id, email, password_hash, biometric_key, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING ` + accountColumns

	row := r.db.QueryRowContext(ctx, query,
		account.ID, account.Email, account.PasswordHash, nullString(account.BiometricKey),
		account.CreatedAt, account.UpdatedAt)

	created, err := scanAccount(row)
	if err != nil {
		return nil, mapError(err)
	}

	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) GetByBiometricKey(ctx context.Context, key string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE biometric_key = $1`
	return r.getOne(ctx, query, key)
}

func (r *PostgresRepository) Update(ctx context.Context, account *models.Account) (*models.Account, error) {

	query :=
		`UPDATE accounts
		 SET email = $2, password_hash = $3, biometric_key = $4, updated_at = $5
		 WHERE id = $1
		 RETURNING ` + accountColumns

	row := r.db.QueryRowContext(ctx, query,
		account.ID, account.Email, account.PasswordHash, nullString(account.BiometricKey),
		account.UpdatedAt)

	updated, err := scanAccount(row)
	if err != nil {
		return nil, mapError(err)
	}

	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (*models.Account, error) {
	query := `DELETE FROM accounts WHERE id = $1 RETURNING ` + accountColumns
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, mapError(err)
	}
	return account, nil
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var (
		a   models.Account
		key sql.NullString
	)

	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &key, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}

	if key.Valid {
		a.BiometricKey = &key.String
	}

	return &a, nil
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case emailConstraint:
			return common.ErrDuplicateAccount
		case biometricKeyConstraint:
			return common.ErrDuplicateBiometricKey
		}
	}

	return fmt.Errorf("db error: %w", err)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
