// Package accounts is the credential store: account records keyed by id,
// unique email and optional unique biometric key.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
)

// Repository persists accounts. Lookups return common.ErrorNotFound when no
// record matches. Create and Update report uniqueness violations as
// common.ErrDuplicateAccount (email) or common.ErrDuplicateBiometricKey.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByBiometricKey(ctx context.Context, key string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) (*models.Account, error)
	Delete(ctx context.Context, id string) (*models.Account, error)
}
