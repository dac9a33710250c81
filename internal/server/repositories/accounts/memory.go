package accounts

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
)

// MemoryRepository keeps accounts in process memory and enforces the same
// uniqueness rules as the database schema. Records are cloned on the way in
// and out.
type MemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[string]*models.Account)}
}

func (r *MemoryRepository) Create(_ context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.ID]; ok {
		return nil, common.ErrorInternal
	}
	if err := r.checkUnique(account); err != nil {
		return nil, err
	}

	r.accounts[account.ID] = account.Clone()
	return account.Clone(), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a.Clone(), nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	return r.find(func(a *models.Account) bool { return a.Email == email })
}

func (r *MemoryRepository) GetByBiometricKey(_ context.Context, key string) (*models.Account, error) {
	return r.find(func(a *models.Account) bool {
		return a.BiometricKey != nil && *a.BiometricKey == key
	})
}

func (r *MemoryRepository) Update(_ context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.accounts[account.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if err := r.checkUnique(account); err != nil {
		return nil, err
	}

	stored := account.Clone()
	stored.CreatedAt = current.CreatedAt
	r.accounts[account.ID] = stored
	return stored.Clone(), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.accounts, id)
	return a, nil
}

func (r *MemoryRepository) find(match func(*models.Account) bool) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if match(a) {
			return a.Clone(), nil
		}
	}
	return nil, common.ErrorNotFound
}

// checkUnique must be called with mu held.
func (r *MemoryRepository) checkUnique(account *models.Account) error {
	for id, other := range r.accounts {
		if id == account.ID {
			continue
		}
		if other.Email == account.Email {
			return common.ErrDuplicateAccount
		}
		if account.BiometricKey != nil && other.BiometricKey != nil &&
			*other.BiometricKey == *account.BiometricKey {
			return common.ErrDuplicateBiometricKey
		}
	}
	return nil
}
