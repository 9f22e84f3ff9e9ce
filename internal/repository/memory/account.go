package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"auto_repost_instagram/internal/domain"
)

// AccountRepository is an in-memory implementation of AccountRepository
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.SourceAccount
}

// NewAccountRepository creates a new in-memory account repository
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[string]*domain.SourceAccount),
	}
}

// GetAll returns copies of all accounts ordered by creation time
func (r *AccountRepository) GetAll(ctx context.Context) ([]*domain.SourceAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]*domain.SourceAccount, 0, len(r.accounts))
	for _, account := range r.accounts {
		accounts = append(accounts, account.Clone())
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].Username < accounts[j].Username
		}
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})

	return accounts, nil
}

// GetByUsername returns a copy of the account or nil
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domain.SourceAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.accounts[username].Clone(), nil
}

// Upsert creates the account unless it exists
func (r *AccountRepository) Upsert(ctx context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[username]; exists {
		return false, nil
	}

	now := time.Now()
	r.accounts[username] = &domain.SourceAccount{
		ID:        uuid.NewString(),
		Username:  username,
		Type:      domain.DefaultAccountType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return true, nil
}

// MergeUsage unions usage into the stored account
func (r *AccountRepository) MergeUsage(ctx context.Context, username string, usage domain.Usage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, exists := r.accounts[username]
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrLedgerInconsistency, username)
	}

	account.ApplyUsage(usage)
	return nil
}

// Delete removes an account
func (r *AccountRepository) Delete(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.accounts, username)
	return nil
}
