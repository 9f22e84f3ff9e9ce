package usecase

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"auto_repost_instagram/internal/domain"
	"auto_repost_instagram/internal/logger"
)

// AccountManager manages the source accounts reposted from
type AccountManager struct {
	accountRepo domain.AccountRepository
}

// NewAccountManager creates a new account manager
func NewAccountManager(accountRepo domain.AccountRepository) *AccountManager {
	return &AccountManager{
		accountRepo: accountRepo,
	}
}

// RegisterUsernames upserts each non-blank username and returns how many were new
func (m *AccountManager) RegisterUsernames(ctx context.Context, usernames []string) (int, error) {
	created := 0
	for _, raw := range usernames {
		username := normalizeUsername(raw)
		if username == "" {
			continue
		}

		isNew, err := m.accountRepo.Upsert(ctx, username)
		if err != nil {
			return created, fmt.Errorf("failed to register account %s: %w", username, err)
		}
		if isNew {
			created++
			logger.Info().Printf("Registered source account %s", username)
		}
	}
	return created, nil
}

// IngestAccountList registers the usernames listed one per line in path and
// truncates the file once every line is stored. A missing file is not an error.
func (m *AccountManager) IngestAccountList(ctx context.Context, path string) (int, error) {
	usernames, err := readAccountList(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(usernames) == 0 {
		return 0, nil
	}

	created, err := m.RegisterUsernames(ctx, usernames)
	if err != nil {
		return created, err
	}

	if err := os.Truncate(path, 0); err != nil {
		return created, fmt.Errorf("failed to truncate account list: %w", err)
	}
	logger.Info().Printf("Ingested %d usernames from %s (%d new)", len(usernames), path, created)
	return created, nil
}

// ListAccounts returns all source accounts
func (m *AccountManager) ListAccounts(ctx context.Context) ([]*domain.SourceAccount, error) {
	accounts, err := m.accountRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// GetAccount returns the account or an error wrapping domain.ErrNotFound
func (m *AccountManager) GetAccount(ctx context.Context, username string) (*domain.SourceAccount, error) {
	account, err := m.accountRepo.GetByUsername(ctx, normalizeUsername(username))
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %s: %w", username, domain.ErrNotFound)
	}
	return account, nil
}

// DeleteAccount removes an account and its usage history
func (m *AccountManager) DeleteAccount(ctx context.Context, username string) error {
	if _, err := m.GetAccount(ctx, username); err != nil {
		return err
	}
	if err := m.accountRepo.Delete(ctx, normalizeUsername(username)); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

func readAccountList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var usernames []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if username := normalizeUsername(scanner.Text()); username != "" {
			usernames = append(usernames, username)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read account list: %w", err)
	}
	return usernames, nil
}

func normalizeUsername(raw string) string {
	return strings.TrimPrefix(strings.TrimSpace(raw), "@")
}
