package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto_repost_instagram/internal/domain"
	"auto_repost_instagram/internal/repository/memory"
)

func TestAccountManager_IngestAccountList(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAccountRepository()
	manager := NewAccountManager(repo)

	_, err := repo.Upsert(ctx, "existing")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "account_list.txt")
	require.NoError(t, os.WriteFile(path, []byte("alice\n\n  @bob \nexisting\nalice\n"), 0644))

	created, err := manager.IngestAccountList(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)

	accounts, err := manager.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 3)
}

func TestAccountManager_IngestMissingFile(t *testing.T) {
	manager := NewAccountManager(memory.NewAccountRepository())

	created, err := manager.IngestAccountList(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestAccountManager_GetAndDelete(t *testing.T) {
	ctx := context.Background()
	manager := NewAccountManager(memory.NewAccountRepository())

	created, err := manager.RegisterUsernames(ctx, []string{"carol", " ", "@carol"})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	account, err := manager.GetAccount(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAccountType, account.Type)

	require.NoError(t, manager.DeleteAccount(ctx, "carol"))

	_, err = manager.GetAccount(ctx, "carol")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, manager.DeleteAccount(ctx, "carol"), domain.ErrNotFound)
}
