package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto_repost_instagram/internal/domain"
)

func TestAccountRepository_Ledger(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()

	created, err := repo.Upsert(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = repo.Upsert(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, created)

	usage := domain.Usage{MediaIDs: []string{"1", "2"}, Hashtags: []string{"x"}, At: time.Now()}
	require.NoError(t, repo.MergeUsage(ctx, "alice", usage))
	require.NoError(t, repo.MergeUsage(ctx, "alice", usage))

	account, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, account.UsedMediaIDs)
	assert.Equal(t, []string{"x"}, account.UsedHashtags)

	// returned values are copies
	account.UsedMediaIDs = append(account.UsedMediaIDs, "mutated")
	again, _ := repo.GetByUsername(ctx, "alice")
	assert.Len(t, again.UsedMediaIDs, 2)

	assert.ErrorIs(t, repo.MergeUsage(ctx, "ghost", usage), domain.ErrLedgerInconsistency)

	require.NoError(t, repo.Delete(ctx, "alice"))
	gone, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestPostRepository_ListRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository()

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Save(ctx, &domain.PostRecord{Username: name}))
	}

	records, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c", records[0].Username)
	assert.Equal(t, "b", records[1].Username)
}
