package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"auto_repost_instagram/internal/domain"
)

func TestIsMongoURL(t *testing.T) {
	assert.True(t, IsMongoURL("mongodb://localhost:27017"))
	assert.True(t, IsMongoURL("mongodb+srv://cluster.example.net"))
	assert.False(t, IsMongoURL("sqlite3:./data.db"))
	assert.False(t, IsMongoURL(""))
}

func TestUsageUpdate(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	update := usageUpdate(domain.Usage{
		MediaIDs: []string{"1", "2", "1"},
		Hashtags: []string{"a"},
		At:       at,
	})

	addToSet, ok := update["$addToSet"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, bson.M{"$each": []string{"1", "2"}}, addToSet["used_media_ids"])
	assert.Equal(t, bson.M{"$each": []string{"a"}}, addToSet["used_hashtags"])

	set, ok := update["$set"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, at, set["last_upload_at"])
	assert.Equal(t, at, set["updated_at"])
}

func TestUsageUpdate_EmptyUsageKeepsArrays(t *testing.T) {
	update := usageUpdate(domain.Usage{At: time.Now()})
	addToSet := update["$addToSet"].(bson.M)
	assert.Equal(t, bson.M{"$each": []string{}}, addToSet["used_media_ids"])
}

func TestInsertOnlyUpdate(t *testing.T) {
	now := time.Now().UTC()
	update := insertOnlyUpdate("alice", "id-1", now)

	assert.Len(t, update, 1)
	fields := update["$setOnInsert"].(bson.M)
	assert.Equal(t, "id-1", fields["_id"])
	assert.Equal(t, "alice", fields["username"])
	assert.Equal(t, domain.DefaultAccountType, fields["type"])
	assert.Equal(t, []string{}, fields["used_media_ids"])
}

func TestAccountDocument_ToDomain(t *testing.T) {
	at := time.Now().UTC()
	doc := accountDocument{ID: "1", Username: "bob", LastUploadAt: &at, UsedMediaIDs: []string{"m"}}

	account := doc.toDomain()
	require.NotNil(t, account.LastUploadAt)
	assert.Equal(t, at, *account.LastUploadAt)
	assert.NotSame(t, doc.LastUploadAt, account.LastUploadAt)
	assert.Contains(t, account.UsedMediaSet(), "m")
}
