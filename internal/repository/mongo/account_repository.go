package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"auto_repost_instagram/internal/domain"
)

type accountDocument struct {
	ID           string     `bson:"_id"`
	Username     string     `bson:"username"`
	Type         string     `bson:"type"`
	LastUploadAt *time.Time `bson:"last_upload_at,omitempty"`
	UsedMediaIDs []string   `bson:"used_media_ids"`
	UsedHashtags []string   `bson:"used_hashtags"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
}

func (d accountDocument) toDomain() *domain.SourceAccount {
	account := &domain.SourceAccount{
		ID:           d.ID,
		Username:     d.Username,
		Type:         d.Type,
		UsedMediaIDs: d.UsedMediaIDs,
		UsedHashtags: d.UsedHashtags,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.LastUploadAt != nil {
		at := *d.LastUploadAt
		account.LastUploadAt = &at
	}
	return account
}

// AccountRepository implements domain.AccountRepository on a MongoDB collection
type AccountRepository struct {
	collection *mongodriver.Collection
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(mc *Client) *AccountRepository {
	return &AccountRepository{collection: mc.Database.Collection(accountsCollection)}
}

// GetAll returns every account ordered by creation time
func (r *AccountRepository) GetAll(ctx context.Context) ([]*domain.SourceAccount, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "username", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []accountDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}

	accounts := make([]*domain.SourceAccount, 0, len(docs))
	for _, doc := range docs {
		accounts = append(accounts, doc.toDomain())
	}
	return accounts, nil
}

// GetByUsername returns the account or nil when absent
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domain.SourceAccount, error) {
	var doc accountDocument
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if errors.Is(err, mongodriver.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", username, err)
	}
	return doc.toDomain(), nil
}

// Upsert inserts the username if missing. Existing documents are untouched.
func (r *AccountRepository) Upsert(ctx context.Context, username string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"username": username},
		insertOnlyUpdate(username, uuid.NewString(), time.Now().UTC()),
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert account %s: %w", username, err)
	}
	return res.UpsertedCount == 1, nil
}

// MergeUsage adds media ids and hashtags to the account sets and stamps the upload time
func (r *AccountRepository) MergeUsage(ctx context.Context, username string, usage domain.Usage) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"username": username}, usageUpdate(usage))
	if err != nil {
		return fmt.Errorf("failed to merge usage for %s: %w", username, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", domain.ErrLedgerInconsistency, username)
	}
	return nil
}

// Delete removes the account
func (r *AccountRepository) Delete(ctx context.Context, username string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"username": username}); err != nil {
		return fmt.Errorf("failed to delete account %s: %w", username, err)
	}
	return nil
}

func insertOnlyUpdate(username, id string, now time.Time) bson.M {
	return bson.M{
		"$setOnInsert": bson.M{
			"_id":            id,
			"username":       username,
			"type":           domain.DefaultAccountType,
			"used_media_ids": []string{},
			"used_hashtags":  []string{},
			"created_at":     now,
			"updated_at":     now,
		},
	}
}

func usageUpdate(usage domain.Usage) bson.M {
	mediaIDs := domain.UnionStrings(nil, usage.MediaIDs)
	hashtags := domain.UnionStrings(nil, usage.Hashtags)
	at := usage.At.UTC()

	return bson.M{
		"$addToSet": bson.M{
			"used_media_ids": bson.M{"$each": mediaIDs},
			"used_hashtags":  bson.M{"$each": hashtags},
		},
		"$set": bson.M{
			"last_upload_at": at,
			"updated_at":     at,
		},
	}
}
