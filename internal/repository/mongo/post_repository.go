package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"auto_repost_instagram/internal/domain"
)

type postDocument struct {
	ID            string    `bson:"_id"`
	Username      string    `bson:"username"`
	Type          string    `bson:"post_type"`
	MediaIDs      []string  `bson:"media_ids"`
	Hashtags      []string  `bson:"hashtags"`
	RemoteMediaID string    `bson:"remote_media_id"`
	Caption       string    `bson:"caption"`
	CreatedAt     time.Time `bson:"created_at"`
}

func newPostDocument(record *domain.PostRecord) postDocument {
	return postDocument{
		ID:            record.ID,
		Username:      record.Username,
		Type:          string(record.Type),
		MediaIDs:      record.MediaIDs,
		Hashtags:      record.Hashtags,
		RemoteMediaID: record.RemoteMediaID,
		Caption:       record.Caption,
		CreatedAt:     record.CreatedAt.UTC(),
	}
}

func (d postDocument) toDomain() *domain.PostRecord {
	return &domain.PostRecord{
		ID:            d.ID,
		Username:      d.Username,
		Type:          domain.PostType(d.Type),
		MediaIDs:      d.MediaIDs,
		Hashtags:      d.Hashtags,
		RemoteMediaID: d.RemoteMediaID,
		Caption:       d.Caption,
		CreatedAt:     d.CreatedAt,
	}
}

// PostRepository implements domain.PostRepository on a MongoDB collection
type PostRepository struct {
	collection *mongodriver.Collection
}

// NewPostRepository creates a new post repository
func NewPostRepository(mc *Client) *PostRepository {
	return &PostRepository{collection: mc.Database.Collection(postsCollection)}
}

// Save inserts a post record
func (r *PostRepository) Save(ctx context.Context, record *domain.PostRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, newPostDocument(record)); err != nil {
		return fmt.Errorf("failed to save post record: %w", err)
	}
	return nil
}

// ListRecent returns the newest records first
func (r *PostRepository) ListRecent(ctx context.Context, limit int) ([]*domain.PostRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}

	records := make([]*domain.PostRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, doc.toDomain())
	}
	return records, nil
}
