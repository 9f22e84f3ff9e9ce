// Package mongo stores the usage ledger and post log in MongoDB.
package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	accountsCollection = "accounts"
	postsCollection    = "posts"

	// DefaultDatabase is used when no database name is configured
	DefaultDatabase = "repost"
)

// Client bundles the driver client and the selected database
type Client struct {
	Client   *mongodriver.Client
	Database *mongodriver.Database
}

// IsMongoURL reports whether the database URL targets MongoDB.
func IsMongoURL(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, "mongodb://") || strings.HasPrefix(databaseURL, "mongodb+srv://")
}

// Connect opens a MongoDB connection and ensures the required indexes.
func Connect(ctx context.Context, uri, database string) (*Client, error) {
	if database == "" {
		database = DefaultDatabase
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	mc := &Client{
		Client:   client,
		Database: client.Database(database),
	}
	if err := mc.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return mc, nil
}

func (mc *Client) ensureIndexes(ctx context.Context) error {
	_, err := mc.Database.Collection(accountsCollection).Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create accounts index: %w", err)
	}

	_, err = mc.Database.Collection(postsCollection).Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create posts index: %w", err)
	}
	return nil
}

// Close disconnects the client
func (mc *Client) Close(ctx context.Context) error {
	return mc.Client.Disconnect(ctx)
}
