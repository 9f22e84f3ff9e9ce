package domain

import (
	"context"
	"time"
)

// PostRecord is an audit entry for a post published to the managed account
type PostRecord struct {
	// ID is the unique identifier for the record
	ID string

	// Username is the source account the media came from
	Username string

	// Type is how the post was published
	Type PostType

	// MediaIDs are the ledger keys of the posted source media
	MediaIDs []string

	// Hashtags are the hashtags placed in the caption
	Hashtags []string

	// RemoteMediaID is the id of the new post on the managed account
	RemoteMediaID string

	// Caption is the caption that was published
	Caption string

	// CreatedAt is when the post was published
	CreatedAt time.Time
}

// PostRepository defines the interface for the post audit log
type PostRepository interface {
	// Save stores a post record
	Save(ctx context.Context, record *PostRecord) error

	// ListRecent returns the newest records first, up to limit
	ListRecent(ctx context.Context, limit int) ([]*PostRecord, error)
}
