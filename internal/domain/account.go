package domain

import (
	"context"
	"time"
)

// DefaultAccountType is assigned to source accounts registered through intake.
const DefaultAccountType = "model"

// SourceAccount represents an external account whose media is re-posted
type SourceAccount struct {
	// ID is the unique identifier for the account record
	ID string

	// Username is the platform username and the natural key of the record
	Username string

	// Type classifies the source account (defaults to "model")
	Type string

	// LastUploadAt is when media from this account was last posted; nil means never
	LastUploadAt *time.Time

	// UsedMediaIDs holds dedup keys of media already posted, without duplicates
	UsedMediaIDs []string

	// UsedHashtags holds hashtags already used for this account, without duplicates
	UsedHashtags []string

	// CreatedAt is the timestamp when the account was created
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the account was last updated
	UpdatedAt time.Time
}

// Usage is the outcome of one successful post that gets merged into the ledger.
type Usage struct {
	MediaIDs []string
	Hashtags []string
	At       time.Time
}

// UsedMediaSet returns the used media ids as a lookup set.
func (a *SourceAccount) UsedMediaSet() map[string]struct{} {
	set := make(map[string]struct{}, len(a.UsedMediaIDs))
	for _, id := range a.UsedMediaIDs {
		set[id] = struct{}{}
	}
	return set
}

// ApplyUsage unions the usage into the account and stamps LastUploadAt.
// Applying the same usage twice leaves the sets unchanged.
func (a *SourceAccount) ApplyUsage(u Usage) {
	a.UsedMediaIDs = UnionStrings(a.UsedMediaIDs, u.MediaIDs)
	a.UsedHashtags = UnionStrings(a.UsedHashtags, u.Hashtags)
	at := u.At
	a.LastUploadAt = &at
	a.UpdatedAt = u.At
}

// Clone returns a deep copy so callers cannot mutate repository state.
func (a *SourceAccount) Clone() *SourceAccount {
	if a == nil {
		return nil
	}
	c := *a
	c.UsedMediaIDs = append([]string(nil), a.UsedMediaIDs...)
	c.UsedHashtags = append([]string(nil), a.UsedHashtags...)
	if a.LastUploadAt != nil {
		t := *a.LastUploadAt
		c.LastUploadAt = &t
	}
	return &c
}

// UnionStrings appends the values of add missing from base, preserving order
// and dropping duplicates present in either input.
func UnionStrings(base, add []string) []string {
	seen := make(map[string]struct{}, len(base)+len(add))
	out := make([]string, 0, len(base)+len(add))
	for _, list := range [][]string{base, add} {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// AccountRepository defines the interface for source account persistence
type AccountRepository interface {
	// GetAll returns all accounts
	GetAll(ctx context.Context) ([]*SourceAccount, error)

	// GetByUsername returns an account by username, or nil if absent
	GetByUsername(ctx context.Context, username string) (*SourceAccount, error)

	// Upsert inserts the username if absent and leaves existing records untouched.
	// It reports whether a new record was created.
	Upsert(ctx context.Context, username string) (bool, error)

	// MergeUsage unions usage into the account ledger.
	// It returns ErrLedgerInconsistency when the account does not exist.
	MergeUsage(ctx context.Context, username string, usage Usage) error

	// Delete removes an account
	Delete(ctx context.Context, username string) error
}
