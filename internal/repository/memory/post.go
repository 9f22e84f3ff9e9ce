package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"auto_repost_instagram/internal/domain"
)

// PostRepository is an in-memory implementation of PostRepository
type PostRepository struct {
	mu      sync.RWMutex
	records []*domain.PostRecord
}

// NewPostRepository creates a new in-memory post repository
func NewPostRepository() *PostRepository {
	return &PostRepository{}
}

// Save appends a post record
func (r *PostRepository) Save(ctx context.Context, record *domain.PostRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	stored := *record
	r.records = append(r.records, &stored)
	return nil
}

// ListRecent returns the newest records first
func (r *PostRepository) ListRecent(ctx context.Context, limit int) ([]*domain.PostRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.PostRecord
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		record := *r.records[i]
		out = append(out, &record)
	}
	return out, nil
}
