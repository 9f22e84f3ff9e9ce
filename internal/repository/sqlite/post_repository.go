package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"auto_repost_instagram/internal/domain"
)

// PostRepository is a SQLite implementation of domain.PostRepository.
type PostRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new PostRepository backed by SQLite.
func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Save inserts a post record.
func (r *PostRepository) Save(ctx context.Context, record *domain.PostRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	mediaJSON, err := encodeStrings(record.MediaIDs)
	if err != nil {
		return err
	}
	tagsJSON, err := encodeStrings(record.Hashtags)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO posts
		(id, username, post_type, media_ids, hashtags, remote_media_id, caption, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Username, string(record.Type), mediaJSON, tagsJSON,
		record.RemoteMediaID, record.Caption, record.CreatedAt.UTC())
	return err
}

// ListRecent returns the newest posts first.
func (r *PostRepository) ListRecent(ctx context.Context, limit int) ([]*domain.PostRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, username, post_type, media_ids, hashtags, remote_media_id, caption, created_at
		FROM posts ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.PostRecord
	for rows.Next() {
		var (
			record    domain.PostRecord
			postType  string
			mediaJSON string
			tagsJSON  string
			remoteID  sql.NullString
			caption   sql.NullString
		)
		if err := rows.Scan(&record.ID, &record.Username, &postType, &mediaJSON, &tagsJSON,
			&remoteID, &caption, &record.CreatedAt); err != nil {
			return nil, err
		}
		record.Type = domain.PostType(postType)
		record.RemoteMediaID = remoteID.String
		record.Caption = caption.String
		if record.MediaIDs, err = decodeStrings(mediaJSON); err != nil {
			return nil, err
		}
		if record.Hashtags, err = decodeStrings(tagsJSON); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}
