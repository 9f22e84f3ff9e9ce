package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"auto_repost_instagram/internal/domain"
)

const selectAccount = `SELECT id, username, type, last_upload_at, used_media_ids, used_hashtags, created_at, updated_at
		FROM accounts`

// AccountRepository is a SQLite implementation of domain.AccountRepository.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new AccountRepository backed by SQLite.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetAll returns all accounts ordered by creation.
func (r *AccountRepository) GetAll(ctx context.Context) ([]*domain.SourceAccount, error) {
	rows, err := r.db.QueryContext(ctx, selectAccount+` ORDER BY created_at ASC, username ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.SourceAccount
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// GetByUsername returns an account by username, or nil when absent.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domain.SourceAccount, error) {
	row := r.db.QueryRowContext(ctx, selectAccount+` WHERE username = ?`, username)
	return scanAccount(row)
}

// Upsert inserts the username unless it already exists.
func (r *AccountRepository) Upsert(ctx context.Context, username string) (bool, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `INSERT INTO accounts
		(id, username, type, last_upload_at, used_media_ids, used_hashtags, created_at, updated_at)
		VALUES (?, ?, ?, NULL, '[]', '[]', ?, ?)
		ON CONFLICT(username) DO NOTHING`,
		uuid.NewString(), username, domain.DefaultAccountType, now, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MergeUsage unions usage into the ledger inside a single transaction.
func (r *AccountRepository) MergeUsage(ctx context.Context, username string, usage domain.Usage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger transaction: %w", err)
	}
	defer tx.Rollback()

	account, err := scanAccount(tx.QueryRowContext(ctx, selectAccount+` WHERE username = ?`, username))
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("%w: %s", domain.ErrLedgerInconsistency, username)
	}

	account.ApplyUsage(usage)

	mediaJSON, err := encodeStrings(account.UsedMediaIDs)
	if err != nil {
		return err
	}
	tagsJSON, err := encodeStrings(account.UsedHashtags)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET last_upload_at = ?, used_media_ids = ?, used_hashtags = ?, updated_at = ?
		WHERE id = ?`, account.LastUploadAt.UTC(), mediaJSON, tagsJSON, time.Now().UTC(), account.ID); err != nil {
		return fmt.Errorf("update ledger: %w", err)
	}

	return tx.Commit()
}

// Delete removes an account.
func (r *AccountRepository) Delete(ctx context.Context, username string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE username = ?`, username)
	return err
}

func scanAccount(scanner interface {
	Scan(dest ...any) error
}) (*domain.SourceAccount, error) {
	var (
		lastUpload sql.NullTime
		mediaJSON  string
		tagsJSON   string
		account    domain.SourceAccount
	)

	if err := scanner.Scan(
		&account.ID,
		&account.Username,
		&account.Type,
		&lastUpload,
		&mediaJSON,
		&tagsJSON,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if lastUpload.Valid {
		t := lastUpload.Time
		account.LastUploadAt = &t
	}

	var err error
	if account.UsedMediaIDs, err = decodeStrings(mediaJSON); err != nil {
		return nil, fmt.Errorf("decode used media for %s: %w", account.Username, err)
	}
	if account.UsedHashtags, err = decodeStrings(tagsJSON); err != nil {
		return nil, fmt.Errorf("decode used hashtags for %s: %w", account.Username, err)
	}
	return &account, nil
}

func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeStrings(data string) ([]string, error) {
	if data == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, err
	}
	return values, nil
}
