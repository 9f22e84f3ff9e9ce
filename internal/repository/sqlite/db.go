package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) a SQLite database using the configured URL.
// Supported formats:
//   - sqlite3:./data.db
//   - sqlite:./data.db
//   - file:./data.db
func Open(databaseURL string) (*sql.DB, error) {
	dsn := normalizeDSN(databaseURL)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite works best with a single writer connection for WAL
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetMaxIdleConns(1)

	if err := configurePragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func normalizeDSN(databaseURL string) string {
	dsn := strings.TrimSpace(databaseURL)
	if dsn == "" {
		dsn = "./data.db"
	}

	if idx := strings.Index(dsn, ":"); idx != -1 {
		prefix := dsn[:idx]
		if prefix == "sqlite3" || prefix == "sqlite" {
			dsn = dsn[idx+1:]
		}
	}

	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "./data.db"
	}

	if !strings.HasPrefix(dsn, "file:") {
		if !strings.Contains(dsn, ":/") && !strings.HasPrefix(dsn, "./") && !strings.HasPrefix(dsn, "/") {
			dsn = "./" + dsn
		}
		dsn = "file:" + filepath.Clean(dsn)
	}

	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)"
	}

	return dsn
}

func configurePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("configure sqlite pragma (%s): %w", pragma, err)
		}
	}
	return nil
}

func ensureSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL DEFAULT 'model',
			last_upload_at TIMESTAMP NULL,
			used_media_ids TEXT NOT NULL DEFAULT '[]',
			used_hashtags TEXT NOT NULL DEFAULT '[]',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			post_type TEXT NOT NULL,
			media_ids TEXT NOT NULL DEFAULT '[]',
			hashtags TEXT NOT NULL DEFAULT '[]',
			remote_media_id TEXT,
			caption TEXT,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at);`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
