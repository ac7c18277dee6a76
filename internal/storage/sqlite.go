// Package storage persists the corpus history and the service credential
// in a small SQLite key/value table.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Fixed keys. History holds the JSON-serialized card array, credential the
// raw secret string. An absent credential row means "unset".
const (
	keyHistory    = "history"
	keyCredential = "credential"
)

// SQLite implements the persistence adapter on a local SQLite file.
type SQLite struct {
	db *sql.DB
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLite) read(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *SQLite) write(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), now)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// ReadHistory returns the serialized history, or nil when none is stored.
func (s *SQLite) ReadHistory(ctx context.Context) ([]byte, error) {
	return s.read(ctx, keyHistory)
}

// WriteHistory overwrites the stored history unconditionally. Merging is the
// history store's job; this layer is last-writer-wins.
func (s *SQLite) WriteHistory(ctx context.Context, data []byte) error {
	return s.write(ctx, keyHistory, data)
}

// ReadCredential returns the stored credential, or "" when unset.
func (s *SQLite) ReadCredential(ctx context.Context) (string, error) {
	b, err := s.read(ctx, keyCredential)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteCredential stores the credential. An empty string removes the row so
// "never set" and "erased" are the same observable state.
func (s *SQLite) WriteCredential(ctx context.Context, credential string) error {
	if credential == "" {
		_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, keyCredential)
		if err != nil {
			return fmt.Errorf("delete credential: %w", err)
		}
		return nil
	}
	return s.write(ctx, keyCredential, []byte(credential))
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
