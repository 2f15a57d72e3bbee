// Package storage provides the key/value backends that hold viewlog state.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Backend is a string key/value store. Get reports whether the key exists.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// SQLiteBackend implements Backend on the kv_store table.
type SQLiteBackend struct {
	db *sql.DB

	// Prepared statements
	getValue    *sql.Stmt
	upsertValue *sql.Stmt
	deleteValue *sql.Stmt
}

// NewSQLiteBackend creates a SQLiteBackend from an already-opened and migrated database.
func NewSQLiteBackend(db *sql.DB) (*SQLiteBackend, error) {
	b := &SQLiteBackend{db: db}

	if err := b.prepareStatements(); err != nil {
		b.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return b, nil
}

func (b *SQLiteBackend) prepareStatements() error {
	var err error

	b.getValue, err = b.db.Prepare(`SELECT value FROM kv_store WHERE key = ?`)
	if err != nil {
		return err
	}

	b.upsertValue, err = b.db.Prepare(`
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}

	b.deleteValue, err = b.db.Prepare(`DELETE FROM kv_store WHERE key = ?`)
	if err != nil {
		return err
	}

	return nil
}

// Get returns the value stored under key.
func (b *SQLiteBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := b.getValue.QueryRowContext(ctx, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (b *SQLiteBackend) Set(ctx context.Context, key, value string) error {
	ts := time.Now().UTC().Format(time.RFC3339)
	if _, err := b.upsertValue.ExecContext(ctx, key, value, ts); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (b *SQLiteBackend) Remove(ctx context.Context, key string) error {
	if _, err := b.deleteValue.ExecContext(ctx, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// UpdatedAt returns when key was last written.
func (b *SQLiteBackend) UpdatedAt(ctx context.Context, key string) (time.Time, bool, error) {
	var tsStr string
	err := b.db.QueryRowContext(ctx, "SELECT updated_at FROM kv_store WHERE key = ?", key).Scan(&tsStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("updated_at %s: %w", key, err)
	}
	ts, err := parseTimestamp(tsStr)
	if err != nil {
		return time.Time{}, false, err
	}
	return ts, true, nil
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (b *SQLiteBackend) Close() error {
	stmts := []*sql.Stmt{b.getValue, b.upsertValue, b.deleteValue}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
