// Package storage persists client-side state in a local SQLite database:
// the device identity keys and the last-known presentation list snapshot.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nroh/slidegen/internal/domain"
)

// ErrNoValue indicates a config key has never been set.
var ErrNoValue = errors.New("no value stored")

// Store is the local SQLite-backed state store.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates (if needed) and opens the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS config (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS presentations (
		user_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		topic TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		slide_count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_presentations_user ON presentations(user_id, position);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetValue reads a config value. Returns ErrNoValue when unset.
func (s *Store) GetValue(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoValue
	}
	return value, err
}

// SetValue writes a config value, replacing any previous one.
func (s *Store) SetValue(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// SaveSummaries replaces the cached list snapshot for a user. Order is
// preserved exactly as given (newest first).
func (s *Store) SaveSummaries(ctx context.Context, userID string, items []domain.Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM presentations WHERE user_id = ?`, userID); err != nil {
		return err
	}

	for i, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO presentations (user_id, position, id, topic, status, created_at, slide_count)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, userID, i, item.ID, item.Topic, string(item.Status), item.CreatedAt, item.SlideCount)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadSummaries reads the cached list snapshot for a user in saved order.
func (s *Store) LoadSummaries(ctx context.Context, userID string) ([]domain.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, topic, status, created_at, slide_count
		FROM presentations WHERE user_id = ? ORDER BY position ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Summary
	for rows.Next() {
		var item domain.Summary
		var status string
		if err := rows.Scan(&item.ID, &item.Topic, &status, &item.CreatedAt, &item.SlideCount); err != nil {
			return nil, err
		}
		item.Status = domain.Status(status)
		items = append(items, item)
	}
	return items, rows.Err()
}
