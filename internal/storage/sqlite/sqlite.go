// Package sqlite implements the storage interface using SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stacksapp/stacks/internal/storage"
	_ "modernc.org/sqlite"
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

var _ storage.Storage = (*SQLiteStorage)(nil)

// New creates a new SQLite storage backend
func New(path string) (*SQLiteStorage, error) {
	// ":memory:" gives every connection its own database; the shared-cache
	// URL keeps a single in-memory database across the pool.
	dbPath := path
	if path == ":memory:" {
		dbPath = "file::memory:?cache=shared"
	}

	if !strings.Contains(dbPath, ":memory:") {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// WAL for concurrency, a generous busy timeout so a sync apply waits
	// for a user edit instead of failing, and immediate transactions so
	// RunImport takes the write lock at BEGIN rather than at first write.
	connStr := dbPath
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	connStr += sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(30000)&_txlock=immediate"

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	absPath := path
	if !strings.Contains(path, ":memory:") {
		if absPath, err = filepath.Abs(path); err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
	}

	return &SQLiteStorage{db: db, dbPath: absPath}, nil
}

// GetMeta returns the stored metadata value for key, or "" when unset.
func (s *SQLiteStorage) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta %q: %w", key, err)
	}
	return value, nil
}

// SetMeta stores a metadata key/value pair.
func (s *SQLiteStorage) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set meta %q: %w", key, err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}
