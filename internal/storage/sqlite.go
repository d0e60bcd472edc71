package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBackend stores documents in a single-table SQLite database. It is
// the default primary backend.
type SQLiteBackend struct {
	notifier
	path string
	db   *sql.DB
}

func NewSQLiteBackend(path string) *SQLiteBackend {
	return &SQLiteBackend{path: path}
}

func (s *SQLiteBackend) Name() string { return "sqlite" }

func (s *SQLiteBackend) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	return s.ensureSchema()
}

func (s *SQLiteBackend) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'sitegate init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	return s.ensureSchema()
}

func (s *SQLiteBackend) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteBackend) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure documents table: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) Get(key string) ([]byte, bool, error) {
	if s.db == nil {
		return nil, false, fmt.Errorf("storage not loaded")
	}

	var value string
	err := s.db.QueryRow("SELECT value FROM documents WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read document %q: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *SQLiteBackend) Set(key string, value []byte) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO documents (key, value, updated_at) VALUES (?, ?, ?)",
		key, string(value), now,
	)
	if err != nil {
		return fmt.Errorf("failed to write document %q: %w", key, err)
	}
	s.notify(key)
	return nil
}

func (s *SQLiteBackend) Delete(key string) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}

	if _, err := s.db.Exec("DELETE FROM documents WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete document %q: %w", key, err)
	}
	s.notify(key)
	return nil
}

func (s *SQLiteBackend) Watch(fn func(key string)) func() {
	return s.subscribe(fn)
}

// GetPath returns the database file path.
func (s *SQLiteBackend) GetPath() string { return s.path }
