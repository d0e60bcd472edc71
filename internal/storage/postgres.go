package storage

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// PostgresBackend stores documents in a PostgreSQL table. Selected when the
// config path is a postgres:// connection string, for users who want the
// primary namespace shared across machines.
type PostgresBackend struct {
	notifier
	connStr string
	db      *sql.DB
}

func NewPostgresBackend(connStr string) *PostgresBackend {
	return &PostgresBackend{connStr: connStr}
}

// HasEmbeddedCredentials reports whether a connection string carries a
// password inline. Those are rejected at startup; credentials belong in the
// environment or a .pgpass file.
func HasEmbeddedCredentials(connStr string) bool {
	u, err := url.Parse(connStr)
	if err != nil {
		return false
	}
	if u.User == nil {
		return false
	}
	_, hasPassword := u.User.Password()
	return hasPassword
}

// IsPostgresConnString reports whether the config value selects the
// postgres backend.
func IsPostgresConnString(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

func (s *PostgresBackend) Name() string { return "postgres" }

func (s *PostgresBackend) Init() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	return s.ensureSchema()
}

func (s *PostgresBackend) Load() error {
	if s.db != nil {
		return nil
	}
	return s.Init()
}

func (s *PostgresBackend) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *PostgresBackend) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sitegate_documents (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure sitegate_documents table: %w", err)
	}
	return nil
}

func (s *PostgresBackend) Get(key string) ([]byte, bool, error) {
	if s.db == nil {
		return nil, false, fmt.Errorf("storage not loaded")
	}

	var value string
	err := s.db.QueryRow("SELECT value FROM sitegate_documents WHERE key = $1", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read document %q: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *PostgresBackend) Set(key string, value []byte) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}

	_, err := s.db.Exec(`
		INSERT INTO sitegate_documents (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, string(value), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write document %q: %w", key, err)
	}
	s.notify(key)
	return nil
}

func (s *PostgresBackend) Delete(key string) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}

	if _, err := s.db.Exec("DELETE FROM sitegate_documents WHERE key = $1", key); err != nil {
		return fmt.Errorf("failed to delete document %q: %w", key, err)
	}
	s.notify(key)
	return nil
}

func (s *PostgresBackend) Watch(fn func(key string)) func() {
	return s.subscribe(fn)
}
