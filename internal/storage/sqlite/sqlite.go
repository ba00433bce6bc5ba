// Package sqlite provides a SQLite-backed implementation of the
// storage.SessionStore interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/nadeeshan/labelpress/internal/models"
	"github.com/nadeeshan/labelpress/internal/storage"
)

// Session field keys. All three are written on login and removed together
// on logout; absence of the token key at startup is the logged-out state.
const (
	keyToken    = "token"
	keyUser     = "user"
	keyLocation = "userLocation"
)

// Ensure SessionStore implements storage.SessionStore
var _ storage.SessionStore = (*SessionStore)(nil)

// SessionStore implements storage.SessionStore using SQLite.
type SessionStore struct {
	db *sql.DB
}

// New creates a new SessionStore with the given database path. It creates
// the parent directories and runs migrations automatically.
func New(dbPath string) (*SessionStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SessionStore{db: db}, nil
}

// Close closes the database connection.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

// Load reads the persisted session. A missing token row means logged out:
// nil session, nil error.
func (s *SessionStore) Load(ctx context.Context) (*models.Session, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM session")
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, 3)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}

	token, ok := values[keyToken]
	if !ok || token == "" {
		return nil, nil
	}

	session := &models.Session{
		Token:    token,
		Location: values[keyLocation],
	}
	if user := values[keyUser]; user != "" {
		session.User = json.RawMessage(user)
	}
	return session, nil
}

// Save persists the session, replacing any previous one in a single
// transaction.
func (s *SessionStore) Save(ctx context.Context, session *models.Session) error {
	if session == nil || session.Token == "" {
		return fmt.Errorf("refusing to save a session without a token")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM session"); err != nil {
		return fmt.Errorf("failed to clear previous session: %w", err)
	}

	entries := map[string]string{
		keyToken: session.Token,
	}
	if len(session.User) > 0 {
		entries[keyUser] = string(session.User)
	}
	if session.Location != "" {
		entries[keyLocation] = session.Location
	}

	for key, value := range entries {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO session (key, value) VALUES (?, ?)",
			key, value,
		); err != nil {
			return fmt.Errorf("failed to save session field %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// Clear removes every session field. Clearing an already-empty store is
// not an error.
func (s *SessionStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM session"); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
