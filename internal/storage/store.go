// Package storage provides abstractions for the durable session store.
package storage

import (
	"context"

	"github.com/nadeeshan/labelpress/internal/models"
)

// SessionStore is the durable key-value store that lets a session survive
// process restarts. It has exactly one writer, the session manager, and
// writes are atomic: Save persists all fields together, Clear removes them
// together. The abstraction allows swapping storage backends (SQLite, a
// plain file, the OS keyring) without touching the session manager.
type SessionStore interface {
	// Load reads the persisted session. It returns nil with no error when
	// nothing is stored; that is the normal logged-out state.
	Load(ctx context.Context) (*models.Session, error)

	// Save persists the session's token, user payload, and location in one
	// transaction, replacing whatever was stored before.
	Save(ctx context.Context, session *models.Session) error

	// Clear removes every persisted session field in one transaction.
	Clear(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
