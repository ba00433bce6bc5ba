// Package session owns the operator's authenticated session: login, logout,
// and the optimistic restore that happens at startup. It gates everything
// else: no search or queue activity exists before an authenticated session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nadeeshan/labelpress/internal/backend"
	"github.com/nadeeshan/labelpress/internal/metrics"
	"github.com/nadeeshan/labelpress/internal/models"
	"github.com/nadeeshan/labelpress/internal/storage"
)

// ErrNoToken marks a login response that was a 2xx but carried no token.
// The backend reports some rejections this way instead of with an error
// status.
var ErrNoToken = errors.New("login response contained no token")

// Authenticator is the slice of the backend the session manager needs.
type Authenticator interface {
	Login(ctx context.Context, name, password, location string) (*backend.LoginResult, error)
}

// Resetter is implemented by components that must drop all state on logout.
// The cross-component invariant: no residual search results or queue items
// survive a logout.
type Resetter interface {
	Reset()
}

// Manager owns the session lifecycle and is the only writer of the durable
// session store.
type Manager struct {
	store   storage.SessionStore
	auth    Authenticator
	metrics *metrics.Registry
	log     *slog.Logger

	mu        sync.Mutex
	session   *models.Session
	resetters []Resetter
}

// NewManager creates a session manager over the given store and backend.
func NewManager(store storage.SessionStore, auth Authenticator, reg *metrics.Registry, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		store:   store,
		auth:    auth,
		metrics: reg,
		log:     log,
	}
}

// OnLogout registers a component to be reset when the session ends.
func (m *Manager) OnLogout(r Resetter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetters = append(m.resetters, r)
}

// Restore loads a persisted session at startup. A stored token is trusted
// without re-validating it against the backend; an empty store is the
// normal logged-out state, not an error.
func (m *Manager) Restore(ctx context.Context) error {
	sess, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if sess == nil {
		m.log.Debug("no persisted session, starting logged out")
		return nil
	}

	m.mu.Lock()
	m.session = sess
	m.mu.Unlock()

	m.logTokenExpiry(sess.Token)
	m.log.Info("session restored", "location", sess.Location)
	return nil
}

// logTokenExpiry decodes the token's claims without verifying the signature
// (validation is the backend's job) purely to warn the operator when the
// restored credential is already past its expiry. Tokens that are not JWTs
// are restored silently.
func (m *Manager) logTokenExpiry(token string) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	if time.Now().After(exp.Time) {
		m.log.Warn("restored session token is expired, backend calls will likely fail",
			"expired_at", exp.Time)
	}
}

// Login authenticates against the backend. On success the session is
// persisted and the manager transitions to authenticated; on failure the
// backend's message is returned verbatim and the manager stays logged out.
// Callers are expected to serialize login attempts.
func (m *Manager) Login(ctx context.Context, username, password, location string) error {
	if m.metrics != nil {
		m.metrics.LoginAttempts.Inc()
	}

	result, err := m.auth.Login(ctx, username, password, location)
	if err != nil {
		if m.metrics != nil {
			m.metrics.LoginFailures.Inc()
		}
		m.log.Warn("login failed", "username", username, "error", err)
		return err
	}
	if result.Token == "" {
		if m.metrics != nil {
			m.metrics.LoginFailures.Inc()
		}
		m.log.Warn("login rejected without error", "username", username)
		return ErrNoToken
	}

	sess := &models.Session{
		Token:    result.Token,
		User:     result.User,
		Location: location,
	}

	m.mu.Lock()
	m.session = sess
	m.mu.Unlock()

	// The remote login already succeeded; a persistence failure only costs
	// the restore after the next restart, so it does not fail the login.
	if err := m.store.Save(ctx, sess); err != nil {
		m.log.Error("failed to persist session", "error", err)
	}

	m.log.Info("logged in", "username", username, "location", location)
	return nil
}

// Logout clears the persisted session and resets every registered
// component. The in-memory session is dropped even when the store refuses
// to clear, so the operator is never stuck logged in.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.session = nil
	resetters := make([]Resetter, len(m.resetters))
	copy(resetters, m.resetters)
	m.mu.Unlock()

	for _, r := range resetters {
		r.Reset()
	}

	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear persisted session: %w", err)
	}
	m.log.Info("logged out")
	return nil
}

// Token returns the current credential and whether one exists. This is the
// TokenSource consumed by the search controller and backend calls.
func (m *Manager) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.session.Authenticated() {
		return "", false
	}
	return m.session.Token, true
}

// Authenticated reports whether a session exists.
func (m *Manager) Authenticated() bool {
	_, ok := m.Token()
	return ok
}

// Current returns a copy of the active session, or nil when logged out.
func (m *Manager) Current() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	sess := *m.session
	return &sess
}
