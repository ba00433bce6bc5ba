package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/nadeeshan/labelpress/internal/models"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadEmptyStoreIsLoggedOut(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sess != nil {
		t.Errorf("empty store should load nil, got %+v", sess)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	original := &models.Session{
		Token:    "tok-123",
		User:     json.RawMessage(`{"name":"kasun","role":"operator"}`),
		Location: "MAIN",
	}
	if err := store.Save(ctx, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a session")
	}
	if loaded.Token != original.Token {
		t.Errorf("token = %q, want %q", loaded.Token, original.Token)
	}
	if loaded.Location != original.Location {
		t.Errorf("location = %q, want %q", loaded.Location, original.Location)
	}
	if string(loaded.User) != string(original.User) {
		t.Errorf("user payload = %s, want %s", loaded.User, original.User)
	}
}

func TestSaveReplacesPreviousSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := &models.Session{Token: "t1", Location: "MAIN"}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The second session has no location; the old one must not leak through.
	second := &models.Session{Token: "t2"}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Token != "t2" {
		t.Errorf("token = %q, want t2", loaded.Token)
	}
	if loaded.Location != "" {
		t.Errorf("stale location survived a save: %q", loaded.Location)
	}
}

func TestSaveRejectsTokenlessSession(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(context.Background(), &models.Session{}); err == nil {
		t.Error("saving a session without a token must fail")
	}
}

func TestClearRemovesEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess := &models.Session{Token: "tok", User: json.RawMessage(`{}`), Location: "WH"}
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != nil {
		t.Errorf("session survived Clear: %+v", loaded)
	}

	// Clearing again is not an error.
	if err := store.Clear(ctx); err != nil {
		t.Errorf("Clear on empty store failed: %v", err)
	}
}

func TestSessionSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := store.Save(ctx, &models.Session{Token: "persist-me", Location: "MAIN"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	store.Close()

	reopened, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	loaded, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded == nil || loaded.Token != "persist-me" {
		t.Errorf("session did not survive reopen: %+v", loaded)
	}
}
