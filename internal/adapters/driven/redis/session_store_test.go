package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// setupTestSessionStore creates a miniredis-backed SessionStore
func setupTestSessionStore(t *testing.T) (*SessionStore, *miniredis.Miniredis, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewSessionStore(client)

	return store, mr, func() {
		client.Close()
		mr.Close()
	}
}

// createTestSession creates a test session with default values
func createTestSession(userID string) *domain.Session {
	return &domain.Session{
		ID:           "session-123",
		UserID:       userID,
		Token:        "token-abc",
		RefreshToken: "refresh-xyz",
		ExpiresAt:    time.Now().Add(24 * time.Hour),
		CreatedAt:    time.Now(),
		UserAgent:    "Mozilla/5.0",
		IPAddress:    "192.168.1.1",
	}
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	store, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	session := createTestSession("user-1")

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("unexpected error saving session: %v", err)
	}

	retrieved, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("failed to retrieve saved session: %v", err)
	}

	if retrieved.ID != session.ID {
		t.Errorf("expected ID %s, got %s", session.ID, retrieved.ID)
	}
	if retrieved.UserID != session.UserID {
		t.Errorf("expected user %s, got %s", session.UserID, retrieved.UserID)
	}
	if retrieved.Token != session.Token {
		t.Errorf("expected token %s, got %s", session.Token, retrieved.Token)
	}
}

func TestSessionStore_Save_ExpiredSessionNotStored(t *testing.T) {
	store, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	session := createTestSession("user-1")
	session.ExpiresAt = time.Now().Add(-1 * time.Hour)

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := store.Get(ctx, session.ID)
	if err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound for expired session, got %v", err)
	}
}

func TestSessionStore_Get_NotFound(t *testing.T) {
	store, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	_, err := store.Get(context.Background(), "missing")
	if err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionStore_GetByToken(t *testing.T) {
	store, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	session := createTestSession("user-1")
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	retrieved, err := store.GetByToken(ctx, session.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if retrieved.ID != session.ID {
		t.Errorf("expected session %s, got %s", session.ID, retrieved.ID)
	}

	if _, err := store.GetByToken(ctx, "bogus"); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown token, got %v", err)
	}
}

func TestSessionStore_GetByRefreshToken(t *testing.T) {
	store, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	session := createTestSession("user-1")
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	retrieved, err := store.GetByRefreshToken(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("get by refresh token: %v", err)
	}
	if retrieved.ID != session.ID {
		t.Errorf("expected session %s, got %s", session.ID, retrieved.ID)
	}
}

func TestSessionStore_Delete(t *testing.T) {
	store, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	session := createTestSession("user-1")
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := store.Delete(ctx, session.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := store.Get(ctx, session.ID); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Token indexes are cleaned up too
	if _, err := store.GetByToken(ctx, session.Token); err != domain.ErrNotFound {
		t.Errorf("expected token index removed, got %v", err)
	}

	// Deleting an already-deleted session is a no-op
	if err := store.Delete(ctx, session.ID); err != nil {
		t.Errorf("expected nil for double delete, got %v", err)
	}
}

func TestSessionStore_DeleteByUser(t *testing.T) {
	store, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()

	first := createTestSession("user-1")
	second := createTestSession("user-1")
	second.ID = "session-456"
	second.Token = "token-def"
	second.RefreshToken = "refresh-uvw"

	other := createTestSession("user-2")
	other.ID = "session-789"
	other.Token = "token-ghi"
	other.RefreshToken = "refresh-rst"

	for _, session := range []*domain.Session{first, second, other} {
		if err := store.Save(ctx, session); err != nil {
			t.Fatalf("save %s: %v", session.ID, err)
		}
	}

	if err := store.DeleteByUser(ctx, "user-1"); err != nil {
		t.Fatalf("delete by user: %v", err)
	}

	if _, err := store.Get(ctx, first.ID); err != domain.ErrNotFound {
		t.Errorf("expected first session gone, got %v", err)
	}
	if _, err := store.Get(ctx, second.ID); err != domain.ErrNotFound {
		t.Errorf("expected second session gone, got %v", err)
	}

	// Other user's session survives
	if _, err := store.Get(ctx, other.ID); err != nil {
		t.Errorf("expected other user's session intact, got %v", err)
	}
}

func TestSessionStore_TTLExpiry(t *testing.T) {
	store, mr, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	session := createTestSession("user-1")
	session.ExpiresAt = time.Now().Add(1 * time.Minute)
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, session.ID); err != domain.ErrNotFound {
		t.Errorf("expected session expired after TTL, got %v", err)
	}
}
