package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

// makeTestSession creates a session row expiring in an hour.
func makeTestSession(id, userID, tokenHash string) *domain.Session {
	now := time.Now()
	return &domain.Session{
		ID:         id,
		UserID:     userID,
		TokenHash:  tokenHash,
		IPAddress:  "127.0.0.1",
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(time.Hour),
	}
}

func TestCreateAndGetSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, makeTestUser("user-1", "alice", "alice@example.com"))

	sess := makeTestSession("sess-1", "user-1", "hash-abc")
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := s.GetSessionByTokenHash(ctx, "hash-abc")
	if err != nil {
		t.Fatalf("GetSessionByTokenHash: %v", err)
	}
	if got.ID != "sess-1" {
		t.Errorf("ID: got %q, want sess-1", got.ID)
	}
	if got.UserID != "user-1" {
		t.Errorf("UserID: got %q, want user-1", got.UserID)
	}
	if got.IPAddress != "127.0.0.1" {
		t.Errorf("IPAddress: got %q, want 127.0.0.1", got.IPAddress)
	}
}

func TestGetSessionByTokenHash_Expired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, makeTestUser("user-1", "alice", "alice@example.com"))

	sess := makeTestSession("sess-1", "user-1", "hash-abc")
	sess.ExpiresAt = time.Now().Add(-time.Minute)
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	_, err := s.GetSessionByTokenHash(ctx, "hash-abc")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired session, got %v", err)
	}
}

func TestDeleteSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, makeTestUser("user-1", "alice", "alice@example.com"))

	if err := s.CreateSession(ctx, makeTestSession("sess-1", "user-1", "hash-abc")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := s.DeleteSession(ctx, "sess-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}

	_, err := s.GetSessionByTokenHash(ctx, "hash-abc")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting again reports not found.
	if err := s.DeleteSession(ctx, "sess-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, makeTestUser("user-1", "alice", "alice@example.com"))

	live := makeTestSession("sess-live", "user-1", "hash-live")
	if err := s.CreateSession(ctx, live); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	stale := makeTestSession("sess-stale", "user-1", "hash-stale")
	stale.ExpiresAt = time.Now().Add(-time.Hour)
	if err := s.CreateSession(ctx, stale); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	n, err := s.DeleteExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d sessions, want 1", n)
	}

	// The live session survives.
	if _, err := s.GetSessionByTokenHash(ctx, "hash-live"); err != nil {
		t.Errorf("live session gone: %v", err)
	}
}
