package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/domain"
)

// newTestStore opens a store against a throwaway database file.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open("file:"+dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// makeTestUser creates a domain.User with sensible defaults for testing.
func makeTestUser(id, username, email string) *domain.User {
	now := time.Now()
	return &domain.User{
		ID:           id,
		Email:        email,
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$fakesalt$fakehash",
		WantsUpdates: true,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLoginAt:  now,
	}
}

// makeTestBook creates a domain.Book for testing.
func makeTestBook(isbn, title, author string, year int) *domain.Book {
	return &domain.Book{
		ISBN:   isbn,
		Title:  title,
		Author: author,
		Year:   year,
	}
}

// mustCreateUser seeds a user or fails the test.
func mustCreateUser(t *testing.T, s *Store, u *domain.User) {
	t.Helper()
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s): %v", u.ID, err)
	}
}

// mustCreateBook seeds a book or fails the test.
func mustCreateBook(t *testing.T, s *Store, b *domain.Book) {
	t.Helper()
	if err := s.CreateBook(context.Background(), b); err != nil {
		t.Fatalf("CreateBook(%s): %v", b.ISBN, err)
	}
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Verify foreign keys are enabled.
	var fk int
	err = s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Error("expected foreign_keys=1")
	}
}
