package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/store/sqlite"
)

// setupSessionTest creates user and session services over temporary storage.
func setupSessionTest(t *testing.T) (*SessionService, *UserService, *sqlite.Store) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlite.Open("file:"+dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	users := NewUserService(s, logger)
	sessions := NewSessionService(s, users, time.Hour, logger)
	return sessions, users, s
}

func TestSessionService_LoginAndAuthenticate(t *testing.T) {
	sessions, users, _ := setupSessionTest(t)
	ctx := context.Background()

	registered, err := users.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	user, token, err := sessions.Login(ctx, "alice", "correct horse battery staple", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)

	authed, err := sessions.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, authed.ID)
}

func TestSessionService_Login_BadPassword(t *testing.T) {
	sessions, users, _ := setupSessionTest(t)
	ctx := context.Background()

	_, err := users.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	_, _, err = sessions.Login(ctx, "alice", "wrong", "127.0.0.1")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestSessionService_Authenticate_BadToken(t *testing.T) {
	sessions, _, _ := setupSessionTest(t)
	ctx := context.Background()

	_, err := sessions.Authenticate(ctx, "")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	_, err = sessions.Authenticate(ctx, "not-a-real-token")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestSessionService_Logout(t *testing.T) {
	sessions, users, _ := setupSessionTest(t)
	ctx := context.Background()

	_, err := users.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	_, token, err := sessions.Login(ctx, "alice", "correct horse battery staple", "127.0.0.1")
	require.NoError(t, err)

	require.NoError(t, sessions.Logout(ctx, token))

	_, err = sessions.Authenticate(ctx, token)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	// Logging out again, or with a made-up token, is a no-op.
	assert.NoError(t, sessions.Logout(ctx, token))
	assert.NoError(t, sessions.Logout(ctx, "never-issued"))
	assert.NoError(t, sessions.Logout(ctx, ""))
}

func TestSessionService_ExpiredSessionRejected(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlite.Open("file:"+dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	users := NewUserService(s, logger)
	// Negative TTL: every session is born expired.
	sessions := NewSessionService(s, users, -time.Minute, logger)

	ctx := context.Background()
	_, err = users.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	_, token, err := sessions.Login(ctx, "alice", "correct horse battery staple", "127.0.0.1")
	require.NoError(t, err)

	_, err = sessions.Authenticate(ctx, token)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	n, err := sessions.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
