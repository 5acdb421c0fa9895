package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/auth"
	"github.com/pageturnapp/pageturn-server/internal/domain"
	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/id"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

// SessionStore is the persistence surface session management needs.
type SessionStore interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	TouchSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

// SessionService authenticates users and manages their server-side sessions.
// The client only ever holds the opaque token; the store holds its hash.
type SessionService struct {
	store      SessionStore
	users      *UserService
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewSessionService creates a new session authenticator.
func NewSessionService(store SessionStore, users *UserService, sessionTTL time.Duration, logger *slog.Logger) *SessionService {
	return &SessionService{
		store:      store,
		users:      users,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Login verifies credentials and establishes a new session.
// Returns the user and the opaque token for the client to hold.
// On failure the caller stays anonymous; the error carries the failure kind
// for user-facing messaging.
func (s *SessionService) Login(ctx context.Context, identifier, password, ipAddress string) (*domain.User, string, error) {
	user, err := s.users.Verify(ctx, identifier, password)
	if err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, "", fmt.Errorf("generate session token: %w", err)
	}

	sessionID, err := id.Generate("sess")
	if err != nil {
		return nil, "", fmt.Errorf("generate session ID: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:         sessionID,
		UserID:     user.ID,
		TokenHash:  auth.HashSessionToken(token),
		IPAddress:  ipAddress,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(s.sessionTTL),
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, "", fmt.Errorf("save session: %w", err)
	}

	// Record the login time; failure here shouldn't fail the login.
	user.LastLoginAt = now
	user.Touch()
	if err := s.users.store.UpdateUserLastLogin(ctx, user); err != nil {
		s.logger.Warn("failed to update last login time",
			"user_id", user.ID,
			"error", err,
		)
	}

	s.logger.Info("user logged in",
		"user_id", user.ID,
		"session_id", sessionID,
	)

	return user, token, nil
}

// Logout destroys the session for the given token. Unknown or already
// expired tokens are not an error; logout always leaves the caller anonymous.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	session, err := s.store.GetSessionByTokenHash(ctx, auth.HashSessionToken(token))
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup session: %w", err)
	}

	if err := s.store.DeleteSession(ctx, session.ID); err != nil && !domainerrors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}

	s.logger.Info("user logged out", "session_id", session.ID)
	return nil
}

// Authenticate resolves an opaque token to its user. This is the guard every
// protected operation runs through; absent, unknown, and expired tokens all
// come back as an unauthenticated error.
func (s *SessionService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domainerrors.Unauthenticated("authentication required")
	}

	session, err := s.store.GetSessionByTokenHash(ctx, auth.HashSessionToken(token))
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthenticated("invalid or expired session")
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	user, err := s.users.store.GetUser(ctx, session.UserID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			// User deleted out from under the session; clean it up.
			_ = s.store.DeleteSession(ctx, session.ID)
			return nil, domainerrors.Unauthenticated("invalid or expired session")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	session.Touch()
	if err := s.store.TouchSession(ctx, session); err != nil {
		s.logger.Warn("failed to touch session", "session_id", session.ID, "error", err)
	}

	return user, nil
}

// DeleteExpired removes expired session rows. Run periodically by the janitor.
func (s *SessionService) DeleteExpired(ctx context.Context) (int, error) {
	return s.store.DeleteExpiredSessions(ctx)
}

// StartJanitor launches a background loop that deletes expired sessions at
// the given interval. The returned stop function is idempotent.
func (s *SessionService) StartJanitor(interval time.Duration) (stop func()) {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				n, err := s.DeleteExpired(context.Background())
				if err != nil {
					s.logger.Error("session cleanup failed", "error", err)
					continue
				}
				if n > 0 {
					s.logger.Info("cleaned up expired sessions", "count", n)
				}
			}
		}
	}()

	var stopped bool
	return func() {
		if !stopped {
			stopped = true
			close(done)
		}
	}
}
