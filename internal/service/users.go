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

// UserStore is the persistence surface the credential store needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	UpdateUserLastLogin(ctx context.Context, user *domain.User) error
}

// UserService owns user identity: registration and password verification.
type UserService struct {
	store  UserStore
	logger *slog.Logger
}

// NewUserService creates a new credential store service.
func NewUserService(store UserStore, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
	}
}

// RegisterRequest contains user registration data.
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email,max=254"`
	Username        string `json:"username" validate:"required,max=15,excludes=@"`
	Password        string `json:"password" validate:"required,max=1024"`
	PasswordConfirm string `json:"password_confirm"`
	WantsUpdates    bool   `json:"wants_updates"`
}

// Register creates a new user account. The raw password is hashed with
// argon2id and never stored. Username and email uniqueness is enforced by
// the storage layer, so concurrent registrations of the same name can't
// both succeed; the loser gets the matching duplicate error.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	// Confirmation is checked here rather than via a validator tag so an
	// empty confirmation reports a mismatch, not a missing field.
	if req.Password != req.PasswordConfirm {
		return nil, domainerrors.InvalidPassword("passwords do not match")
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           userID,
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: passwordHash,
		WantsUpdates: req.WantsUpdates,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLoginAt:  now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		switch {
		case domainerrors.Is(err, store.ErrUsernameExists):
			return nil, domainerrors.DuplicateUsername("username is already in use")
		case domainerrors.Is(err, store.ErrEmailExists):
			return nil, domainerrors.DuplicateEmail("email is already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered",
		"user_id", userID,
		"username", user.Username,
	)

	return user, nil
}

// Verify checks an identifier/password pair and returns the matching user.
// The identifier may be a username or an email. Zero matches and ambiguous
// matches are both reported as not found; a wrong password is reported as
// invalid credentials. Neither leaks which part was wrong beyond that.
func (s *UserService) Verify(ctx context.Context, identifier, password string) (*domain.User, error) {
	if identifier == "" {
		return nil, domainerrors.Validation("must provide username or email")
	}
	if password == "" {
		return nil, domainerrors.InvalidPassword("must provide password")
	}

	user, err := s.store.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("invalid username")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("invalid password")
	}

	return user, nil
}
