package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `user_id, email, username, pass_hash, updates, created_at, updated_at, last_login_at`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		updates     int
		createdAt   string
		updatedAt   string
		lastLoginAt string
	)

	err := scanner.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&updates,
		&createdAt,
		&updatedAt,
		&lastLoginAt,
	)
	if err != nil {
		return nil, err
	}

	u.WantsUpdates = updates != 0

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	u.LastLoginAt, err = parseTime(lastLoginAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// CreateUser inserts a new user into the database.
// Uniqueness is enforced by the schema so concurrent registrations can't
// both win; constraint failures are mapped to the matching sentinel.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			user_id, email, username, pass_hash, updates,
			created_at, updated_at, last_login_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		boolToInt(user.WantsUpdates),
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		formatTime(user.LastLoginAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			switch {
			case strings.Contains(err.Error(), "users.username"):
				return store.ErrUsernameExists
			case strings.Contains(err.Error(), "users.email"):
				return store.ErrEmailExists
			default:
				return store.ErrAlreadyExists
			}
		}
		return err
	}
	return nil
}

// GetUser retrieves a user by ID.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = ?`, id)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByIdentifier retrieves the single user whose username or email
// matches the identifier. Zero matches and more than one match are both
// store.ErrNotFound; an ambiguous identifier never resolves to "pick first".
func (s *Store) GetUserByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? OR email = ?`,
		identifier, identifier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(users) != 1 {
		return nil, store.ErrNotFound
	}
	return users[0], nil
}

// UpdateUserLastLogin records a successful login.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) UpdateUserLastLogin(ctx context.Context, user *domain.User) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET last_login_at = ?, updated_at = ?
		WHERE user_id = ?`,
		formatTime(user.LastLoginAt),
		formatTime(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
