package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sparta/authcore/internal/core/domain"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

const selectUser = `SELECT id, username, email, password_hash, role, created_at FROM users`

// CredentialStore implements ports.CredentialStore on sqlite. Uniqueness is
// enforced by UNIQUE columns, so concurrent inserts cannot both succeed.
type CredentialStore struct {
	db *sql.DB
}

func NewCredentialStore(db *sql.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// Init creates the users table if missing.
func (s *CredentialStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (s *CredentialStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO users (id, username, email, password_hash, role, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.CreatedAt.UTC(),
	)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	return &created, nil
}

func (s *CredentialStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, selectUser+` WHERE username = ?`, username))
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, selectUser+` WHERE email = ?`, email))
}

func (s *CredentialStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func uniqueViolation(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	if strings.Contains(msg, "users.email") {
		return domain.ErrDuplicateEmail
	}
	return domain.ErrDuplicateUsername
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user domain.User
		role string
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.Role = domain.Role(role)
	return &user, nil
}
