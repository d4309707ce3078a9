package ports

import (
	"context"

	"github.com/sparta/authcore/internal/core/domain"
)

// CredentialStore persists user records and owns username/email uniqueness.
//
// Lookups return domain.ErrUserNotFound when nothing matches. Create must be
// atomic with respect to uniqueness: a conflicting insert fails with
// domain.ErrDuplicateUsername or domain.ErrDuplicateEmail.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Ping(ctx context.Context) error
}

// PasswordHasher performs one-way salted hashing with constant-time verification.
type PasswordHasher interface {
	Hash(raw string) (string, error)
	Verify(raw, hash string) (bool, error)
}

// LoginThrottle counts failed logins per username.
type LoginThrottle interface {
	// Allow returns domain.ErrTooManyAttempts once the failure budget is spent.
	Allow(ctx context.Context, username string) error
	Fail(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}
