package ports

import (
	"context"

	"github.com/sparta/authcore/internal/core/domain"
)

// SignupInput carries a registration request.
type SignupInput struct {
	Username   string
	Password   string
	Email      string
	Admin      bool
	AdminToken string
}

// TokenIssuer mints scheme-prefixed bearer tokens.
type TokenIssuer interface {
	Issue(subject string, role domain.Role) (string, error)
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
