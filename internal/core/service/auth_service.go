package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sparta/authcore/internal/core/domain"
	"github.com/sparta/authcore/internal/core/ports"
)

var _ ports.AuthService = (*AuthService)(nil)

// AuthService implements signup and login on top of a credential store.
type AuthService struct {
	store       ports.CredentialStore
	hasher      ports.PasswordHasher
	tokens      ports.TokenIssuer
	throttle    ports.LoginThrottle
	adminSecret string
	log         zerolog.Logger
	now         func() time.Time

	// decoyHash is verified against when the username is unknown so that
	// both login failures cost one hash verification.
	decoyHash string
}

// Option configures an AuthService.
type Option func(*AuthService)

// WithThrottle enables failed-login counting. Without it logins are unlimited.
func WithThrottle(t ports.LoginThrottle) Option {
	return func(s *AuthService) { s.throttle = t }
}

// WithAdminSecret sets the secret required for ADMIN signups. When empty,
// every admin signup is rejected.
func WithAdminSecret(secret string) Option {
	return func(s *AuthService) { s.adminSecret = secret }
}

func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

func NewAuthService(store ports.CredentialStore, hasher ports.PasswordHasher, tokens ports.TokenIssuer, log zerolog.Logger, opts ...Option) *AuthService {
	s := &AuthService{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if h, err := hasher.Hash(decoyPassword); err == nil {
		s.decoyHash = h
	} else {
		log.Warn().Err(err).Msg("failed to prepare decoy password hash")
	}
	return s
}

const decoyPassword = "authcore-decoy-password"

// Signup registers a new account. Checks run in a fixed order: duplicate
// username, duplicate email, admin secret. The store's uniqueness guarantee
// settles races between concurrent signups for the same name.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("signup: username, password and email are required: %w", domain.ErrInvalidInput)
	}

	if err := ensureAbsent(s.store.FindByUsername(ctx, username)); err != nil {
		if errors.Is(err, errExists) {
			return nil, domain.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("signup: lookup username: %w", err)
	}
	if err := ensureAbsent(s.store.FindByEmail(ctx, email)); err != nil {
		if errors.Is(err, errExists) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("signup: lookup email: %w", err)
	}

	role := domain.RoleUser
	if in.Admin {
		if !s.adminTokenMatches(in.AdminToken) {
			s.log.Warn().Str("username", username).Msg("admin signup rejected")
			return nil, domain.ErrInvalidAdminToken
		}
		role = domain.RoleAdmin
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("signup: hash password: %w", err)
	}

	created, err := s.store.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) || errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("signup: persist user: %w", err)
	}

	s.log.Info().Str("username", created.Username).Str("role", string(created.Role)).Msg("user registered")
	return created, nil
}

// Login verifies credentials and returns a freshly issued bearer token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	if err := s.allow(ctx, username); err != nil {
		return "", nil, err
	}

	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.verifyDecoy(password)
			s.fail(ctx, username)
			return "", nil, domain.ErrUserNotFound
		}
		return "", nil, fmt.Errorf("login: lookup user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("login: verify password: %w", err)
	}
	if !ok {
		s.fail(ctx, username)
		return "", nil, domain.ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("login: issue token: %w", err)
	}

	s.reset(ctx, username)
	return tok, user, nil
}

var errExists = errors.New("record exists")

func (s *AuthService) verifyDecoy(password string) {
	if s.decoyHash == "" {
		return
	}
	_, _ = s.hasher.Verify(password, s.decoyHash)
}

func ensureAbsent(_ *domain.User, err error) error {
	switch {
	case err == nil:
		return errExists
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	default:
		return err
	}
}

func (s *AuthService) adminTokenMatches(supplied string) bool {
	if s.adminSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(s.adminSecret)) == 1
}

// Throttle backend errors never block a login; they are logged and skipped.
func (s *AuthService) allow(ctx context.Context, username string) error {
	if s.throttle == nil {
		return nil
	}
	err := s.throttle.Allow(ctx, username)
	if err == nil || errors.Is(err, domain.ErrTooManyAttempts) {
		return err
	}
	s.log.Warn().Err(err).Str("username", username).Msg("login throttle unavailable")
	return nil
}

func (s *AuthService) fail(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Fail(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to record login failure")
	}
}

func (s *AuthService) reset(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Reset(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login throttle")
	}
}
