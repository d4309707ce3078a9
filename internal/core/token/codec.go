// Package token issues and validates the HS256 bearer tokens used for
// authentication.
//
// A token is the compact JWT form prefixed with "Bearer ". Claims are
//
//	{"sub": <username>, "auth": "USER"|"ADMIN", "iat": <epoch s>, "exp": <epoch s>}
//
// and a token is valid only while now < exp. iat is truncated to whole
// seconds, so the usable lifetime can be up to 1s shorter than DefaultTTL.
// Tokens are not stored anywhere,
// so a role change or logout does not affect tokens already handed out; they
// stay usable until exp, at most DefaultTTL.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sparta/authcore/internal/core/domain"
)

const (
	// Scheme prefixes every issued token, followed by exactly one space.
	Scheme = "Bearer "
	// RoleClaim is the claim key carrying the role.
	RoleClaim = "auth"
	// DefaultTTL is the fixed token lifetime.
	DefaultTTL = 60 * time.Minute
)

var errUnsupportedAlg = errors.New("unexpected signing algorithm")

// Claims is the validated content of a token.
type Claims struct {
	Subject   string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal converts validated claims into a request-scoped principal.
func (c *Claims) Principal() domain.Principal {
	return domain.Principal{Subject: c.Subject, Role: c.Role}
}

type wireClaims struct {
	Role domain.Role `json:"auth"`
	jwt.RegisteredClaims
}

// Codec signs and verifies tokens with a single key. It is immutable and safe
// for concurrent use.
type Codec struct {
	key    SigningKey
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock overrides the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func NewCodec(key SigningKey, opts ...Option) *Codec {
	c := &Codec{key: key, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = jwt.NewParser(
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)
	return c
}

// TTL returns the lifetime given to issued tokens.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs a token for subject with the given role and returns it with the
// scheme prefix.
func (c *Codec) Issue(subject string, role domain.Role) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", fmt.Errorf("issue token: empty subject: %w", domain.ErrInvalidInput)
	}
	if !role.Valid() {
		return "", fmt.Errorf("issue token: unknown role %q: %w", role, domain.ErrInvalidInput)
	}

	// Claims carry whole seconds; truncating keeps exp-iat exactly the TTL.
	issuedAt := c.now().UTC().Truncate(time.Second)
	claims := wireClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key.bytes())
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return Scheme + signed, nil
}

// Validate verifies a compact token (without the scheme prefix) and returns its
// claims. Every failure is a *Error.
func (c *Codec) Validate(tokenString string) (*Claims, error) {
	var wc wireClaims
	_, err := c.parser.ParseWithClaims(tokenString, &wc, c.keyFunc)
	if err != nil {
		return nil, classify(err)
	}

	if wc.Subject == "" {
		return nil, &Error{Kind: Malformed, Err: errors.New("missing sub claim")}
	}
	if !wc.Role.Valid() {
		return nil, &Error{Kind: Malformed, Err: fmt.Errorf("unknown %s claim %q", RoleClaim, wc.Role)}
	}
	if wc.IssuedAt == nil {
		return nil, &Error{Kind: Malformed, Err: errors.New("missing iat claim")}
	}

	return &Claims{
		Subject:   wc.Subject,
		Role:      wc.Role,
		IssuedAt:  wc.IssuedAt.Time,
		ExpiresAt: wc.ExpiresAt.Time,
	}, nil
}

// StripScheme removes the "Bearer " prefix. Anything else, including a wrong
// case or a missing space, is ErrMissingToken.
func (c *Codec) StripScheme(raw string) (string, error) {
	return StripScheme(raw)
}

// StripScheme is the package-level form of Codec.StripScheme.
func StripScheme(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", &Error{Kind: MissingToken, Err: errors.New("empty token value")}
	}
	if !strings.HasPrefix(raw, Scheme) {
		return "", &Error{Kind: MissingToken, Err: errors.New("missing bearer scheme")}
	}
	rest := raw[len(Scheme):]
	if strings.TrimSpace(rest) == "" {
		return "", &Error{Kind: MissingToken, Err: errors.New("empty token after scheme")}
	}
	return rest, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method != jwt.SigningMethodHS256 {
		return nil, fmt.Errorf("%w: %s", errUnsupportedAlg, t.Method.Alg())
	}
	return c.key.bytes(), nil
}

func classify(err error) *Error {
	switch {
	case errors.Is(err, errUnsupportedAlg), errors.Is(err, jwt.ErrTokenUnverifiable):
		return &Error{Kind: UnsupportedAlgorithm, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return &Error{Kind: InvalidSignature, Err: err}
	case errors.Is(err, jwt.ErrTokenExpired):
		return &Error{Kind: Expired, Err: err}
	default:
		return &Error{Kind: Malformed, Err: err}
	}
}
