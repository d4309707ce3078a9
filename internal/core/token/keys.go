package token

import (
	"encoding/base64"
	"strings"

	"github.com/sparta/authcore/internal/core/domain"
)

// MinKeyLength is the smallest accepted HMAC-SHA256 key, in bytes.
const MinKeyLength = 32

// SigningKey holds the decoded symmetric secret. The zero value is unusable.
type SigningKey struct {
	secret []byte
}

// NewSigningKey decodes a standard base64 secret. The same input always yields
// the same key.
func NewSigningKey(encoded string) (SigningKey, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return SigningKey{}, &domain.ConfigError{Field: "JWT_SECRET", Reason: "secret is empty"}
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return SigningKey{}, &domain.ConfigError{Field: "JWT_SECRET", Reason: "secret is not valid base64", Err: err}
	}
	if len(raw) < MinKeyLength {
		return SigningKey{}, &domain.ConfigError{Field: "JWT_SECRET", Reason: "decoded secret is shorter than 32 bytes"}
	}

	return SigningKey{secret: raw}, nil
}

// Len returns the key length in bytes.
func (k SigningKey) Len() int { return len(k.secret) }

func (k SigningKey) bytes() []byte { return k.secret }
