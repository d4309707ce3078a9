package token

import (
	"errors"
	"fmt"
)

// Kind classifies why a token was rejected.
type Kind int

const (
	Malformed Kind = iota + 1
	InvalidSignature
	Expired
	UnsupportedAlgorithm
	MissingToken
)

func (k Kind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case InvalidSignature:
		return "invalid_signature"
	case Expired:
		return "expired"
	case UnsupportedAlgorithm:
		return "unsupported_algorithm"
	case MissingToken:
		return "missing_token"
	default:
		return "unknown"
	}
}

// Error is returned for every token rejection. Compare with errors.Is against
// the Err* sentinels.
type Error struct {
	Kind Kind
	Err  error
}

var (
	ErrMalformed            = &Error{Kind: Malformed}
	ErrInvalidSignature     = &Error{Kind: InvalidSignature}
	ErrExpired              = &Error{Kind: Expired}
	ErrUnsupportedAlgorithm = &Error{Kind: UnsupportedAlgorithm}
	ErrMissingToken         = &Error{Kind: MissingToken}
)

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
	}
	return "token " + e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf extracts the rejection kind from err.
func KindOf(err error) (Kind, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return 0, false
}
