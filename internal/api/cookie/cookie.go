// Package cookie moves bearer tokens between HTTP requests/responses and the
// Authorization cookie.
//
// Cookie values cannot carry the space after the scheme, so values are
// percent-encoded with spaces written as %20 (never '+', which some decoders
// leave as-is).
package cookie

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Name is the cookie (and fallback header) carrying the token.
const Name = "Authorization"

// Options controls the attributes of the emitted cookie.
type Options struct {
	Secure bool
	MaxAge time.Duration
}

// Encode percent-encodes a token for use as a cookie value.
func Encode(token string) string {
	return strings.ReplaceAll(url.QueryEscape(token), "+", "%20")
}

// Decode reverses Encode.
func Decode(value string) (string, error) {
	return url.QueryUnescape(value)
}

// New builds the cookie that carries token. HttpOnly is always set; Secure
// follows opts.
func New(token string, opts Options) *http.Cookie {
	c := &http.Cookie{
		Name:     Name,
		Value:    Encode(token),
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if opts.MaxAge > 0 {
		c.MaxAge = int(opts.MaxAge / time.Second)
		c.Expires = time.Now().Add(opts.MaxAge).UTC()
	}
	return c
}

// Expired builds a cookie that makes the browser drop the token. The token
// itself stays valid until it expires.
func Expired(opts Options) *http.Cookie {
	return &http.Cookie{
		Name:     Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	}
}

// FromCookies returns the decoded value of the first cookie named Name.
func FromCookies(cookies []*http.Cookie) (string, bool) {
	for _, c := range cookies {
		if c.Name != Name {
			continue
		}
		v, err := Decode(c.Value)
		if err != nil {
			return "", false
		}
		return v, true
	}
	return "", false
}

// FromRequest extracts the raw, scheme-prefixed token from r. The cookie wins;
// the Authorization header is used only when no cookie is present.
func FromRequest(r *http.Request) (string, bool) {
	cookies := r.Cookies()
	for _, c := range cookies {
		if c.Name == Name {
			return FromCookies(cookies)
		}
	}
	if h := r.Header.Get(Name); h != "" {
		return h, true
	}
	return "", false
}
