package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sparta/authcore/internal/api/cookie"
	"github.com/sparta/authcore/internal/core/domain"
	"github.com/sparta/authcore/internal/core/token"
)

const testKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

func newTestCodec(t *testing.T, now func() time.Time) *token.Codec {
	t.Helper()
	key, err := token.NewSigningKey(testKey)
	if err != nil {
		t.Fatalf("NewSigningKey: %v", err)
	}
	return token.NewCodec(key, token.WithClock(now))
}

func issue(t *testing.T, codec *token.Codec, sub string, role domain.Role) string {
	t.Helper()
	tok, err := codec.Issue(sub, role)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

// runAuthenticate passes req through Authenticate and returns the principal
// observed by the next handler.
func runAuthenticate(t *testing.T, codec *token.Codec, req *http.Request) (domain.Principal, bool) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var (
		got    domain.Principal
		ok     bool
		called bool
	)
	handler := Authenticate(codec, zerolog.Nop())(func(c echo.Context) error {
		called = true
		got, ok = PrincipalFrom(c)
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	return got, ok
}

func TestAuthenticate_ValidCookie(t *testing.T) {
	codec := newTestCodec(t, time.Now)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie.New(issue(t, codec, "alice", domain.RoleAdmin), cookie.Options{}))

	p, ok := runAuthenticate(t, codec, req)
	if !ok {
		t.Fatalf("expected principal")
	}
	if p.Subject != "alice" || p.Role != domain.RoleAdmin {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestAuthenticate_HeaderFallback(t *testing.T) {
	codec := newTestCodec(t, time.Now)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", issue(t, codec, "bob", domain.RoleUser))

	p, ok := runAuthenticate(t, codec, req)
	if !ok || p.Subject != "bob" {
		t.Fatalf("expected principal from header, got %+v ok=%v", p, ok)
	}
}

func TestAuthenticate_CookieWinsOverHeader(t *testing.T) {
	codec := newTestCodec(t, time.Now)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: "garbage"})
	req.Header.Set("Authorization", issue(t, codec, "bob", domain.RoleUser))

	if p, ok := runAuthenticate(t, codec, req); ok {
		t.Fatalf("invalid cookie must leave request anonymous, got %+v", p)
	}
}

func TestAuthenticate_Anonymous(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := now
	codec := newTestCodec(t, func() time.Time { return clock })
	valid := issue(t, codec, "alice", domain.RoleUser)

	cases := map[string]func(*http.Request){
		"no credentials": func(*http.Request) {},
		"wrong scheme": func(r *http.Request) {
			r.Header.Set("Authorization", "bearer "+valid[len(token.Scheme):])
		},
		"no scheme": func(r *http.Request) {
			r.Header.Set("Authorization", valid[len(token.Scheme):])
		},
		"tampered": func(r *http.Request) {
			r.Header.Set("Authorization", valid[:len(valid)-2]+"xx")
		},
		"foreign key": func(r *http.Request) {
			other, _ := token.NewSigningKey("ZmVkY2JhOTg3NjU0MzIxMGZlZGNiYTk4NzY1NDMyMTA=")
			tok, _ := token.NewCodec(other).Issue("alice", domain.RoleAdmin)
			r.Header.Set("Authorization", tok)
		},
	}

	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			setup(req)
			if p, ok := runAuthenticate(t, codec, req); ok {
				t.Fatalf("expected anonymous request, got %+v", p)
			}
		})
	}

	t.Run("expired", func(t *testing.T) {
		clock = now.Add(token.DefaultTTL)
		defer func() { clock = now }()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", valid)
		if p, ok := runAuthenticate(t, codec, req); ok {
			t.Fatalf("expected anonymous request, got %+v", p)
		}
	})
}

func TestRequirePrincipal(t *testing.T) {
	e := echo.New()
	handler := RequirePrincipal()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	rec := httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(principalKey, domain.Principal{Subject: "alice", Role: domain.RoleUser})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
