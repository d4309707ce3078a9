package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sparta/authcore/internal/core/domain"
	"github.com/sparta/authcore/internal/core/token"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"invalid input", fmt.Errorf("%w: username is required", domain.ErrInvalidInput), http.StatusBadRequest, "invalid input: username is required"},
		{"duplicate username", domain.ErrDuplicateUsername, http.StatusConflict, "username already exists"},
		{"duplicate email", domain.ErrDuplicateEmail, http.StatusConflict, "email already exists"},
		{"admin token", domain.ErrInvalidAdminToken, http.StatusForbidden, "invalid admin token"},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid username or password"},
		{"not found", fmt.Errorf("lookup: %w", domain.ErrUserNotFound), http.StatusNotFound, "user not found"},
		{"throttled", domain.ErrTooManyAttempts, http.StatusTooManyRequests, "too many failed login attempts"},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, "authentication required"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"token", &token.Error{Kind: token.Expired}, http.StatusUnauthorized, "invalid or expired token"},
		{"echo", echo.NewHTTPError(http.StatusBadRequest, "bad"), http.StatusBadRequest, "bad"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	e := echo.New()
	h := NewHTTPErrorHandler(zerolog.Nop())

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			h(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error != tc.msg {
				t.Fatalf("expected message %q, got %q", tc.msg, body.Error)
			}
		})
	}
}
