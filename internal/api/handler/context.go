package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sparta/authcore/internal/api/middleware"
	"github.com/sparta/authcore/internal/core/domain"
)

// PrincipalHandlerFunc is a handler that receives the authenticated principal
// as an argument instead of reading it from the context.
type PrincipalHandlerFunc func(c echo.Context, p domain.Principal) error

// WithPrincipal adapts fn to an echo.HandlerFunc. Requests without a principal
// fail with domain.ErrUnauthenticated before fn runs.
func WithPrincipal(fn PrincipalHandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			return domain.ErrUnauthenticated
		}
		return fn(c, p)
	}
}
