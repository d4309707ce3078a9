package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/sparta/authcore/internal/api/metrics"
	"github.com/sparta/authcore/internal/core/domain"
)

// RBAC enforces role-based access control. Anonymous requests fail with
// domain.ErrUnauthenticated, principals without an allowed role with
// domain.ErrForbidden.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				metrics.AccessDeniedTotal.WithLabelValues("unauthenticated").Inc()
				return domain.ErrUnauthenticated
			}
			if !p.HasRole(allowedRoles...) {
				metrics.AccessDeniedTotal.WithLabelValues("forbidden").Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
