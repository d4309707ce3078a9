package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sparta/authcore/internal/api/cookie"
	"github.com/sparta/authcore/internal/api/metrics"
	"github.com/sparta/authcore/internal/core/domain"
	"github.com/sparta/authcore/internal/core/token"
)

const principalKey = "auth.principal"

// TokenValidator is the subset of *token.Codec used by the filter.
type TokenValidator interface {
	StripScheme(raw string) (string, error)
	Validate(compact string) (*token.Claims, error)
}

// Authenticate resolves the request principal from the Authorization cookie
// (or header when no cookie is sent). It never rejects: a missing or invalid
// token leaves the request anonymous and route guards decide what to do.
func Authenticate(v TokenValidator, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := cookie.FromRequest(c.Request())
			if !ok {
				return next(c)
			}

			claims, err := resolve(v, raw)
			if err != nil {
				kind, _ := token.KindOf(err)
				metrics.TokenValidationsTotal.WithLabelValues(kind.String()).Inc()
				log.Debug().
					Err(err).
					Str("kind", kind.String()).
					Str("path", c.Request().URL.Path).
					Msg("bearer token rejected")
				return next(c)
			}

			metrics.TokenValidationsTotal.WithLabelValues("valid").Inc()
			c.Set(principalKey, claims.Principal())
			return next(c)
		}
	}
}

func resolve(v TokenValidator, raw string) (*token.Claims, error) {
	compact, err := v.StripScheme(raw)
	if err != nil {
		return nil, err
	}
	return v.Validate(compact)
}

// PrincipalFrom returns the principal set by Authenticate, if any.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok
}

// RequirePrincipal rejects anonymous requests with domain.ErrUnauthenticated.
func RequirePrincipal() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := PrincipalFrom(c); !ok {
				metrics.AccessDeniedTotal.WithLabelValues("unauthenticated").Inc()
				return domain.ErrUnauthenticated
			}
			return next(c)
		}
	}
}
