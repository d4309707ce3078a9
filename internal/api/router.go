package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/sparta/authcore/internal/api/cookie"
	"github.com/sparta/authcore/internal/api/handler"
	"github.com/sparta/authcore/internal/api/middleware"
	"github.com/sparta/authcore/internal/core/domain"
	"github.com/sparta/authcore/internal/core/ports"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Log         zerolog.Logger
	Tokens      middleware.TokenValidator
	AuthService ports.AuthService
	Store       ports.CredentialStore
	Cookie      cookie.Options
	// Readiness lists the dependencies checked by /health/ready.
	Readiness map[string]handler.PingFunc
	// Metrics receives the HTTP metrics and backs /metrics. Nil means the
	// default Prometheus registry.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Metrics != nil {
		registerer, gatherer = d.Metrics, d.Metrics
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "authcore",
		Registerer: registerer,
	}))
	e.Use(middleware.Authenticate(d.Tokens, d.Log))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.AuthService, d.Cookie)
	userHandler := handler.NewUserHandler(d.Store)
	healthHandler := handler.NewHealthHandler(d.Readiness)

	// --- Auth routes ---
	e.POST("/api/user/signup", authHandler.Signup)
	e.POST("/api/user/login", authHandler.Login)
	e.POST("/api/user/logout", authHandler.Logout)

	// --- Principal routes ---
	e.GET("/", userHandler.Home)
	e.GET("/api/products", handler.WithPrincipal(userHandler.Products), middleware.RequirePrincipal())

	admin := e.Group("/api/admin", middleware.RBAC(domain.RoleAdmin))
	admin.GET("/users/:username", handler.WithPrincipal(userHandler.LookupUser))

	// --- Operational ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			if p, ok := middleware.PrincipalFrom(c); ok {
				ev = ev.Str("subject", p.Subject)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
