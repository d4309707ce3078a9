// @title        authcore API
// @version      1.0
// @description  Stateless bearer-token authentication service.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/sparta/authcore/docs"
	"github.com/sparta/authcore/internal/api"
	"github.com/sparta/authcore/internal/api/cookie"
	"github.com/sparta/authcore/internal/api/handler"
	"github.com/sparta/authcore/internal/core/ports"
	"github.com/sparta/authcore/internal/core/service"
	"github.com/sparta/authcore/internal/core/token"
	"github.com/sparta/authcore/internal/infrastructure/crypto"
	"github.com/sparta/authcore/internal/infrastructure/db/memory"
	mongostore "github.com/sparta/authcore/internal/infrastructure/db/mongo"
	redisstore "github.com/sparta/authcore/internal/infrastructure/db/redis"
	"github.com/sparta/authcore/internal/infrastructure/db/sqlite"
	"github.com/sparta/authcore/internal/pkg/config"
	"github.com/sparta/authcore/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.New(logger.Options{})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "authcore",
	})

	key, err := token.NewSigningKey(cfg.Auth.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("load signing key")
	}
	codec := token.NewCodec(key)

	store, closeStore, err := buildStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("setup credential store")
	}
	defer closeStore()

	readiness := map[string]handler.PingFunc{"store": store.Ping}
	opts := []service.Option{service.WithAdminSecret(cfg.Auth.AdminToken)}
	if cfg.Auth.AdminToken == "" {
		log.Warn().Msg("ADMIN_TOKEN not set, admin signup is disabled")
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("connect redis")
		}
		defer rdb.Close()
		opts = append(opts, service.WithThrottle(
			redisstore.NewLoginThrottle(rdb, cfg.Auth.MaxAttempts, cfg.Auth.Lockout),
		))
		readiness["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Info().Msg("REDIS_ADDR not set, login throttling disabled")
	}

	authService := service.NewAuthService(store, buildHasher(cfg), codec, log, opts...)

	e := api.NewRouter(api.Deps{
		Log:         log,
		Tokens:      codec,
		AuthService: authService,
		Store:       store,
		Cookie:      cookie.Options{Secure: cfg.Auth.CookieSecure, MaxAge: codec.TTL()},
		Readiness:   readiness,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.Store.Driver).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
}

func buildStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.CredentialStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreSQLite:
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		store := sqlite.NewCredentialStore(db)
		if err := store.Init(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info().Str("path", cfg.SQLite.Path).Msg("sqlite credential store ready")
		return store, func() { _ = db.Close() }, nil

	case config.StoreMongo:
		db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "authcore",
		})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.Client().Disconnect(shutdownCtx)
		}
		store := mongostore.NewCredentialStore(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo credential store ready")
		return store, closeFn, nil

	default:
		log.Warn().Msg("using in-memory credential store, accounts are lost on restart")
		return memory.NewCredentialStore(), func() {}, nil
	}
}

func buildHasher(cfg *config.Config) ports.PasswordHasher {
	if cfg.Auth.PasswordHasher == config.HasherArgon2 {
		return crypto.NewArgon2Hasher(crypto.DefaultArgon2Params)
	}
	return crypto.NewBcryptHasher(0)
}
