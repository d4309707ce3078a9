package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/sparta/authcore/internal/core/domain"
)

const testSecret = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": testSecret,
	}))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Store.Driver != StoreMemory || cfg.Auth.PasswordHasher != HasherBcrypt {
		t.Fatalf("unexpected backend defaults: %+v %+v", cfg.Store, cfg.Auth)
	}
	if cfg.Auth.MaxAttempts != 5 || cfg.Auth.Lockout != 15*time.Minute {
		t.Fatalf("unexpected throttle defaults: %+v", cfg.Auth)
	}
	if cfg.Redis.Addr != "" || cfg.Auth.AdminToken != "" {
		t.Fatalf("optional settings should be off by default: %+v", cfg)
	}
	if !cfg.Auth.CookieSecure {
		t.Fatalf("auth cookie must be Secure by default")
	}
	if cfg.IsProduction() {
		t.Fatalf("development must not be production")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":      testSecret,
		"ENV":             "production",
		"ADMIN_TOKEN":     "s3cret",
		"COOKIE_SECURE":   "false",
		"STORE_DRIVER":    "sqlite",
		"SQLITE_PATH":     "/tmp/auth.db",
		"PASSWORD_HASHER": "argon2",
		"REDIS_ADDR":      "localhost:6379",
		"LOGIN_LOCKOUT":   "1m",
	}))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if !cfg.IsProduction() || cfg.Auth.CookieSecure || cfg.Auth.AdminToken != "s3cret" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Store.Driver != StoreSQLite || cfg.SQLite.Path != "/tmp/auth.db" {
		t.Fatalf("store overrides not applied: %+v", cfg)
	}
	if cfg.Auth.PasswordHasher != HasherArgon2 || cfg.Auth.Lockout != time.Minute {
		t.Fatalf("auth overrides not applied: %+v", cfg.Auth)
	}
}

func TestLoadWith_Invalid(t *testing.T) {
	cases := map[string]struct {
		env   map[string]string
		field string
	}{
		"missing secret": {map[string]string{}, "JWT_SECRET"},
		"blank secret":   {map[string]string{"JWT_SECRET": "   "}, "JWT_SECRET"},
		"bad driver":     {map[string]string{"JWT_SECRET": testSecret, "STORE_DRIVER": "postgres"}, "STORE_DRIVER"},
		"bad hasher":     {map[string]string{"JWT_SECRET": testSecret, "PASSWORD_HASHER": "md5"}, "PASSWORD_HASHER"},
		"bad attempts":   {map[string]string{"JWT_SECRET": testSecret, "LOGIN_MAX_ATTEMPTS": "0"}, "LOGIN_MAX_ATTEMPTS"},
		"unparsable":     {map[string]string{"JWT_SECRET": testSecret, "LOGIN_LOCKOUT": "soon"}, "env"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(tc.env))
			var ce *domain.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if ce.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, ce.Field)
			}
		})
	}
}
