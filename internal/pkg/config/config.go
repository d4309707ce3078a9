package config

import (
	"context"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/sparta/authcore/internal/core/domain"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"

	HasherBcrypt = "bcrypt"
	HasherArgon2 = "argon2"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth   AuthConfig
	Store  StoreConfig
	Mongo  MongoConfig
	SQLite SQLiteConfig
	Redis  RedisConfig
}

type AuthConfig struct {
	// JWTSecret is the base64-encoded HS256 key, at least 32 bytes decoded.
	JWTSecret string `env:"JWT_SECRET"`

	// AdminToken gates ADMIN signups. Empty disables admin signup entirely.
	AdminToken string `env:"ADMIN_TOKEN"`

	// CookieSecure marks the auth cookie Secure. Set it to false only for
	// local development over plain HTTP.
	CookieSecure bool `env:"COOKIE_SECURE, default=true"`

	PasswordHasher string        `env:"PASSWORD_HASHER,    default=bcrypt"`
	MaxAttempts    int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	Lockout        time.Duration `env:"LOGIN_LOCKOUT,      default=15m"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=memory"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=authcore"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=data/authcore.db"`
}

// RedisConfig configures the login throttle. An empty Addr disables it.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IsProduction reports whether ENV selects production behaviour.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l. Problems are reported as
// *domain.ConfigError.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, &domain.ConfigError{Field: "env", Reason: "cannot parse environment", Err: err}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return &domain.ConfigError{Field: "JWT_SECRET", Reason: "required"}
	}
	switch c.Store.Driver {
	case StoreMemory, StoreSQLite, StoreMongo:
	default:
		return &domain.ConfigError{Field: "STORE_DRIVER", Reason: "must be one of memory, sqlite, mongo"}
	}
	switch c.Auth.PasswordHasher {
	case HasherBcrypt, HasherArgon2:
	default:
		return &domain.ConfigError{Field: "PASSWORD_HASHER", Reason: "must be bcrypt or argon2"}
	}
	if c.Auth.MaxAttempts <= 0 {
		return &domain.ConfigError{Field: "LOGIN_MAX_ATTEMPTS", Reason: "must be positive"}
	}
	return nil
}
