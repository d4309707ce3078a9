package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sparta/authcore/internal/core/domain"
)

const (
	defaultMaxAttempts = 5
	defaultLockout     = 15 * time.Minute
)

// LoginThrottle counts failed logins per username in Redis.
// Key format: login:failures:<username>; the counter expires lockout after the
// first failure in a window. Allow and Fail are separate round trips, so
// concurrent attempts may overshoot maxAttempts by the number in flight.
type LoginThrottle struct {
	client      redis.Cmdable
	maxAttempts int64
	lockout     time.Duration
}

// NewLoginThrottle wraps client. Non-positive limits fall back to 5 attempts
// per 15 minutes.
func NewLoginThrottle(client redis.Cmdable, maxAttempts int, lockout time.Duration) *LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if lockout <= 0 {
		lockout = defaultLockout
	}
	return &LoginThrottle{client: client, maxAttempts: int64(maxAttempts), lockout: lockout}
}

// Allow reports domain.ErrTooManyAttempts once the failure budget is spent.
func (t *LoginThrottle) Allow(ctx context.Context, username string) error {
	n, err := t.client.Get(ctx, t.key(username)).Int64()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("throttle check: %w", err)
	}
	if n >= t.maxAttempts {
		return domain.ErrTooManyAttempts
	}
	return nil
}

// Fail records one failed attempt.
func (t *LoginThrottle) Fail(ctx context.Context, username string) error {
	key := t.key(username)
	n, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("throttle incr: %w", err)
	}
	if n == 1 {
		if err := t.client.Expire(ctx, key, t.lockout).Err(); err != nil {
			return fmt.Errorf("throttle expire: %w", err)
		}
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, username string) error {
	return t.client.Del(ctx, t.key(username)).Err()
}

func (t *LoginThrottle) key(username string) string {
	return "login:failures:" + username
}
