package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sparta/authcore/internal/core/domain"
	"github.com/sparta/authcore/internal/core/ports"
)

var _ ports.LoginThrottle = (*LoginThrottle)(nil)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func TestLoginThrottle_BlocksAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	_, rdb := newTestRedis(t)
	th := NewLoginThrottle(rdb, 3, time.Minute)

	for i := 0; i < 3; i++ {
		if err := th.Allow(ctx, "alice"); err != nil {
			t.Fatalf("attempt %d should be allowed: %v", i, err)
		}
		if err := th.Fail(ctx, "alice"); err != nil {
			t.Fatalf("fail: %v", err)
		}
	}

	if err := th.Allow(ctx, "alice"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if err := th.Allow(ctx, "bob"); err != nil {
		t.Fatalf("other users must not be affected: %v", err)
	}
}

func TestLoginThrottle_WindowExpires(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	th := NewLoginThrottle(rdb, 1, time.Minute)

	_ = th.Fail(ctx, "alice")
	if err := th.Allow(ctx, "alice"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected lockout, got %v", err)
	}
	if ttl := mr.TTL("login:failures:alice"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}

	mr.FastForward(time.Minute + time.Second)
	if err := th.Allow(ctx, "alice"); err != nil {
		t.Fatalf("expected lockout to lapse, got %v", err)
	}
}

func TestLoginThrottle_Reset(t *testing.T) {
	ctx := context.Background()
	_, rdb := newTestRedis(t)
	th := NewLoginThrottle(rdb, 1, time.Minute)

	_ = th.Fail(ctx, "alice")
	if err := th.Reset(ctx, "alice"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := th.Allow(ctx, "alice"); err != nil {
		t.Fatalf("expected allowed after reset, got %v", err)
	}
}

func TestLoginThrottle_Defaults(t *testing.T) {
	th := NewLoginThrottle(nil, 0, 0)
	if th.maxAttempts != defaultMaxAttempts || th.lockout != defaultLockout {
		t.Fatalf("unexpected defaults: %d %v", th.maxAttempts, th.lockout)
	}
}

func TestConnect(t *testing.T) {
	mr, _ := newTestRedis(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	_ = client.Close()
}

func TestConnect_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	if _, err := Connect(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond}); err == nil {
		t.Fatalf("expected error connecting to a closed server")
	}
}
