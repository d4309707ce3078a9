package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sparta/authcore/internal/core/domain"
	"github.com/sparta/authcore/internal/core/ports"
)

var _ ports.CredentialStore = (*CredentialStore)(nil)

func newTestStore(t *testing.T) *CredentialStore {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "auth.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	s := NewCredentialStore(db)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return s
}

func TestCredentialStore_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if _, err := s.FindByUsername(ctx, "alice"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	created := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	_, err := s.Create(ctx, &domain.User{
		ID:           "u-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Role:         domain.RoleAdmin,
		CreatedAt:    created,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	u, err := s.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if u.ID != "u-1" || u.Email != "alice@example.com" || u.Role != domain.RoleAdmin || u.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if !u.CreatedAt.Equal(created) {
		t.Fatalf("created_at: got %v want %v", u.CreatedAt, created)
	}

	if u, err := s.FindByEmail(ctx, "alice@example.com"); err != nil || u.Username != "alice" {
		t.Fatalf("find by email: %+v %v", u, err)
	}
}

func TestCredentialStore_Uniqueness(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Create(ctx, &domain.User{ID: "1", Username: "alice", Email: "alice@example.com", PasswordHash: "h", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = s.Create(ctx, &domain.User{ID: "2", Username: "alice", Email: "x@example.com", PasswordHash: "h", Role: domain.RoleUser})
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	_, err = s.Create(ctx, &domain.User{ID: "3", Username: "bob", Email: "alice@example.com", PasswordHash: "h", Role: domain.RoleUser})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestCredentialStore_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Create(ctx, &domain.User{
				ID:           string(rune('a' + i)),
				Username:     "race",
				Email:        fmt.Sprintf("race%d@example.com", i),
				PasswordHash: "h",
				Role:         domain.RoleUser,
				CreatedAt:    time.Now(),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if !errors.Is(err, domain.ErrDuplicateUsername) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one successful insert, got %d", successes)
	}
}
