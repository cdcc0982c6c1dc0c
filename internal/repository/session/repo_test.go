package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/kailas-cloud/reliefqa/internal/domain"
)

func TestCreateGetDelete(t *testing.T) {
	r := New(10)
	ctx := context.Background()

	s, err := r.Create(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID() == "" {
		t.Fatal("session ID must be set")
	}
	if s.CreatedAt().IsZero() {
		t.Error("CreatedAt must be set")
	}

	got, err := r.Get(ctx, s.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != s {
		t.Error("Get should return the same session")
	}

	if err := r.Delete(ctx, s.ID()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Get(ctx, s.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	r := New(10)
	if _, err := r.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	r := New(10)
	if err := r.Delete(context.Background(), "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestCreate_UniqueIDs(t *testing.T) {
	r := New(100)
	seen := map[string]bool{}
	for range 50 {
		s, _ := r.Create(context.Background())
		if seen[s.ID()] {
			t.Fatalf("duplicate ID %q", s.ID())
		}
		seen[s.ID()] = true
	}
}

func TestCreate_EvictsOldest(t *testing.T) {
	r := New(2)
	n := 0
	r.newID = func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}
	ctx := context.Background()

	for range 3 {
		if _, err := r.Create(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if r.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", r.Len())
	}
	if _, err := r.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("oldest session should be evicted, got %v", err)
	}
	for _, id := range []string{"s2", "s3"} {
		if _, err := r.Get(ctx, id); err != nil {
			t.Errorf("session %s should survive: %v", id, err)
		}
	}
}

func TestNew_DefaultLimit(t *testing.T) {
	if r := New(0); r.maxSessions != DefaultMaxSessions {
		t.Errorf("maxSessions = %d", r.maxSessions)
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := New(1000)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			s, err := r.Create(ctx)
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			if _, err := r.Get(ctx, s.ID()); err != nil {
				t.Errorf("get: %v", err)
			}
		})
	}
	wg.Wait()

	if r.Len() != 20 {
		t.Errorf("expected 20 sessions, got %d", r.Len())
	}
}
