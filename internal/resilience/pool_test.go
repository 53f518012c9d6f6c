package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCallPoolLimitsConcurrency(t *testing.T) {
	const limit = 4
	pool := NewCallPool(limit)

	var running, maxSeen atomic.Int32
	var wg sync.WaitGroup
	for range 12 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pool.Do(context.Background(), func() error {
				cur := running.Add(1)
				for {
					old := maxSeen.Load()
					if cur <= old || maxSeen.CompareAndSwap(old, cur) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				running.Add(-1)
				return nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if m := maxSeen.Load(); m > limit {
		t.Errorf("max concurrent = %d, want <= %d", m, limit)
	}
}

func TestCallPoolWaitHonoursContext(t *testing.T) {
	pool := NewCallPool(1)

	occupied := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = pool.Do(context.Background(), func() error {
			close(occupied)
			<-release
			return nil
		})
	}()
	<-occupied
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.Do(ctx, func() error {
		t.Error("fn must not run without a slot")
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestCallPoolReturnsFnError(t *testing.T) {
	want := errors.New("upstream 503")
	if err := NewCallPool(2).Do(context.Background(), func() error { return want }); !errors.Is(err, want) {
		t.Errorf("expected fn error, got %v", err)
	}
}

func TestNilCallPoolIsUnlimited(t *testing.T) {
	pool := NewCallPool(0)
	if pool != nil {
		t.Fatal("expected nil pool for limit 0")
	}
	called := false
	if err := pool.Do(context.Background(), func() error { called = true; return nil }); err != nil || !called {
		t.Errorf("nil pool should run fn directly, err=%v called=%v", err, called)
	}
}
