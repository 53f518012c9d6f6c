package ristretto

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSetGetExpire(t *testing.T) {
	c, err := New(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "idem.abc", []byte(`{"status_code":200}`), 50*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if val, ok, _ := c.Get(ctx, "idem.abc"); !ok || string(val) != `{"status_code":200}` {
		t.Fatalf("expected hit, got %q %v", val, ok)
	}

	time.Sleep(100 * time.Millisecond)
	if _, ok, _ := c.Get(ctx, "idem.abc"); ok {
		t.Error("expected entry to expire")
	}
}

func TestSetRejectsOversizedValue(t *testing.T) {
	c, err := New(1 << 10)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	err = c.Set(context.Background(), "big", make([]byte, 4<<10), time.Minute)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if _, ok, _ := c.Get(context.Background(), "big"); ok {
		t.Error("rejected entry must not be readable")
	}
}
