package natskv

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// fakeEntry implements the Value half of jetstream.KeyValueEntry.
type fakeEntry struct {
	jetstream.KeyValueEntry
	value []byte
}

func (e fakeEntry) Value() []byte { return e.value }

// fakeKV implements the subset of jetstream.KeyValue the cache uses.
type fakeKV struct {
	jetstream.KeyValue
	data map[string][]byte
}

func (f *fakeKV) Get(_ context.Context, key string) (jetstream.KeyValueEntry, error) {
	v, ok := f.data[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}
	return fakeEntry{value: v}, nil
}

func (f *fakeKV) Put(_ context.Context, key string, value []byte) (uint64, error) {
	f.data[key] = value
	return uint64(len(f.data)), nil
}

func (f *fakeKV) Delete(_ context.Context, key string, _ ...jetstream.KVDeleteOpt) error {
	if _, ok := f.data[key]; !ok {
		return jetstream.ErrKeyNotFound
	}
	delete(f.data, key)
	return nil
}

func TestCacheRoundTrip(t *testing.T) {
	kv := &fakeKV{data: make(map[string][]byte)}
	c := New(kv)
	ctx := context.Background()

	if err := c.Set(ctx, "plan:abc", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	val, found, err := c.Get(ctx, "plan:abc")
	if err != nil || !found || string(val) != "v" {
		t.Fatalf("expected hit, got %q %v %v", val, found, err)
	}

	if err := c.Delete(ctx, "plan:abc"); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := c.Get(ctx, "plan:abc"); found {
		t.Fatal("expected miss after delete")
	}
	if err := c.Delete(ctx, "plan:abc"); err != nil {
		t.Fatalf("deleting a missing key should not error, got %v", err)
	}
}

func TestKVKey(t *testing.T) {
	tests := map[string]string{
		"simple-key_1":      "simple-key_1",
		"plan:abc def":      "plan_abc_def",
		"idem/POST/plan.v1": "idem/POST/plan.v1",
	}
	for in, want := range tests {
		if got := kvKey(in); got != want {
			t.Errorf("kvKey(%q) = %q, want %q", in, got, want)
		}
	}
}
