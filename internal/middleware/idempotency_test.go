package middleware

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Strob0t/VoyageMind/internal/adapter/ristretto"
)

func newIdempotencyHandler(t *testing.T, status int) (http.Handler, *atomic.Int32) {
	t.Helper()
	c, err := ristretto.New(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.Close)

	var calls atomic.Int32
	h := Idempotency(c, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"call":%d,"echo":%q}`, n, body)
	}))
	return h, &calls
}

func post(h http.Handler, path, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIdempotencyReplaysResponse(t *testing.T) {
	h, calls := newIdempotencyHandler(t, http.StatusOK)

	first := post(h, "/api/v1/plan", "key-1", `{"country":"Japan"}`)
	second := post(h, "/api/v1/plan", "key-1", `{"country":"Japan"}`)

	if calls.Load() != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls.Load())
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("replayed body differs: %q vs %q", second.Body.String(), first.Body.String())
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Error("expected Idempotent-Replayed header on replay")
	}
	if first.Header().Get("Idempotent-Replayed") != "" {
		t.Error("first response must not be marked as replayed")
	}
	if second.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected stored headers to be replayed, got %q", second.Header().Get("Content-Type"))
	}
}

func TestIdempotencyWithoutKey(t *testing.T) {
	h, calls := newIdempotencyHandler(t, http.StatusOK)
	post(h, "/api/v1/plan", "", `{}`)
	post(h, "/api/v1/plan", "", `{}`)
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls without key, got %d", calls.Load())
	}
}

func TestIdempotencyScopedToPath(t *testing.T) {
	h, calls := newIdempotencyHandler(t, http.StatusOK)
	post(h, "/api/v1/plan", "shared", `{}`)
	post(h, "/plan", "shared", `{}`)
	if calls.Load() != 2 {
		t.Errorf("same key on another path must not replay, got %d calls", calls.Load())
	}
}

func TestIdempotencySkipsServerErrors(t *testing.T) {
	h, calls := newIdempotencyHandler(t, http.StatusInternalServerError)
	post(h, "/api/v1/plan", "retry-me", `{}`)
	rec := post(h, "/api/v1/plan", "retry-me", `{}`)
	if calls.Load() != 2 {
		t.Errorf("expected failed plan to run again, got %d calls", calls.Load())
	}
	if rec.Header().Get("Idempotent-Replayed") != "" {
		t.Error("5xx responses must not be replayed")
	}
}

func TestIdempotencyCachesClientErrors(t *testing.T) {
	h, calls := newIdempotencyHandler(t, http.StatusBadRequest)
	post(h, "/api/v1/plan", "bad", `{}`)
	rec := post(h, "/api/v1/plan", "bad", `{}`)
	if calls.Load() != 1 || rec.Code != http.StatusBadRequest {
		t.Errorf("expected replayed 400, got code %d after %d calls", rec.Code, calls.Load())
	}
}

func TestIdempotencyIgnoresGet(t *testing.T) {
	h, calls := newIdempotencyHandler(t, http.StatusOK)
	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
		req.Header.Set("Idempotency-Key", "k")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls.Load() != 2 {
		t.Errorf("GET must not be cached, got %d calls", calls.Load())
	}
}
