// Package secrets holds credentials that can be rotated without restarting
// the process.
package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
)

// Loader retrieves secrets from a source (env vars, mounted files, ...).
type Loader func() (map[string]string, error)

// Vault holds secret values in memory and supports atomic reloading.
type Vault struct {
	mu     sync.RWMutex
	values map[string]string
	loader Loader
}

// NewVault creates a Vault, calling the loader once to populate initial values.
func NewVault(loader Loader) (*Vault, error) {
	vals, err := loader()
	if err != nil {
		return nil, fmt.Errorf("initial secret load: %w", err)
	}
	return &Vault{values: vals, loader: loader}, nil
}

// Get returns the secret for key, or an empty string if not found.
func (v *Vault) Get(key string) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.values[key]
}

// Getter returns a function reading the current value of key, for clients
// that resolve their credential per request.
func (v *Vault) Getter(key string) func() string {
	return func() string { return v.Get(key) }
}

// Reload calls the loader and swaps in the new values atomically.
// If the loader fails, existing values are preserved.
func (v *Vault) Reload() error {
	vals, err := v.loader()
	if err != nil {
		return fmt.Errorf("reload secrets: %w", err)
	}
	v.mu.Lock()
	v.values = vals
	v.mu.Unlock()
	return nil
}

// ReloadOnSignal reloads the vault each time one of sigs arrives, until ctx
// is done. Typically called with syscall.SIGHUP.
func (v *Vault) ReloadOnSignal(ctx context.Context, sigs ...os.Signal) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			if err := v.Reload(); err != nil {
				slog.Error("secret reload failed, keeping previous values", "error", err)
				continue
			}
			slog.Info("secrets reloaded")
		}
	}
}

// minRedactLen is the shortest value RedactString masks; shorter values
// would mangle ordinary text.
const minRedactLen = 4

// Redacted returns a masked form of key's value safe for logs: the first two
// characters followed by "****", or just "****" for short values.
func (v *Vault) Redacted(key string) string {
	return mask(v.Get(key))
}

// RedactString masks every secret value occurring in s. Upstream error
// bodies sometimes echo the credential that was rejected.
func (v *Vault) RedactString(s string) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, val := range v.values {
		if len(val) >= minRedactLen {
			s = strings.ReplaceAll(s, val, mask(val))
		}
	}
	return s
}

// Keys returns the names of the loaded secrets.
func (v *Vault) Keys() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	keys := make([]string, 0, len(v.values))
	for k := range v.values {
		keys = append(keys, k)
	}
	return keys
}

func mask(val string) string {
	switch {
	case val == "":
		return ""
	case len(val) <= minRedactLen:
		return "****"
	default:
		return val[:2] + "****"
	}
}
