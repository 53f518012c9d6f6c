package resilience

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// CallPool caps the number of concurrent calls to a shared upstream.
// Plans fan out to several model calls at once, so without a cap a burst of
// plans multiplies into a burst of upstream requests.
type CallPool struct {
	sem *semaphore.Weighted
}

// NewCallPool creates a pool admitting at most limit concurrent calls.
// A limit below 1 returns nil, which admits everything.
func NewCallPool(limit int) *CallPool {
	if limit < 1 {
		return nil
	}
	return &CallPool{sem: semaphore.NewWeighted(int64(limit))}
}

// Do waits for a slot, runs fn, and releases the slot. It returns ctx.Err()
// if ctx is done before a slot frees up. A nil pool runs fn directly.
func (p *CallPool) Do(ctx context.Context, fn func() error) error {
	if p == nil {
		return fn()
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	return fn()
}
