package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Strob0t/VoyageMind/internal/adapter/otel"
	"github.com/Strob0t/VoyageMind/internal/port/messagequeue"
)

// FailureWatch consumes plans.failed from the queue, so every instance sees
// failures across the fleet, and tallies them by error kind.
type FailureWatch struct {
	metrics *otel.Metrics

	mu     sync.Mutex
	byKind map[string]int64
}

// NewFailureWatch creates a watch; metrics may be nil.
func NewFailureWatch(metrics *otel.Metrics) *FailureWatch {
	return &FailureWatch{metrics: metrics, byKind: make(map[string]int64)}
}

// Start subscribes to plans.failed. The returned function stops consuming.
func (w *FailureWatch) Start(ctx context.Context, sub messagequeue.Subscriber) (func(), error) {
	stop, err := sub.Subscribe(ctx, messagequeue.SubjectPlanFailed, w.Handle)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", messagequeue.SubjectPlanFailed, err)
	}
	return stop, nil
}

// Handle records one plans.failed message. A payload that does not decode is
// returned as an error so the queue redelivers and eventually dead-letters it.
func (w *FailureWatch) Handle(ctx context.Context, subject string, data []byte) error {
	var p messagequeue.PlanFailedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode %s: %w", subject, err)
	}
	kind := p.Kind
	if kind == "" {
		kind = "unknown"
	}

	w.mu.Lock()
	w.byKind[kind]++
	w.mu.Unlock()

	if w.metrics != nil {
		w.metrics.FailuresSeen.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	}
	slog.WarnContext(ctx, "plan failure seen",
		"session_id", p.SessionID,
		"country", p.Country,
		"kind", kind,
		"duration_ms", p.DurationMS,
	)
	return nil
}

// Counts returns a copy of the failure tally since start.
func (w *FailureWatch) Counts() map[string]int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]int64, len(w.byKind))
	for k, v := range w.byKind {
		out[k] = v
	}
	return out
}
