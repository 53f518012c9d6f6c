// Package tracing defines the port for correlating model calls in traces.
package tracing

import "context"

// Tagger attaches a session identifier to the call observed in ctx.
// It is fire-and-forget and must tolerate concurrent use.
type Tagger interface {
	TagCurrentCall(ctx context.Context, sessionID string)
}

// Nop is a Tagger that does nothing.
type Nop struct{}

// TagCurrentCall implements Tagger.
func (Nop) TagCurrentCall(context.Context, string) {}
