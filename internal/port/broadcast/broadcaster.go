// Package broadcast defines the port for pushing planner progress to connected clients.
package broadcast

import "context"

// Broadcaster sends real-time events to all connected clients.
type Broadcaster interface {
	// BroadcastEvent sends a typed event; failures are logged, never returned.
	BroadcastEvent(ctx context.Context, eventType string, payload any)
}
