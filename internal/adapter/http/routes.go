package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Mounts are the optional handlers served next to the REST API.
type Mounts struct {
	// PlanMiddleware wraps both plan routes (rate limit, idempotency).
	PlanMiddleware []func(http.Handler) http.Handler
	Events         http.HandlerFunc // WebSocket progress stream at /ws
	MCP            http.Handler
	MCPPath        string
}

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers, m Mounts) {
	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(m.PlanMiddleware...)
		r.Post("/api/v1/plan", h.Plan)
		// Legacy path kept for existing clients.
		r.Post("/plan", h.Plan)
	})

	if m.Events != nil {
		r.Get("/ws", m.Events)
	}
	if m.MCP != nil && m.MCPPath != "" {
		r.Handle(m.MCPPath, m.MCP)
	}
}
