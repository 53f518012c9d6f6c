package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Strob0t/VoyageMind/internal/domain/trip"
	"github.com/Strob0t/VoyageMind/internal/logger"
	"github.com/Strob0t/VoyageMind/internal/resilience"
)

// healthCheckTimeout bounds the model endpoint probe in /health.
const healthCheckTimeout = 5 * time.Second

// Planner produces a plan for one country.
type Planner interface {
	Plan(ctx context.Context, req trip.Request) (*trip.Result, error)
}

// HealthChecker probes the chat completion endpoint.
type HealthChecker interface {
	Health(ctx context.Context) (bool, error)
}

// ConnChecker reports whether an optional backend is connected.
type ConnChecker interface {
	IsConnected() bool
}

// FailureCounter tallies plan failures seen across instances, by kind.
type FailureCounter interface {
	Counts() map[string]int64
}

// Handlers holds the dependencies of the HTTP handlers.
type Handlers struct {
	Planner        Planner
	LLM            HealthChecker
	Breaker        *resilience.Breaker
	Queue          ConnChecker    // nil when NATS is disabled
	Failures       FailureCounter // nil when NATS is disabled
	RequestTimeout time.Duration

	// Redact masks credentials in error text returned to clients.
	Redact func(string) string
}

func (h *Handlers) redact(s string) string {
	if h.Redact == nil {
		return s
	}
	return h.Redact(s)
}

// Plan handles POST /api/v1/plan.
func (h *Handlers) Plan(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[trip.Request](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	sessionID := req.EnsureSession()

	ctx := r.Context()
	if h.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.RequestTimeout)
		defer cancel()
	}

	result, err := h.Planner.Plan(ctx, req)
	if err != nil {
		slog.Error("plan request failed",
			"country", req.Country,
			"session_id", sessionID,
			"request_id", logger.RequestID(r.Context()),
			"error", err,
		)
		writePlanError(w, err, sessionID, h.redact)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type llmHealth struct {
	Status  string `json:"status"`
	Breaker string `json:"breaker"`
	Error   string `json:"error,omitempty"`
}

type healthResponse struct {
	Status string    `json:"status"`
	LLM    llmHealth `json:"llm"`
	NATS   string    `json:"nats,omitempty"`

	FailuresSeen map[string]int64 `json:"failures_seen,omitempty"`
}

// Health handles GET /health. The service reports healthy as long as it
// can serve; a failing dependency downgrades it to degraded with 200 so
// load balancers keep routing while the breaker recovers.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "healthy",
		LLM:    llmHealth{Status: "ok", Breaker: string(h.Breaker.State())},
	}

	if h.LLM != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if ok, err := h.LLM.Health(ctx); !ok {
			resp.Status = "degraded"
			resp.LLM.Status = "unreachable"
			if err != nil {
				resp.LLM.Error = h.redact(err.Error())
			}
		}
	}

	if h.Queue != nil {
		resp.NATS = "connected"
		if !h.Queue.IsConnected() {
			resp.NATS = "disconnected"
			resp.Status = "degraded"
		}
	}
	if h.Failures != nil {
		resp.FailuresSeen = h.Failures.Counts()
	}

	writeJSON(w, http.StatusOK, resp)
}
