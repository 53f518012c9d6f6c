package service

import (
	"context"

	"github.com/Strob0t/VoyageMind/internal/domain"
	"github.com/Strob0t/VoyageMind/internal/port/llm"
	"github.com/Strob0t/VoyageMind/internal/resilience"
)

// DefaultTemperature is the sampling temperature for every persona call.
const DefaultTemperature = 0.7

// ModelCaller sends one system+user exchange to the chat model with JSON
// output requested. It holds no per-call state and is shared by all agents.
type ModelCaller struct {
	transport   llm.Transport
	temperature float64
	pool        *resilience.CallPool
}

// NewModelCaller creates a ModelCaller. A negative temperature selects
// DefaultTemperature.
func NewModelCaller(transport llm.Transport, temperature float64) *ModelCaller {
	if temperature < 0 {
		temperature = DefaultTemperature
	}
	return &ModelCaller{transport: transport, temperature: temperature}
}

// SetPool bounds the number of concurrent calls. A nil pool is unlimited.
func (m *ModelCaller) SetPool(p *resilience.CallPool) {
	m.pool = p
}

// Complete returns the raw reply text. Failures are ModelUnavailable or
// ModelEmptyResponse as reported by the transport; giving up while waiting
// for a pool slot is ModelUnavailable too.
func (m *ModelCaller) Complete(ctx context.Context, system, user string) (string, error) {
	var reply string
	sent := false
	err := m.pool.Do(ctx, func() error {
		sent = true
		var err error
		reply, err = m.transport.Send(ctx, llm.CompletionRequest{
			System:      system,
			User:        user,
			Temperature: m.temperature,
			JSONMode:    true,
		})
		return err
	})
	if err != nil && !sent {
		return "", domain.NewModelUnavailable(err)
	}
	return reply, err
}
