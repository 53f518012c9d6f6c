// Package llm defines the port for chat-completion transports.
package llm

import "context"

// CompletionRequest is one system+user exchange with a chat model.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float64

	// JSONMode asks the model to reply with a single JSON object.
	JSONMode bool
}

// Transport sends a completion request and returns the raw reply text.
// Implementations must be safe for concurrent use. Failures are reported
// as domain.ErrModelUnavailable or domain.ErrModelEmptyResponse.
type Transport interface {
	Send(ctx context.Context, req CompletionRequest) (string, error)
}
