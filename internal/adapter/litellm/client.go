// Package litellm provides an HTTP client for OpenAI-compatible chat
// completion endpoints, either OpenAI itself or a LiteLLM proxy in front of it.
package litellm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Strob0t/VoyageMind/internal/domain"
	"github.com/Strob0t/VoyageMind/internal/port/llm"
	"github.com/Strob0t/VoyageMind/internal/resilience"
)

// maxErrorBody bounds how much of an error response is kept in messages.
const maxErrorBody = 512

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat selects structured output.
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatRequest is the /chat/completions request body.
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// Choice is one completion alternative.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the /chat/completions response body.
type ChatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Model is one entry of the /models listing.
type Model struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// APIError is a non-2xx response from the endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("llm API error %d: %s", e.StatusCode, e.Body)
}

// Client talks to an OpenAI-compatible API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	breaker    *resilience.Breaker
	keySource  func() string
}

// NewClient creates a client for baseURL (e.g. "https://api.openai.com/v1")
// that sends completions to model.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// SetKeySource makes the client resolve its API key per request, so a
// rotated key takes effect without a restart. An empty result falls back to
// the key given to NewClient.
func (c *Client) SetKeySource(fn func() string) {
	c.keySource = fn
}

func (c *Client) key() string {
	if c.keySource != nil {
		if k := c.keySource(); k != "" {
			return k
		}
	}
	return c.apiKey
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// ChatCompletion sends one chat completion request.
func (c *Client) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	data, err := c.doRequest(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	var resp ChatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal chat response: %w", err)
	}
	return &resp, nil
}

// Send implements llm.Transport. Every failure to obtain a reply is
// ModelUnavailable; a reply without content is ModelEmptyResponse.
func (c *Client) Send(ctx context.Context, req llm.CompletionRequest) (string, error) {
	chat := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
	}
	if req.JSONMode {
		chat.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	resp, err := c.ChatCompletion(ctx, chat)
	if err != nil {
		return "", domain.NewModelUnavailable(err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewModelEmptyResponse()
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", domain.NewModelEmptyResponse()
	}
	return content, nil
}

// ListModels returns the models the endpoint serves.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	var result struct {
		Data []Model `json:"data"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal models: %w", err)
	}
	return result.Data, nil
}

// Health checks that the endpoint answers and accepts the API key.
func (c *Client) Health(ctx context.Context) (bool, error) {
	_, err := c.ListModels(ctx)
	return err == nil, err
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var result []byte
	call := func(ctx context.Context) error {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		if key := c.key(); key != "" {
			req.Header.Set("Authorization", "Bearer "+key)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= 400 {
			if len(data) > maxErrorBody {
				data = data[:maxErrorBody]
			}
			return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
		}

		result = data
		return nil
	}

	if err := c.breaker.Execute(ctx, call); err != nil {
		return nil, err
	}
	return result, nil
}
