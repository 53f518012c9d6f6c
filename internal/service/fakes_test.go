package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Strob0t/VoyageMind/internal/domain"
	"github.com/Strob0t/VoyageMind/internal/port/broadcast"
	"github.com/Strob0t/VoyageMind/internal/port/llm"
	"github.com/Strob0t/VoyageMind/internal/port/messagequeue"
	"github.com/Strob0t/VoyageMind/internal/port/prompt"
	"github.com/Strob0t/VoyageMind/internal/port/tracing"
)

// Ensure fakes implement their ports at compile time.
var (
	_ prompt.Store           = (*fakeStore)(nil)
	_ llm.Transport          = (*fakeTransport)(nil)
	_ tracing.Tagger         = (*fakeTagger)(nil)
	_ broadcast.Broadcaster  = (*mockBroadcaster)(nil)
	_ messagequeue.Publisher = (*mockPublisher)(nil)
)

const systemPrefix = "system:"

// fakeStore echoes resource names so the transport can tell personas apart.
type fakeStore struct {
	mu       sync.Mutex
	bindings map[string]map[string]any
	missing  map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{bindings: make(map[string]map[string]any), missing: make(map[string]bool)}
}

func (s *fakeStore) LoadSystemPrompt(name string) (string, error) {
	if s.missing[name] {
		return "", domain.NewTemplateNotFound(name, errors.New("file does not exist"))
	}
	return systemPrefix + name, nil
}

func (s *fakeStore) RenderUserPrompt(name string, bindings map[string]any) (string, error) {
	s.mu.Lock()
	s.bindings[name] = bindings
	s.mu.Unlock()
	country, ok := bindings["country"]
	if !ok {
		return "", domain.NewTemplateRenderError(name, errors.New(`map has no entry for key "country"`))
	}
	return fmt.Sprintf("%s for %v", name, country), nil
}

func (s *fakeStore) boundFor(name string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bindings[name]
}

// replyFunc produces the model reply for one persona.
type replyFunc func(ctx context.Context) (string, error)

// fakeTransport dispatches on the system prompt resource name.
type fakeTransport struct {
	mu       sync.Mutex
	replies  map[string]replyFunc
	calls    map[string]int
	requests []llm.CompletionRequest
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{replies: make(map[string]replyFunc), calls: make(map[string]int)}
}

func (f *fakeTransport) on(systemPrompt string, fn replyFunc) *fakeTransport {
	f.replies[systemPrompt] = fn
	return f
}

func (f *fakeTransport) Send(ctx context.Context, req llm.CompletionRequest) (string, error) {
	key := strings.TrimPrefix(req.System, systemPrefix)
	f.mu.Lock()
	f.calls[key]++
	f.requests = append(f.requests, req)
	fn, ok := f.replies[key]
	f.mu.Unlock()
	if !ok {
		return "", domain.NewModelUnavailable(fmt.Errorf("no reply scripted for %s", key))
	}
	return fn(ctx)
}

func (f *fakeTransport) callCount(systemPrompt string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[systemPrompt]
}

type fakeTagger struct {
	mu       sync.Mutex
	sessions []string
}

func (t *fakeTagger) TagCurrentCall(_ context.Context, sessionID string) {
	t.mu.Lock()
	t.sessions = append(t.sessions, sessionID)
	t.mu.Unlock()
}

func (t *fakeTagger) tagged() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.sessions...)
}

type broadcastRecord struct {
	eventType string
	payload   any
}

type mockBroadcaster struct {
	mu     sync.Mutex
	events []broadcastRecord
}

func (m *mockBroadcaster) BroadcastEvent(_ context.Context, eventType string, payload any) {
	m.mu.Lock()
	m.events = append(m.events, broadcastRecord{eventType, payload})
	m.mu.Unlock()
}

func (m *mockBroadcaster) snapshot() []broadcastRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]broadcastRecord(nil), m.events...)
}

type mockPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
}

func (m *mockPublisher) Publish(_ context.Context, subject string, data []byte) error {
	m.mu.Lock()
	m.subjects = append(m.subjects, subject)
	m.payloads = append(m.payloads, data)
	m.mu.Unlock()
	return nil
}

// fixed replies

func reply(s string) replyFunc {
	return func(context.Context) (string, error) { return s, nil }
}

func specialistJSON(cities ...string) string {
	recs := make([]map[string]any, len(cities))
	for i, c := range cities {
		recs[i] = map[string]any{"city": c, "confidence_score": 0.9 - float64(i)*0.1, "reason": "good for " + c}
	}
	data, _ := json.Marshal(map[string]any{"recommendations": recs})
	return string(data)
}

func finalJSON(cities ...string) string {
	recs := make([]map[string]any, len(cities))
	for i, c := range cities {
		recs[i] = map[string]any{"city": c, "reason": "best overall: " + c}
	}
	data, _ := json.Marshal(recs)
	return string(data)
}

// blockUntilCanceled waits for ctx to end and reports it through canceled.
func blockUntilCanceled(canceled chan<- struct{}) replyFunc {
	return func(ctx context.Context) (string, error) {
		<-ctx.Done()
		canceled <- struct{}{}
		return "", domain.NewModelUnavailable(ctx.Err())
	}
}

func newDeps(store *fakeStore, transport *fakeTransport, tagger *fakeTagger) AgentDeps {
	deps := AgentDeps{
		Prompts:   NewPromptRenderer(store),
		Model:     NewModelCaller(transport, DefaultTemperature),
		ModelName: "gpt-4o-mini",
	}
	if tagger != nil {
		deps.Tagger = tagger
	}
	return deps
}
