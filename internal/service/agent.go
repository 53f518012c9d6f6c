package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Strob0t/VoyageMind/internal/adapter/otel"
	"github.com/Strob0t/VoyageMind/internal/domain"
	"github.com/Strob0t/VoyageMind/internal/domain/persona"
	"github.com/Strob0t/VoyageMind/internal/domain/recommendation"
	"github.com/Strob0t/VoyageMind/internal/port/tracing"
)

// AgentDeps are the shared collaborators every persona agent uses.
type AgentDeps struct {
	Prompts   *PromptRenderer
	Model     *ModelCaller
	Tagger    tracing.Tagger
	Metrics   *otel.Metrics
	ModelName string
}

// Agent runs one persona: render, call the model, parse, normalize. T is
// the normalized result type of the persona.
type Agent[T any] struct {
	persona   persona.Persona
	deps      AgentDeps
	normalize func(any) (T, error)
}

// NewAgent creates an Agent for p with the given normalizer.
func NewAgent[T any](p persona.Persona, deps AgentDeps, normalize func(any) (T, error)) *Agent[T] {
	if deps.Tagger == nil {
		deps.Tagger = tracing.Nop{}
	}
	return &Agent[T]{persona: p, deps: deps, normalize: normalize}
}

// Persona returns the agent's persona metadata.
func (a *Agent[T]) Persona() persona.Persona {
	return a.persona
}

// Run executes one invocation. Error kinds from rendering, the model call,
// parsing and normalization are preserved; the message gains the persona name.
func (a *Agent[T]) Run(ctx context.Context, sessionID string, bindings map[string]any) (T, error) {
	var zero T
	start := time.Now()

	ctx, span := otel.StartAgentSpan(ctx, a.persona.Name, a.deps.ModelName)
	a.deps.Tagger.TagCurrentCall(ctx, sessionID)

	out, err := a.run(ctx, bindings)
	otel.EndSpan(span, err)
	a.record(ctx, time.Since(start), err)

	if err != nil {
		slog.WarnContext(ctx, "agent failed",
			"persona", a.persona.Name,
			"kind", domain.KindOf(err),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return zero, fmt.Errorf("agent %s: %w", a.persona.Name, err)
	}

	slog.DebugContext(ctx, "agent complete",
		"persona", a.persona.Name,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (a *Agent[T]) run(ctx context.Context, bindings map[string]any) (T, error) {
	var zero T

	system, user, err := a.deps.Prompts.Render(a.persona, bindings)
	if err != nil {
		return zero, err
	}

	raw, err := a.deps.Model.Complete(ctx, system, user)
	if err != nil {
		return zero, err
	}

	parsed, err := parseReply(raw)
	if err != nil {
		return zero, err
	}
	return a.normalize(parsed)
}

func (a *Agent[T]) record(ctx context.Context, d time.Duration, err error) {
	if a.deps.Metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(domain.KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	attrs := metric.WithAttributes(
		attribute.String("persona", a.persona.Name),
		attribute.String("outcome", outcome),
	)
	a.deps.Metrics.AgentCalls.Add(ctx, 1, attrs)
	a.deps.Metrics.AgentDuration.Record(ctx, d.Seconds(), attrs)
}

// parseReply decodes the reply as exactly one JSON value. Numbers stay
// json.Number so confidence scores keep their literal value.
func parseReply(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, domain.NewMalformedJSON(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, domain.NewMalformedJSON(errors.New("unexpected data after JSON value"))
	}
	return v, nil
}

// SpecialistAgent recommends three cities from one point of view.
type SpecialistAgent struct {
	*Agent[recommendation.SpecialistSet]
}

// NewSpecialistAgent creates a specialist for p.
func NewSpecialistAgent(p persona.Persona, deps AgentDeps) *SpecialistAgent {
	return &SpecialistAgent{NewAgent(p, deps, recommendation.NormalizeSpecialist)}
}

// Recommend asks the specialist for its three cities in country.
func (s *SpecialistAgent) Recommend(ctx context.Context, country, sessionID string) (recommendation.SpecialistSet, error) {
	return s.Run(ctx, sessionID, map[string]any{"country": country})
}

// AggregatorAgent merges the specialist sets into the final two cities.
type AggregatorAgent struct {
	*Agent[recommendation.FinalSet]
}

// NewAggregatorAgent creates the aggregator for p.
func NewAggregatorAgent(p persona.Persona, deps AgentDeps) *AggregatorAgent {
	return &AggregatorAgent{NewAgent(p, deps, recommendation.NormalizeFinal)}
}

// Aggregate asks for the final two cities given all three specialist sets.
func (a *AggregatorAgent) Aggregate(ctx context.Context, country string, history, food, transport recommendation.SpecialistSet, sessionID string) (recommendation.FinalSet, error) {
	return a.Run(ctx, sessionID, map[string]any{
		"country":                        country,
		"history_recommendations":        history.Slice(),
		"food_recommendations":           food.Slice(),
		"transportation_recommendations": transport.Slice(),
	})
}
