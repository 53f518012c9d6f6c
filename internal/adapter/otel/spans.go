package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "voyagemind"

// StartPlanSpan starts the root span for one planning request.
func StartPlanSpan(ctx context.Context, sessionID, country string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "plan",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("langfuse.session.id", sessionID),
			attribute.String("plan.country", country),
		),
	)
}

// StartAgentSpan starts a span for one persona invocation within a plan.
func StartAgentSpan(ctx context.Context, persona, model string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "agent "+persona,
		trace.WithAttributes(
			attribute.String("agent.persona", persona),
			attribute.String("gen_ai.request.model", model),
		),
	)
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// SessionTagger implements tracing.Tagger by setting the session id on the
// span in ctx. Langfuse groups traces by langfuse.session.id.
type SessionTagger struct{}

// TagCurrentCall tags the current span with sessionID.
func (SessionTagger) TagCurrentCall(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("langfuse.session.id", sessionID),
	)
}
