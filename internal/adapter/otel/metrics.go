package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "voyagemind"

// Metrics holds all VoyageMind metric instruments.
type Metrics struct {
	PlansStarted   metric.Int64Counter
	PlansCompleted metric.Int64Counter
	PlansFailed    metric.Int64Counter
	// FailuresSeen counts plans.failed events from every instance on the stream.
	FailuresSeen   metric.Int64Counter
	AgentCalls     metric.Int64Counter
	AgentDuration  metric.Float64Histogram
	PlanDuration   metric.Float64Histogram
}

// NewMetrics creates all metric instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.PlansStarted, err = meter.Int64Counter("voyagemind.plans.started",
		metric.WithDescription("Number of plans started"))
	if err != nil {
		return nil, err
	}

	m.PlansCompleted, err = meter.Int64Counter("voyagemind.plans.completed",
		metric.WithDescription("Number of plans completed"))
	if err != nil {
		return nil, err
	}

	m.PlansFailed, err = meter.Int64Counter("voyagemind.plans.failed",
		metric.WithDescription("Number of plans failed, by error kind"))
	if err != nil {
		return nil, err
	}

	m.FailuresSeen, err = meter.Int64Counter("voyagemind.plans.failures_seen",
		metric.WithDescription("plans.failed events consumed from the queue, by error kind"))
	if err != nil {
		return nil, err
	}

	m.AgentCalls, err = meter.Int64Counter("voyagemind.agent.calls",
		metric.WithDescription("Number of persona invocations, by persona and outcome"))
	if err != nil {
		return nil, err
	}

	m.AgentDuration, err = meter.Float64Histogram("voyagemind.agent.duration_seconds",
		metric.WithDescription("Persona invocation duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	m.PlanDuration, err = meter.Float64Histogram("voyagemind.plan.duration_seconds",
		metric.WithDescription("End-to-end plan duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
