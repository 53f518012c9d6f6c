package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/Strob0t/VoyageMind/internal/adapter/otel"
	"github.com/Strob0t/VoyageMind/internal/domain"
	"github.com/Strob0t/VoyageMind/internal/domain/event"
	"github.com/Strob0t/VoyageMind/internal/domain/persona"
	"github.com/Strob0t/VoyageMind/internal/domain/recommendation"
	"github.com/Strob0t/VoyageMind/internal/domain/trip"
	"github.com/Strob0t/VoyageMind/internal/logger"
	"github.com/Strob0t/VoyageMind/internal/port/broadcast"
	"github.com/Strob0t/VoyageMind/internal/port/messagequeue"
)

// PlannerService consults the three specialists concurrently and merges
// their advice through the aggregator.
type PlannerService struct {
	history    *SpecialistAgent
	food       *SpecialistAgent
	transport  *SpecialistAgent
	aggregator *AggregatorAgent

	hub     broadcast.Broadcaster
	queue   messagequeue.Publisher
	metrics *otel.Metrics
}

// NewPlannerService creates a planner with the built-in personas.
func NewPlannerService(deps AgentDeps) *PlannerService {
	return &PlannerService{
		history:    NewSpecialistAgent(persona.HistoryCulture, deps),
		food:       NewSpecialistAgent(persona.FoodCuisine, deps),
		transport:  NewSpecialistAgent(persona.Transportation, deps),
		aggregator: NewAggregatorAgent(persona.Aggregator, deps),
		metrics:    deps.Metrics,
	}
}

// SetBroadcaster attaches a realtime sink for progress events.
func (s *PlannerService) SetBroadcaster(b broadcast.Broadcaster) {
	s.hub = b
}

// SetPublisher attaches a queue for terminal plan events.
func (s *PlannerService) SetPublisher(p messagequeue.Publisher) {
	s.queue = p
}

// Plan produces the final recommendations for req.Country.
//
// The specialists run concurrently. The first specialist failure cancels the
// others and is returned unchanged in kind; the aggregator is not called.
func (s *PlannerService) Plan(ctx context.Context, req trip.Request) (*trip.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sessionID := req.EnsureSession()
	country := req.Country

	ctx = logger.WithSessionID(ctx, sessionID)
	ctx, span := otel.StartPlanSpan(ctx, sessionID, country)
	start := time.Now()
	if s.metrics != nil {
		s.metrics.PlansStarted.Add(ctx, 1)
	}
	slog.InfoContext(ctx, "plan started", "country", country)
	s.emitPlan(ctx, event.PlanStatus{SessionID: sessionID, Country: country, Status: event.StatusWorking})

	res, err := s.plan(ctx, country, sessionID)
	otel.EndSpan(span, err)
	elapsed := time.Since(start)

	if err != nil {
		s.fail(ctx, country, sessionID, elapsed, err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PlansCompleted.Add(ctx, 1)
		s.metrics.PlanDuration.Record(ctx, elapsed.Seconds())
	}
	cities := res.FinalRecommendations.Cities()
	slog.InfoContext(ctx, "plan completed",
		"country", country,
		"cities", cities,
		"duration_ms", elapsed.Milliseconds(),
	)
	s.emitPlan(ctx, event.PlanStatus{
		SessionID: sessionID, Country: country, Status: event.StatusComplete,
		Cities: cities, DurationMS: elapsed.Milliseconds(),
	})
	s.publish(ctx, messagequeue.SubjectPlanCompleted, messagequeue.PlanCompletedPayload{
		SessionID: sessionID, Country: country, Cities: cities, DurationMS: elapsed.Milliseconds(),
	})
	return res, nil
}

func (s *PlannerService) plan(ctx context.Context, country, sessionID string) (*trip.Result, error) {
	specialists := []*SpecialistAgent{s.history, s.food, s.transport}
	sets := make([]recommendation.SpecialistSet, len(specialists))

	for _, a := range specialists {
		s.emitAgent(ctx, a.Persona(), event.StatusPending, "", 0)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range specialists {
		g.Go(func() error {
			s.emitAgent(gctx, a.Persona(), event.StatusWorking, "", 0)
			start := time.Now()
			set, err := a.Recommend(gctx, country, sessionID)
			if err != nil {
				s.emitAgent(gctx, a.Persona(), event.StatusFailed, err.Error(), time.Since(start))
				return err
			}
			sets[i] = set
			s.emitAgent(gctx, a.Persona(), event.StatusComplete, "", time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.emitAgent(ctx, s.aggregator.Persona(), event.StatusWorking, "", 0)
	start := time.Now()
	final, err := s.aggregator.Aggregate(ctx, country, sets[0], sets[1], sets[2], sessionID)
	if err != nil {
		s.emitAgent(ctx, s.aggregator.Persona(), event.StatusFailed, err.Error(), time.Since(start))
		return nil, err
	}
	s.emitAgent(ctx, s.aggregator.Persona(), event.StatusComplete, "", time.Since(start))

	return &trip.Result{
		Country:              country,
		FinalRecommendations: final,
		PerPersona: trip.PerPersona{
			HistoryCulture: sets[0],
			FoodCuisine:    sets[1],
			Transportation: sets[2],
		},
		SessionID: sessionID,
	}, nil
}

func (s *PlannerService) fail(ctx context.Context, country, sessionID string, elapsed time.Duration, err error) {
	kind := string(domain.KindOf(err))
	if kind == "" && errors.Is(err, context.DeadlineExceeded) {
		kind = "timeout"
	}
	if s.metrics != nil {
		s.metrics.PlansFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
		s.metrics.PlanDuration.Record(ctx, elapsed.Seconds())
	}
	slog.ErrorContext(ctx, "plan failed",
		"country", country,
		"kind", kind,
		"duration_ms", elapsed.Milliseconds(),
		"error", err,
	)
	s.emitPlan(ctx, event.PlanStatus{
		SessionID: sessionID, Country: country, Status: event.StatusFailed,
		Kind: kind, Error: err.Error(), DurationMS: elapsed.Milliseconds(),
	})
	s.publish(ctx, messagequeue.SubjectPlanFailed, messagequeue.PlanFailedPayload{
		SessionID: sessionID, Country: country, Kind: kind, Error: err.Error(), DurationMS: elapsed.Milliseconds(),
	})
}

func (s *PlannerService) emitAgent(ctx context.Context, p persona.Persona, status event.Status, msg string, d time.Duration) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastEvent(ctx, event.TypeAgentStatus, event.AgentStatus{
		SessionID:  logger.SessionID(ctx),
		Persona:    p.Name,
		Role:       string(p.Role),
		Status:     status,
		Error:      msg,
		DurationMS: d.Milliseconds(),
	})
}

func (s *PlannerService) emitPlan(ctx context.Context, ev event.PlanStatus) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastEvent(ctx, event.TypePlanStatus, ev)
}

// publish sends a terminal plan event. The plan outcome never depends on it.
func (s *PlannerService) publish(ctx context.Context, subject string, payload any) {
	if s.queue == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "marshal plan event", "subject", subject, "error", err)
		return
	}
	if err := s.queue.Publish(context.WithoutCancel(ctx), subject, data); err != nil {
		slog.WarnContext(ctx, "publish plan event", "subject", subject, "error", err)
	}
}
