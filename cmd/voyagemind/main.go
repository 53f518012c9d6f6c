// Command voyagemind serves the travel planner over HTTP, WebSocket and MCP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	vmhttp "github.com/Strob0t/VoyageMind/internal/adapter/http"
	"github.com/Strob0t/VoyageMind/internal/adapter/litellm"
	vmmcp "github.com/Strob0t/VoyageMind/internal/adapter/mcp"
	vmnats "github.com/Strob0t/VoyageMind/internal/adapter/nats"
	"github.com/Strob0t/VoyageMind/internal/adapter/natskv"
	"github.com/Strob0t/VoyageMind/internal/adapter/otel"
	"github.com/Strob0t/VoyageMind/internal/adapter/prompts"
	"github.com/Strob0t/VoyageMind/internal/adapter/ristretto"
	"github.com/Strob0t/VoyageMind/internal/adapter/tiered"
	"github.com/Strob0t/VoyageMind/internal/adapter/ws"
	"github.com/Strob0t/VoyageMind/internal/config"
	"github.com/Strob0t/VoyageMind/internal/logger"
	"github.com/Strob0t/VoyageMind/internal/middleware"
	"github.com/Strob0t/VoyageMind/internal/port/cache"
	"github.com/Strob0t/VoyageMind/internal/resilience"
	"github.com/Strob0t/VoyageMind/internal/secrets"
	"github.com/Strob0t/VoyageMind/internal/service"
)

const version = "0.1.0"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "plan" {
		if err := runPlan(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// rotatableSecrets are re-read on SIGHUP.
var rotatableSecrets = []string{"OPENAI_API_KEY"}

// core bundles what both the server and the plan subcommand need.
type core struct {
	llm     *litellm.Client
	breaker *resilience.Breaker
	vault   *secrets.Vault
	planner *service.PlannerService
	metrics *otel.Metrics
}

func newCore(cfg *config.Config) (*core, error) {
	metrics, err := otel.NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	vault, err := secrets.NewVault(secrets.EnvLoader(rotatableSecrets...))
	if err != nil {
		return nil, fmt.Errorf("secrets: %w", err)
	}

	breaker := resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)
	llmClient := litellm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout)
	llmClient.SetBreaker(breaker)
	llmClient.SetKeySource(vault.Getter("OPENAI_API_KEY"))

	caller := service.NewModelCaller(llmClient, cfg.LLM.Temperature)
	caller.SetPool(resilience.NewCallPool(cfg.LLM.MaxConcurrency))

	planner := service.NewPlannerService(service.AgentDeps{
		Prompts:   service.NewPromptRenderer(prompts.New(cfg.Prompts.Dir)),
		Model:     caller,
		Tagger:    otel.SessionTagger{},
		Metrics:   metrics,
		ModelName: cfg.LLM.Model,
	})
	return &core{llm: llmClient, breaker: breaker, vault: vault, planner: planner, metrics: metrics}, nil
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	defer logCloser.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"model", cfg.LLM.Model,
		"log_level", cfg.Logging.Level,
		"nats", cfg.NATS.URL != "",
		"telemetry", cfg.Telemetry.Exporter,
		"langfuse", cfg.Telemetry.LangfuseEnabled(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---

	shutdownTelemetry, err := otel.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	l1, err := ristretto.New(cfg.Cache.L1MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("l1 cache: %w", err)
	}
	defer l1.Close()

	var (
		queue *vmnats.Queue
		l2    cache.Cache
	)
	if cfg.NATS.URL != "" {
		queue, err = vmnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() {
			if err := queue.Drain(); err != nil {
				slog.Warn("nats drain failed", "error", err)
			}
		}()

		kv, err := natskv.Open(ctx, queue.JetStream(), cfg.Cache.L2Bucket, cfg.Cache.L2TTL)
		if err != nil {
			return fmt.Errorf("nats kv: %w", err)
		}
		l2 = kv
	} else {
		slog.Info("nats disabled, plan events and the shared idempotency cache are off")
	}
	replayCache := tiered.New(l1, l2, cfg.Cache.IdempotencyTTL)

	// --- Services ---

	c, err := newCore(cfg)
	if err != nil {
		return err
	}

	go c.vault.ReloadOnSignal(ctx, syscall.SIGHUP)

	hub := ws.NewHub(cfg.Server.CORSOrigin)
	defer hub.Close()
	c.planner.SetBroadcaster(hub)
	var failures *service.FailureWatch
	if queue != nil {
		c.planner.SetPublisher(queue)

		failures = service.NewFailureWatch(c.metrics)
		stopWatch, err := failures.Start(ctx, queue)
		if err != nil {
			return err
		}
		defer stopWatch()
	}

	limiter := middleware.NewRateLimiterFromConfig(cfg.Rate)
	go limiter.RunCleanup(ctx, cfg.Rate.CleanupInterval, cfg.Rate.MaxIdleTime)

	// --- HTTP ---

	handlers := &vmhttp.Handlers{
		Planner:        c.planner,
		LLM:            c.llm,
		Breaker:        c.breaker,
		RequestTimeout: cfg.Server.RequestTimeout,
		Redact:         c.vault.RedactString,
	}
	if queue != nil {
		handlers.Queue = queue
		handlers.Failures = failures
	}

	mounts := vmhttp.Mounts{
		PlanMiddleware: []func(http.Handler) http.Handler{
			limiter.Handler,
			middleware.Idempotency(replayCache, cfg.Cache.IdempotencyTTL),
		},
		Events: hub.HandleWS,
	}
	if cfg.MCP.Enabled {
		mcpServer := vmmcp.NewServer(vmmcp.ServerConfig{
			Name:    cfg.Telemetry.ServiceName,
			Version: version,
			Path:    cfg.MCP.Path,
		}, vmmcp.ServerDeps{Planner: c.planner, Redact: c.vault.RedactString})
		mounts.MCP = limiter.Handler(mcpServer.Handler())
		mounts.MCPPath = cfg.MCP.Path
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(otel.HTTPMiddleware(cfg.Telemetry.ServiceName))
	r.Use(vmhttp.SecurityHeaders)
	r.Use(vmhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(vmhttp.Logger)

	vmhttp.MountRoutes(r, handlers, mounts)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Plans run up to RequestTimeout; leave room to write the reply.
		WriteTimeout: cfg.Server.RequestTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr, "mcp", cfg.MCP.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
