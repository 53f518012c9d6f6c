// Package config provides hierarchical configuration loading for VoyageMind.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the VoyageMind service.
type Config struct {
	Server    Server    `yaml:"server"`
	LLM       LLM       `yaml:"llm"`
	Prompts   Prompts   `yaml:"prompts"`
	Logging   Logging   `yaml:"logging"`
	Breaker   Breaker   `yaml:"breaker"`
	Rate      Rate      `yaml:"rate"`
	NATS      NATS      `yaml:"nats"`
	Cache     Cache     `yaml:"cache"`
	Telemetry Telemetry `yaml:"telemetry"`
	MCP       MCP       `yaml:"mcp"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port            string        `yaml:"port"`
	CORSOrigin      string        `yaml:"cors_origin"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`  // Upper bound for one plan request
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // Grace period on SIGTERM
}

// LLM holds the chat completion endpoint configuration. BaseURL may point at
// OpenAI directly or at a LiteLLM proxy.
type LLM struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"` // Per model call

	// MaxConcurrency caps in-flight model calls across all plans; 0 means unlimited.
	MaxConcurrency int `yaml:"max_concurrency"`
}

// Prompts holds prompt resource configuration.
type Prompts struct {
	Dir string `yaml:"dir"` // Optional on-disk override of the embedded templates
}

// Logging holds structured logging configuration.
type Logging struct {
	Level        string `yaml:"level"`
	Service      string `yaml:"service"`
	Async        bool   `yaml:"async"`
	AsyncBuffer  int    `yaml:"async_buffer"`
	AsyncWorkers int    `yaml:"async_workers"`
}

// Breaker holds circuit breaker configuration for the model endpoint.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Rate holds per-client rate limiting for the plan endpoints. A zero
// RequestsPerSecond disables limiting.
type Rate struct {
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval"`
	MaxIdleTime       time.Duration `yaml:"max_idle_time"`
}

// NATS holds NATS JetStream configuration. An empty URL disables plan
// events and the L2 cache.
type NATS struct {
	URL string `yaml:"url"`
}

// Cache holds the idempotency replay cache configuration.
type Cache struct {
	L1MaxSizeMB    int64         `yaml:"l1_max_size_mb"`
	L2Bucket       string        `yaml:"l2_bucket"`
	L2TTL          time.Duration `yaml:"l2_ttl"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl"`
}

// Telemetry holds OpenTelemetry export configuration.
type Telemetry struct {
	Exporter          string  `yaml:"exporter"` // "none" | "otlp-grpc" | "otlp-http"
	Endpoint          string  `yaml:"endpoint"`
	Insecure          bool    `yaml:"insecure"`
	ServiceName       string  `yaml:"service_name"`
	SampleRate        float64 `yaml:"sample_rate"`
	LangfuseHost      string  `yaml:"langfuse_host"`
	LangfusePublicKey string  `yaml:"langfuse_public_key"`
	LangfuseSecretKey string  `yaml:"langfuse_secret_key"`
}

// LangfuseEnabled reports whether both Langfuse keys are configured.
func (t Telemetry) LangfuseEnabled() bool {
	return t.LangfusePublicKey != "" && t.LangfuseSecretKey != ""
}

// MCP holds the Model Context Protocol tool surface configuration.
type MCP struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:            "8000",
			CORSOrigin:      "*",
			RequestTimeout:  2 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
		},
		LLM: LLM{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			Timeout:     60 * time.Second,

			// Four calls per plan, so eight admits two plans at full fan-out.
			MaxConcurrency: 8,
		},
		Logging: Logging{
			Level:        "info",
			Service:      "voyagemind",
			AsyncBuffer:  10000,
			AsyncWorkers: 2,
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Rate: Rate{
			RequestsPerSecond: 0.5,
			Burst:             5,
			CleanupInterval:   5 * time.Minute,
			MaxIdleTime:       10 * time.Minute,
		},
		Cache: Cache{
			L1MaxSizeMB:    32,
			L2Bucket:       "VOYAGEMIND_IDEMPOTENCY",
			L2TTL:          time.Hour,
			IdempotencyTTL: 10 * time.Minute,
		},
		Telemetry: Telemetry{
			Exporter:     "none",
			ServiceName:  "voyagemind",
			SampleRate:   1.0,
			LangfuseHost: "https://cloud.langfuse.com",
		},
		MCP: MCP{
			Enabled: true,
			Path:    "/mcp",
		},
	}
}
