package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Strob0t/VoyageMind/internal/secrets"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "voyagemind.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	path := DefaultConfigFile
	if p := os.Getenv("VOYAGEMIND_CONFIG"); p != "" {
		path = p
	}
	return LoadFrom(path)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: operator-supplied config path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "VOYAGEMIND_PORT")
	setString(&cfg.Server.CORSOrigin, "VOYAGEMIND_CORS_ORIGIN")
	setDuration(&cfg.Server.RequestTimeout, "VOYAGEMIND_REQUEST_TIMEOUT")
	setDuration(&cfg.Server.ShutdownTimeout, "VOYAGEMIND_SHUTDOWN_TIMEOUT")

	// LLM
	setSecret(&cfg.LLM.APIKey, "OPENAI_API_KEY")
	setString(&cfg.LLM.Model, "OPENAI_MODEL")
	setString(&cfg.LLM.BaseURL, "OPENAI_BASE_URL")
	setFloat64(&cfg.LLM.Temperature, "VOYAGEMIND_LLM_TEMPERATURE")
	setDuration(&cfg.LLM.Timeout, "VOYAGEMIND_LLM_TIMEOUT")
	setInt(&cfg.LLM.MaxConcurrency, "VOYAGEMIND_LLM_MAX_CONCURRENCY")

	setString(&cfg.Prompts.Dir, "VOYAGEMIND_PROMPTS_DIR")

	setString(&cfg.Logging.Level, "VOYAGEMIND_LOG_LEVEL")
	setString(&cfg.Logging.Service, "VOYAGEMIND_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "VOYAGEMIND_LOG_ASYNC")

	setInt(&cfg.Breaker.MaxFailures, "VOYAGEMIND_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "VOYAGEMIND_BREAKER_TIMEOUT")

	setFloat64(&cfg.Rate.RequestsPerSecond, "VOYAGEMIND_RATE_RPS")
	setInt(&cfg.Rate.Burst, "VOYAGEMIND_RATE_BURST")
	setDuration(&cfg.Rate.CleanupInterval, "VOYAGEMIND_RATE_CLEANUP_INTERVAL")
	setDuration(&cfg.Rate.MaxIdleTime, "VOYAGEMIND_RATE_MAX_IDLE_TIME")

	setString(&cfg.NATS.URL, "NATS_URL")

	// Cache
	setInt64(&cfg.Cache.L1MaxSizeMB, "VOYAGEMIND_CACHE_L1_SIZE_MB")
	setString(&cfg.Cache.L2Bucket, "VOYAGEMIND_CACHE_L2_BUCKET")
	setDuration(&cfg.Cache.L2TTL, "VOYAGEMIND_CACHE_L2_TTL")
	setDuration(&cfg.Cache.IdempotencyTTL, "VOYAGEMIND_CACHE_IDEMPOTENCY_TTL")

	// Telemetry
	setString(&cfg.Telemetry.Exporter, "VOYAGEMIND_OTEL_EXPORTER")
	setString(&cfg.Telemetry.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setBool(&cfg.Telemetry.Insecure, "OTEL_EXPORTER_OTLP_INSECURE")
	setString(&cfg.Telemetry.ServiceName, "OTEL_SERVICE_NAME")
	setFloat64(&cfg.Telemetry.SampleRate, "VOYAGEMIND_OTEL_SAMPLE_RATE")
	setString(&cfg.Telemetry.LangfuseHost, "LANGFUSE_HOST")
	setSecret(&cfg.Telemetry.LangfusePublicKey, "LANGFUSE_PUBLIC_KEY")
	setSecret(&cfg.Telemetry.LangfuseSecretKey, "LANGFUSE_SECRET_KEY")

	setBool(&cfg.MCP.Enabled, "VOYAGEMIND_MCP_ENABLED")
	setString(&cfg.MCP.Path, "VOYAGEMIND_MCP_PATH")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.LLM.APIKey == "" {
		return errors.New("llm.api_key is required (set OPENAI_API_KEY)")
	}
	if cfg.LLM.BaseURL == "" {
		return errors.New("llm.base_url is required")
	}
	if cfg.LLM.Model == "" {
		return errors.New("llm.model is required")
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be within [0, 2]")
	}
	if cfg.LLM.MaxConcurrency < 0 {
		return errors.New("llm.max_concurrency must be >= 0")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Rate.RequestsPerSecond > 0 && cfg.Rate.Burst < 1 {
		return errors.New("rate.burst must be >= 1")
	}
	switch cfg.Telemetry.Exporter {
	case "", "none", "otlp-grpc", "otlp-http":
	default:
		return fmt.Errorf("telemetry.exporter %q is not one of none, otlp-grpc, otlp-http", cfg.Telemetry.Exporter)
	}
	if cfg.Cache.L1MaxSizeMB < 1 {
		return errors.New("cache.l1_max_size_mb must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setSecret also honours key_FILE for mounted secrets.
func setSecret(dst *string, key string) {
	if v, ok := secrets.Lookup(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
