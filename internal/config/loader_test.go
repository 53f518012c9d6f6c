package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != "8000" {
		t.Errorf("expected port 8000, got %s", cfg.Server.Port)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini, got %s", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", cfg.LLM.Temperature)
	}
	if cfg.Breaker.Timeout != 30*time.Second {
		t.Errorf("expected breaker timeout 30s, got %v", cfg.Breaker.Timeout)
	}
	if cfg.NATS.URL != "" {
		t.Errorf("expected NATS disabled by default, got %s", cfg.NATS.URL)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "test.yaml")

	content := `
server:
  port: "9090"
  cors_origin: "http://example.com"
llm:
  model: "gpt-4o"
  temperature: 0.2
logging:
  level: "debug"
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.CORSOrigin != "http://example.com" {
		t.Errorf("expected cors http://example.com, got %s", cfg.Server.CORSOrigin)
	}
	if cfg.LLM.Model != "gpt-4o" || cfg.LLM.Temperature != 0.2 {
		t.Errorf("expected llm overrides, got %+v", cfg.LLM)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	// Unchanged fields keep defaults
	if cfg.LLM.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("expected default base URL, got %s", cfg.LLM.BaseURL)
	}
}

func TestLoadYAMLMissing(t *testing.T) {
	cfg := Defaults()
	err := loadYAML(&cfg, "/nonexistent/path.yaml")
	if err != nil {
		t.Errorf("missing YAML should not error, got %v", err)
	}
}

func TestEnvOverride(t *testing.T) {
	cfg := Defaults()

	t.Setenv("VOYAGEMIND_PORT", "7070")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4.1-mini")
	t.Setenv("OPENAI_BASE_URL", "http://litellm:4000")
	t.Setenv("VOYAGEMIND_LOG_LEVEL", "warn")
	t.Setenv("VOYAGEMIND_BREAKER_TIMEOUT", "1m")
	t.Setenv("VOYAGEMIND_RATE_RPS", "2.5")
	t.Setenv("LANGFUSE_PUBLIC_KEY", "pk-lf")
	t.Setenv("LANGFUSE_SECRET_KEY", "sk-lf")

	loadEnv(&cfg)

	if cfg.Server.Port != "7070" {
		t.Errorf("expected port 7070, got %s", cfg.Server.Port)
	}
	if cfg.LLM.APIKey != "sk-test" || cfg.LLM.Model != "gpt-4.1-mini" || cfg.LLM.BaseURL != "http://litellm:4000" {
		t.Errorf("unexpected llm config %+v", cfg.LLM)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Logging.Level)
	}
	if cfg.Breaker.Timeout != time.Minute {
		t.Errorf("expected breaker timeout 1m, got %v", cfg.Breaker.Timeout)
	}
	if cfg.Rate.RequestsPerSecond != 2.5 {
		t.Errorf("expected rate 2.5, got %v", cfg.Rate.RequestsPerSecond)
	}
	if !cfg.Telemetry.LangfuseEnabled() {
		t.Error("expected langfuse to be enabled with both keys set")
	}
}

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{
			name:   "empty port",
			modify: func(c *Config) { c.Server.Port = "" },
			errMsg: "server.port is required",
		},
		{
			name:   "missing api key",
			modify: func(c *Config) { c.LLM.APIKey = "" },
			errMsg: "llm.api_key is required (set OPENAI_API_KEY)",
		},
		{
			name:   "empty model",
			modify: func(c *Config) { c.LLM.Model = "" },
			errMsg: "llm.model is required",
		},
		{
			name:   "temperature too high",
			modify: func(c *Config) { c.LLM.Temperature = 2.5 },
			errMsg: "llm.temperature must be within [0, 2]",
		},
		{
			name:   "negative concurrency",
			modify: func(c *Config) { c.LLM.MaxConcurrency = -1 },
			errMsg: "llm.max_concurrency must be >= 0",
		},
		{
			name:   "zero breaker failures",
			modify: func(c *Config) { c.Breaker.MaxFailures = 0 },
			errMsg: "breaker.max_failures must be >= 1",
		},
		{
			name:   "zero rate burst",
			modify: func(c *Config) { c.Rate.Burst = 0 },
			errMsg: "rate.burst must be >= 1",
		},
		{
			name:   "unknown exporter",
			modify: func(c *Config) { c.Telemetry.Exporter = "zipkin" },
			errMsg: `telemetry.exporter "zipkin" is not one of none, otlp-grpc, otlp-http`,
		},
		{
			name:   "zero cache size",
			modify: func(c *Config) { c.Cache.L1MaxSizeMB = 0 },
			errMsg: "cache.l1_max_size_mb must be >= 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.LLM.APIKey = "sk-test"
			tt.modify(&cfg)
			err := validate(&cfg)
			if err == nil {
				t.Fatalf("expected error %q, got nil", tt.errMsg)
			}
			if err.Error() != tt.errMsg {
				t.Errorf("expected %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestValidateDefaultsWithKey(t *testing.T) {
	cfg := Defaults()
	cfg.LLM.APIKey = "sk-test"
	if err := validate(&cfg); err != nil {
		t.Errorf("defaults should validate once a key is set, got %v", err)
	}
}

func TestEnvInvalidValuesIgnored(t *testing.T) {
	cfg := Defaults()

	t.Setenv("VOYAGEMIND_LLM_TEMPERATURE", "warm")
	t.Setenv("VOYAGEMIND_LLM_TIMEOUT", "soon")
	t.Setenv("VOYAGEMIND_LOG_ASYNC", "maybe")

	loadEnv(&cfg)

	if cfg.LLM.Temperature != 0.7 {
		t.Errorf("expected default temperature, got %v", cfg.LLM.Temperature)
	}
	if cfg.LLM.Timeout != 60*time.Second {
		t.Errorf("expected default timeout, got %v", cfg.LLM.Timeout)
	}
	if cfg.Logging.Async {
		t.Error("expected async to stay false")
	}
}

func TestEnvSecretFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openai")
	if err := os.WriteFile(path, []byte("sk-mounted\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY_FILE", path)

	cfg := Defaults()
	loadEnv(&cfg)

	if cfg.LLM.APIKey != "sk-mounted" {
		t.Errorf("expected key from file, got %q", cfg.LLM.APIKey)
	}
	if err := validate(&cfg); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}
