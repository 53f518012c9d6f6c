package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Integration tests that exercise the full LoadFrom pipeline:
// defaults < YAML < environment variables.

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFrom_FullHierarchy(t *testing.T) {
	yamlPath := writeYAML(t, `
server:
  port: "9090"
llm:
  api_key: "from-yaml"
logging:
  level: "debug"
`)

	t.Setenv("VOYAGEMIND_PORT", "7070")
	t.Setenv("VOYAGEMIND_LOG_LEVEL", "warn")
	t.Setenv("OPENAI_API_KEY", "from-env")

	cfg, err := LoadFrom(yamlPath)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("env should override YAML: got port %q, want 7070", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("env should override YAML: got level %q, want warn", cfg.Logging.Level)
	}
	if cfg.LLM.APIKey != "from-env" {
		t.Errorf("env should override YAML: got key %q", cfg.LLM.APIKey)
	}
}

func TestLoadFrom_YAMLPartialOverride(t *testing.T) {
	yamlPath := writeYAML(t, `
llm:
  api_key: "sk-yaml"
cache:
  idempotency_ttl: 30s
`)
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := LoadFrom(yamlPath)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Cache.IdempotencyTTL != 30*time.Second {
		t.Errorf("got idempotency ttl %v, want 30s", cfg.Cache.IdempotencyTTL)
	}
	if cfg.Cache.L2Bucket != "VOYAGEMIND_IDEMPOTENCY" {
		t.Errorf("default bucket should survive, got %q", cfg.Cache.L2Bucket)
	}
	if cfg.MCP.Path != "/mcp" {
		t.Errorf("default mcp path should survive, got %q", cfg.MCP.Path)
	}
}

func TestLoadFrom_MissingYAMLFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing YAML should fall back to defaults, got %v", err)
	}
	if cfg.LLM.Model == "" {
		t.Error("expected a default model")
	}
}

func TestLoadFrom_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "llm.api_key is required") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestLoadFrom_MalformedYAML(t *testing.T) {
	yamlPath := writeYAML(t, "server: [unclosed")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	_, err := LoadFrom(yamlPath)
	if err == nil || !strings.Contains(err.Error(), "config yaml") {
		t.Fatalf("expected yaml error, got %v", err)
	}
}

func TestLoadFrom_ValidationAfterOverride(t *testing.T) {
	yamlPath := writeYAML(t, "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("VOYAGEMIND_LLM_TEMPERATURE", "3.5")

	_, err := LoadFrom(yamlPath)
	if err == nil || !strings.Contains(err.Error(), "llm.temperature") {
		t.Fatalf("expected temperature validation error, got %v", err)
	}
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	yamlPath := writeYAML(t, `
llm:
  api_key: "sk-yaml"
  model: "gpt-4o"
`)
	t.Setenv("VOYAGEMIND_CONFIG", yamlPath)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_MODEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("expected model from VOYAGEMIND_CONFIG file, got %q", cfg.LLM.Model)
	}
}
