package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
providers:
  ollama:
    type: ollama
    timeout: 30s
    settings:
      model: gemma3:latest
      host: http://ollama.internal:11434
      embedding_model: mxbai-embed-large
  openai:
    base_url: https://api.openai.com/v1
    api_key: ${secret:openai-key}
    max_retries: 5

telemetry:
  logging:
    level: debug
    format: text
  metrics:
    enabled: true

secrets:
  providers:
    - type: env
    - type: file
      path: /var/secrets
      watch: true
  cache:
    enabled: true
    ttl: 1m
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	ollama := cfg.Providers["ollama"]
	if ollama.Type != ProviderTypeOllama {
		t.Errorf("expected type %q, got %q", ProviderTypeOllama, ollama.Type)
	}
	if ollama.Timeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %v", ollama.Timeout)
	}
	if ollama.MaxRetries != 0 {
		t.Errorf("expected ollama max retries left unset, got %d", ollama.MaxRetries)
	}
	if got := ollama.Settings["embedding_model"]; got != "mxbai-embed-large" {
		t.Errorf("expected embedding_model setting, got %q", got)
	}

	openai := cfg.Providers["openai"]
	if openai.Type != ProviderTypeOpenAI {
		t.Errorf("expected inferred type %q, got %q", ProviderTypeOpenAI, openai.Type)
	}
	if openai.MaxRetries != 5 {
		t.Errorf("expected max retries 5, got %d", openai.MaxRetries)
	}
	if openai.Timeout != DefaultProviderTimeout {
		t.Errorf("expected default timeout, got %v", openai.Timeout)
	}

	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("unexpected logging config: %+v", cfg.Telemetry.Logging)
	}
	if !cfg.Telemetry.Logging.RedactEnabled() {
		t.Error("expected redaction enabled by default")
	}
	if cfg.Telemetry.Metrics.Path != DefaultMetricsPath {
		t.Errorf("expected default metrics path, got %q", cfg.Telemetry.Metrics.Path)
	}

	if len(cfg.Secrets.Providers) != 2 {
		t.Fatalf("expected 2 secret providers, got %d", len(cfg.Secrets.Providers))
	}
	if cfg.Secrets.Cache.TTL != time.Minute {
		t.Errorf("expected cache TTL 1m, got %v", cfg.Secrets.Cache.TTL)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "providers: [unclosed")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("expected parse error message, got %v", err)
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
providers:
  custom:
    type: generic
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError in chain, got %T", err)
	}
	if validationErr.Errors[0].Field != "providers.custom.base_url" {
		t.Errorf("unexpected field: %s", validationErr.Errors[0].Field)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
providers:
  ollama: {}
  local-llm:
    base_url: http://localhost:1234/v1
`)

	env := map[string]string{
		"ACTIVEAGENT_TELEMETRY_LOGGING_LEVEL":          "warn",
		"ACTIVEAGENT_TELEMETRY_METRICS_ENABLED":        "true",
		"ACTIVEAGENT_TELEMETRY_TRACING_ENABLED":        "true",
		"ACTIVEAGENT_TELEMETRY_TRACING_ENDPOINT":       "otel:4317",
		"ACTIVEAGENT_PROVIDERS_OLLAMA_HOST":            "http://gpu-box:11434",
		"ACTIVEAGENT_PROVIDERS_OLLAMA_EMBEDDING_MODEL": "all-minilm",
		"ACTIVEAGENT_PROVIDERS_LOCAL_LLM_TIMEOUT":      "5s",
		"ACTIVEAGENT_PROVIDERS_LOCAL_LLM_MAX_RETRIES":  "not-a-number",
		"ACTIVEAGENT_PROVIDERS_LOCAL_LLM_API_KEY":      "sk-local",
		"ACTIVEAGENT_PROVIDERS_UNCONFIGURED_BASE_URL":  "http://ignored",
	}
	getenv := func(key string) string { return env[key] }

	cfg, err := LoadConfigWithEnvOverrides(path, getenv)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("expected level override, got %q", cfg.Telemetry.Logging.Level)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics enabled by override")
	}
	if !cfg.Telemetry.Tracing.Enabled || cfg.Telemetry.Tracing.Endpoint != "otel:4317" {
		t.Errorf("expected tracing override, got %+v", cfg.Telemetry.Tracing)
	}

	ollama := cfg.Providers["ollama"]
	if ollama.Settings["host"] != "http://gpu-box:11434" {
		t.Errorf("expected host override, got %q", ollama.Settings["host"])
	}
	if ollama.Settings["embedding_model"] != "all-minilm" {
		t.Errorf("expected embedding model override, got %q", ollama.Settings["embedding_model"])
	}

	local := cfg.Providers["local-llm"]
	if local.Timeout != 5*time.Second {
		t.Errorf("expected timeout override, got %v", local.Timeout)
	}
	if local.MaxRetries != DefaultProviderMaxRetries {
		t.Errorf("invalid override should be ignored, got %d", local.MaxRetries)
	}
	if local.APIKey != "sk-local" {
		t.Errorf("expected API key override, got %q", local.APIKey)
	}

	if _, ok := cfg.Providers["unconfigured"]; ok {
		t.Error("overrides must not create providers")
	}
}

func TestLoadConfigWithEnvOverrides_InvalidAfterOverride(t *testing.T) {
	path := writeConfig(t, "providers:\n  ollama: {}\n")
	getenv := func(key string) string {
		if key == "ACTIVEAGENT_TELEMETRY_LOGGING_FORMAT" {
			return "xml"
		}
		return ""
	}

	_, err := LoadConfigWithEnvOverrides(path, getenv)
	if err == nil {
		t.Fatal("expected validation error after override")
	}
	if !strings.Contains(err.Error(), "after environment overrides") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if len(cfg.Providers) != 1 {
		t.Fatalf("expected one provider, got %d", len(cfg.Providers))
	}
	ollama, ok := cfg.Providers["ollama"]
	if !ok || ollama.Type != ProviderTypeOllama {
		t.Errorf("expected an ollama provider, got %+v", cfg.Providers)
	}
	if ollama.Timeout != DefaultProviderTimeout {
		t.Errorf("Timeout = %v", ollama.Timeout)
	}
	if cfg.Telemetry.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q", cfg.Telemetry.Logging.Level)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadDefaultWithEnvOverrides(t *testing.T) {
	env := map[string]string{
		"ACTIVEAGENT_PROVIDERS_OLLAMA_HOST":   "http://gpu-box:11434",
		"ACTIVEAGENT_TELEMETRY_LOGGING_LEVEL": "debug",
	}
	cfg, err := LoadDefaultWithEnvOverrides(func(key string) string { return env[key] })
	if err != nil {
		t.Fatalf("LoadDefaultWithEnvOverrides() failed: %v", err)
	}
	if got := cfg.Providers["ollama"].Settings["host"]; got != "http://gpu-box:11434" {
		t.Errorf("host = %q", got)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Telemetry.Logging.Level)
	}

	env["ACTIVEAGENT_PROVIDERS_OLLAMA_HOST"] = "not a url"
	if _, err := LoadDefaultWithEnvOverrides(func(key string) string { return env[key] }); err == nil {
		t.Error("expected validation error for bad host override")
	}
}
