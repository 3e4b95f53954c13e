package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{Providers: map[string]ProviderConfig{}}
	ApplyDefaults(cfg)

	if cfg.Telemetry.Logging.Level != DefaultLogLevel {
		t.Errorf("expected level %q, got %q", DefaultLogLevel, cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Logging.Format != DefaultLogFormat {
		t.Errorf("expected format %q, got %q", DefaultLogFormat, cfg.Telemetry.Logging.Format)
	}
	if cfg.Telemetry.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("expected namespace %q, got %q", DefaultMetricsNamespace, cfg.Telemetry.Metrics.Namespace)
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) != len(DefaultRequestDurationBuckets) {
		t.Errorf("expected default buckets, got %v", cfg.Telemetry.Metrics.RequestDurationBuckets)
	}
	if cfg.Telemetry.Tracing.Enabled {
		t.Error("expected tracing to be disabled by default")
	}
	if cfg.Telemetry.Tracing.Sampler != DefaultTracingSampler || cfg.Telemetry.Tracing.OTLP.Timeout != DefaultOTLPTimeout {
		t.Errorf("unexpected tracing defaults: %+v", cfg.Telemetry.Tracing)
	}
	if len(cfg.Secrets.Providers) != 1 || cfg.Secrets.Providers[0].Type != "env" {
		t.Errorf("expected single env secret provider, got %+v", cfg.Secrets.Providers)
	}
	if cfg.Secrets.Cache.TTL != DefaultSecretsCacheTTL {
		t.Errorf("expected cache TTL %v, got %v", DefaultSecretsCacheTTL, cfg.Secrets.Cache.TTL)
	}
}

func TestApplyDefaults_PreservesValues(t *testing.T) {
	cfg := &Config{
		Providers: map[string]ProviderConfig{
			"openai": {Type: ProviderTypeOpenAI, Timeout: 10 * time.Second, MaxRetries: 7},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{Level: "error", Format: "text"},
		},
	}
	ApplyDefaults(cfg)

	p := cfg.Providers["openai"]
	if p.Timeout != 10*time.Second || p.MaxRetries != 7 {
		t.Errorf("provider values overwritten: %+v", p)
	}
	if cfg.Telemetry.Logging.Level != "error" || cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("logging values overwritten: %+v", cfg.Telemetry.Logging)
	}
}

func TestApplyDefaults_ProviderTypeInference(t *testing.T) {
	tests := []struct {
		name     string
		wantType string
		retries  int
	}{
		{"ollama", ProviderTypeOllama, 0},
		{"openai", ProviderTypeOpenAI, DefaultProviderMaxRetries},
		{"lmstudio", ProviderTypeGeneric, DefaultProviderMaxRetries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Providers: map[string]ProviderConfig{tt.name: {}}}
			ApplyDefaults(cfg)

			p := cfg.Providers[tt.name]
			if p.Type != tt.wantType {
				t.Errorf("expected type %q, got %q", tt.wantType, p.Type)
			}
			if p.MaxRetries != tt.retries {
				t.Errorf("expected max retries %d, got %d", tt.retries, p.MaxRetries)
			}
			if p.Timeout != DefaultProviderTimeout {
				t.Errorf("expected timeout %v, got %v", DefaultProviderTimeout, p.Timeout)
			}
		})
	}
}

func TestLoggingConfig_RedactEnabled(t *testing.T) {
	off := false
	if (LoggingConfig{}).RedactEnabled() != true {
		t.Error("expected redaction on when unset")
	}
	if (LoggingConfig{RedactPII: &off}).RedactEnabled() {
		t.Error("expected redaction off when disabled explicitly")
	}
}
