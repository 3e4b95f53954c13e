package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := &Config{
		Providers: map[string]ProviderConfig{
			"ollama": {Type: ProviderTypeOllama},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

func fieldsOf(err error) []string {
	validationErr, ok := err.(ValidationError)
	if !ok {
		return nil
	}
	fields := make([]string, 0, len(validationErr.Errors))
	for _, e := range validationErr.Errors {
		fields = append(fields, e.Field)
	}
	return fields
}

func containsField(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := &Config{}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	validationErr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(validationErr.Errors) < 2 {
		t.Errorf("expected multiple errors, got %d", len(validationErr.Errors))
	}
	if !strings.Contains(validationErr.Error(), "validation failed with") {
		t.Errorf("error message should mention multiple errors: %s", validationErr.Error())
	}
}

func TestValidate_Providers(t *testing.T) {
	tests := []struct {
		name      string
		provider  ProviderConfig
		wantField string
	}{
		{
			name:     "ollama without settings",
			provider: ProviderConfig{Type: ProviderTypeOllama},
		},
		{
			name:      "ollama with bad host",
			provider:  ProviderConfig{Type: ProviderTypeOllama, Settings: map[string]string{"host": "ftp://box"}},
			wantField: "providers.p.settings.host",
		},
		{
			name:      "openai without base url",
			provider:  ProviderConfig{Type: ProviderTypeOpenAI},
			wantField: "providers.p.base_url",
		},
		{
			name:      "generic with hostless url",
			provider:  ProviderConfig{Type: ProviderTypeGeneric, BaseURL: "http://"},
			wantField: "providers.p.base_url",
		},
		{
			name:      "unknown type",
			provider:  ProviderConfig{Type: "anthropic"},
			wantField: "providers.p.type",
		},
		{
			name:      "negative timeout",
			provider:  ProviderConfig{Type: ProviderTypeOllama, Timeout: -time.Second},
			wantField: "providers.p.timeout",
		},
		{
			name:      "negative retries",
			provider:  ProviderConfig{Type: ProviderTypeOllama, MaxRetries: -1},
			wantField: "providers.p.max_retries",
		},
		{
			name:      "negative health interval",
			provider:  ProviderConfig{Type: ProviderTypeOllama, HealthCheckInterval: -time.Second},
			wantField: "providers.p.health_check_interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Providers = map[string]ProviderConfig{"p": tt.provider}

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !containsField(fieldsOf(err), tt.wantField) {
				t.Errorf("expected error on %s, got %v", tt.wantField, err)
			}
		})
	}
}

func TestValidate_Telemetry(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"bad level", func(c *Config) { c.Telemetry.Logging.Level = "trace" }, "telemetry.logging.level"},
		{"bad format", func(c *Config) { c.Telemetry.Logging.Format = "console" }, "telemetry.logging.format"},
		{"bad metrics path", func(c *Config) {
			c.Telemetry.Metrics.Enabled = true
			c.Telemetry.Metrics.Path = "metrics"
		}, "telemetry.metrics.path"},
		{"unsorted buckets", func(c *Config) {
			c.Telemetry.Metrics.RequestDurationBuckets = []float64{1, 0.5}
		}, "telemetry.metrics.request_duration_buckets"},
		{"bad sampler", func(c *Config) { c.Telemetry.Tracing.Sampler = "sometimes" }, "telemetry.tracing.sampler"},
		{"ratio out of range", func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 }, "telemetry.tracing.sample_ratio"},
		{"bad exporter", func(c *Config) { c.Telemetry.Tracing.Exporter = "zipkin" }, "telemetry.tracing.exporter"},
		{"tracing without endpoint", func(c *Config) { c.Telemetry.Tracing.Enabled = true }, "telemetry.tracing.endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if !containsField(fieldsOf(Validate(cfg)), tt.wantField) {
				t.Errorf("expected error on %s", tt.wantField)
			}
		})
	}
}

func TestValidate_Secrets(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"file without path", func(c *Config) {
			c.Secrets.Providers = []SecretProviderConfig{{Type: "file"}}
		}, "secrets.providers[0].path"},
		{"unknown provider", func(c *Config) {
			c.Secrets.Providers = []SecretProviderConfig{{Type: "env"}, {Type: "vault"}}
		}, "secrets.providers[1].type"},
		{"short ttl", func(c *Config) {
			c.Secrets.Cache.Enabled = true
			c.Secrets.Cache.TTL = time.Millisecond
		}, "secrets.cache.ttl"},
		{"bad max size", func(c *Config) {
			c.Secrets.Cache.Enabled = true
			c.Secrets.Cache.MaxSize = -1
		}, "secrets.cache.max_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if !containsField(fieldsOf(Validate(cfg)), tt.wantField) {
				t.Errorf("expected error on %s", tt.wantField)
			}
		})
	}
}

func TestFieldError_Error(t *testing.T) {
	err := FieldError{Field: "providers.ollama.type", Message: "bad"}
	if err.Error() != "providers.ollama.type: bad" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}
