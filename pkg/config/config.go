package config

import "time"

// Config is the root configuration structure for activeagent.
// It holds the provider definitions plus the telemetry and secrets sections
// shared by every provider.
type Config struct {
	// Providers contains configuration for all provider integrations.
	// Keys are provider names (e.g., "ollama", "openai").
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Secrets configures where credentials are looked up.
	Secrets SecretsConfig `yaml:"secrets"`
}

// ProviderConfig contains configuration for a single provider.
type ProviderConfig struct {
	// Type selects the adapter.
	// Options: "ollama", "openai", "generic"
	// Default: the provider name when it is a known type, otherwise "generic"
	Type string `yaml:"type"`

	// BaseURL is the base URL for the provider's API endpoint.
	// Required for "openai" and "generic"; ollama derives it from
	// settings.host and settings.api_version.
	// Example: "https://api.openai.com/v1"
	BaseURL string `yaml:"base_url"`

	// APIKey is the authentication key for the provider. It may be a
	// secret reference such as "${secret:openai-key}".
	APIKey string `yaml:"api_key"`

	// Timeout is the maximum duration for requests to this provider.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the maximum number of retry attempts for failed requests.
	// Default: 3 (1 for ollama)
	MaxRetries int `yaml:"max_retries"`

	// HealthCheckInterval enables periodic health checks when positive.
	// Default: 0 (disabled)
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`

	// Settings are free-form adapter settings. The ollama adapter reads
	// model, host, api_version, api_key, access_token and embedding_model.
	Settings map[string]string `yaml:"settings"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	AddSource bool `yaml:"add_source"`

	// RedactPII scrubs API keys and bearer tokens from log attributes.
	// Default: true
	RedactPII *bool `yaml:"redact_pii"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "activeagent"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "providers"
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets defines histogram buckets for request duration (seconds).
	// Default: [0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are recorded and exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Exporter determines the trace exporter.
	// Options: "otlp"
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the OTLP gRPC collector address.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service.name resource attribute.
	// Default: "activeagent"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the collector connection.
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// SecretsConfig contains secret management configuration.
type SecretsConfig struct {
	// Providers is a list of secret providers to use.
	// Providers are tried in order until one successfully returns a value.
	// Default: a single "env" provider
	Providers []SecretProviderConfig `yaml:"providers"`

	// Cache contains secret caching configuration.
	Cache SecretsCacheConfig `yaml:"cache"`
}

// SecretProviderConfig contains configuration for a secret provider.
type SecretProviderConfig struct {
	// Type is the provider type.
	// Options: "env", "file"
	Type string `yaml:"type"`

	// Prefix is the environment variable prefix (for "env" provider).
	Prefix string `yaml:"prefix,omitempty"`

	// Path is the directory holding one file per secret (for "file" provider).
	// Example: "/var/secrets"
	Path string `yaml:"path,omitempty"`

	// Watch reloads secrets when files change (for "file" provider).
	Watch bool `yaml:"watch,omitempty"`
}

// SecretsCacheConfig contains configuration for secret caching.
type SecretsCacheConfig struct {
	// Enabled controls whether secret caching is enabled.
	Enabled bool `yaml:"enabled"`

	// TTL is the time-to-live for cached secrets.
	// Default: 5m
	TTL time.Duration `yaml:"ttl"`

	// MaxSize is the maximum number of secrets to cache.
	// Default: 100
	MaxSize int `yaml:"max_size"`
}

// RedactEnabled reports whether log redaction is on. It defaults to true
// when the field is unset.
func (c LoggingConfig) RedactEnabled() bool {
	return c.RedactPII == nil || *c.RedactPII
}
