package config

import "time"

// Default values for configuration fields.
const (
	// Provider defaults
	DefaultProviderTimeout    = 60 * time.Second
	DefaultProviderMaxRetries = 3
	DefaultOllamaMaxRetries   = 1

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "activeagent"
	DefaultMetricsSubsystem = "providers"

	DefaultTracingSampler     = "always"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingExporter    = "otlp"
	DefaultTracingService     = "activeagent"
	DefaultOTLPTimeout        = 10 * time.Second

	// Secrets defaults
	DefaultSecretsCacheTTL     = 5 * time.Minute
	DefaultSecretsCacheMaxSize = 100
)

// Provider types understood by the provider factory.
const (
	ProviderTypeOllama  = "ollama"
	ProviderTypeOpenAI  = "openai"
	ProviderTypeGeneric = "generic"
)

// DefaultRequestDurationBuckets are the latency histogram buckets in seconds.
var DefaultRequestDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

// ApplyDefaults fills every unset field of cfg with its default value.
// Values already present are left alone.
func ApplyDefaults(cfg *Config) {
	for name, p := range cfg.Providers {
		if p.Type == "" {
			p.Type = inferProviderType(name)
		}
		if p.Timeout == 0 {
			p.Timeout = DefaultProviderTimeout
		}
		// ollama resolves its own max_retries from settings
		if p.MaxRetries == 0 && p.Type != ProviderTypeOllama {
			p.MaxRetries = DefaultProviderMaxRetries
		}
		cfg.Providers[name] = p
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}

	applyTracingDefaults(&cfg.Telemetry.Tracing)

	if len(cfg.Secrets.Providers) == 0 {
		cfg.Secrets.Providers = []SecretProviderConfig{{Type: "env"}}
	}
	if cfg.Secrets.Cache.TTL == 0 {
		cfg.Secrets.Cache.TTL = DefaultSecretsCacheTTL
	}
	if cfg.Secrets.Cache.MaxSize == 0 {
		cfg.Secrets.Cache.MaxSize = DefaultSecretsCacheMaxSize
	}
}

func applyTracingDefaults(t *TracingConfig) {
	if t.Sampler == "" {
		t.Sampler = DefaultTracingSampler
	}
	if t.SampleRatio == 0 {
		t.SampleRatio = DefaultTracingSampleRatio
	}
	if t.Exporter == "" {
		t.Exporter = DefaultTracingExporter
	}
	if t.ServiceName == "" {
		t.ServiceName = DefaultTracingService
	}
	if t.OTLP.Timeout == 0 {
		t.OTLP.Timeout = DefaultOTLPTimeout
	}
}

// inferProviderType maps well-known provider names to their type.
func inferProviderType(name string) string {
	switch name {
	case ProviderTypeOllama, ProviderTypeOpenAI:
		return name
	default:
		return ProviderTypeGeneric
	}
}
