package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nicolangr/activeagent/pkg/config"
)

// EmbeddingDimensionBuckets cover common embedding sizes, from small
// sentence models (384) to large ones (4096).
var EmbeddingDimensionBuckets = []float64{128, 256, 384, 512, 768, 1024, 1536, 2048, 3072, 4096}

// ProviderMetrics tracks provider health and performance.
//
// Metrics:
//   - <ns>_<sub>_provider_health: health status (1=healthy, 0=unhealthy)
//   - <ns>_<sub>_provider_latency_seconds: call latency by operation
//   - <ns>_<sub>_provider_errors_total: error count by type
//   - <ns>_<sub>_provider_requests_total: calls by operation and status
//   - <ns>_<sub>_embedding_dimensions: vector length of returned embeddings
type ProviderMetrics struct {
	health     *prometheus.GaugeVec
	latency    *prometheus.HistogramVec
	errors     *prometheus.CounterVec
	requests   *prometheus.CounterVec
	dimensions *prometheus.HistogramVec
}

// NewProviderMetrics creates and registers provider metrics with the provided registry.
func NewProviderMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_health",
				Help:      "Provider health status (1=healthy, 0=unhealthy)",
			},
			[]string{"provider"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_latency_seconds",
				Help:      "Provider API call latency in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"provider", "model", "operation"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_errors_total",
				Help:      "Total number of provider errors by type",
			},
			[]string{"provider", "operation", "error_type"},
		),

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_requests_total",
				Help:      "Total number of requests to each provider",
			},
			[]string{"provider", "model", "operation", "status"},
		),

		dimensions: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "embedding_dimensions",
				Help:      "Length of embedding vectors returned by providers",
				Buckets:   EmbeddingDimensionBuckets,
			},
			[]string{"provider", "model"},
		),
	}

	registry.MustRegister(
		pm.health,
		pm.latency,
		pm.errors,
		pm.requests,
		pm.dimensions,
	)

	return pm
}

// UpdateHealth sets the health gauge of provider.
func (pm *ProviderMetrics) UpdateHealth(provider string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	pm.health.WithLabelValues(provider).Set(value)
}

// RecordLatency records the latency of a provider API call.
func (pm *ProviderMetrics) RecordLatency(provider, model, operation string, latencySeconds float64) {
	pm.latency.WithLabelValues(provider, model, operation).Observe(latencySeconds)
}

// RecordError records an error from a provider. errorType is one of the
// values returned by providers.ErrorType: "auth", "rate_limit", "timeout",
// "parse", "validation", "stream", "server_error", "client_error" or "network".
func (pm *ProviderMetrics) RecordError(provider, operation, errorType string) {
	pm.errors.WithLabelValues(provider, operation, errorType).Inc()
}

// RecordRequest records a call to a provider; status is "success" or "error".
func (pm *ProviderMetrics) RecordRequest(provider, model, operation, status string) {
	pm.requests.WithLabelValues(provider, model, operation, status).Inc()
}

// RecordDimensions records the length of a returned embedding.
func (pm *ProviderMetrics) RecordDimensions(provider, model string, dims int) {
	pm.dimensions.WithLabelValues(provider, model).Observe(float64(dims))
}
