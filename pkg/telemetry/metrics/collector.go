package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nicolangr/activeagent/pkg/config"
	"github.com/nicolangr/activeagent/pkg/providers"
)

// DefaultMaxCardinality bounds the distinct provider/model pairs tracked
// before further models are folded into "other".
const DefaultMaxCardinality = 1000

// Collector owns the registry and records provider calls. It implements
// providers.RequestObserver and providers.EmbeddingObserver, so it can be
// passed straight to a provider's WithObserver option.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	providerMetrics    *ProviderMetrics
	cardinalityLimiter *CardinalityLimiter
}

var (
	_ providers.RequestObserver   = (*Collector)(nil)
	_ providers.EmbeddingObserver = (*Collector)(nil)
)

// NewCollector creates a collector. A nil registry gets a fresh one.
// Unset namespace, subsystem and buckets take the configuration defaults.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	resolved := *cfg
	if resolved.Namespace == "" {
		resolved.Namespace = config.DefaultMetricsNamespace
	}
	if resolved.Subsystem == "" {
		resolved.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(resolved.RequestDurationBuckets) == 0 {
		resolved.RequestDurationBuckets = config.DefaultRequestDurationBuckets
	}

	return &Collector{
		config:             &resolved,
		registry:           registry,
		providerMetrics:    NewProviderMetrics(&resolved, registry),
		cardinalityLimiter: NewCardinalityLimiter(DefaultMaxCardinality),
	}
}

// ObserveRequest implements providers.RequestObserver. Health checks also
// update the health gauge.
func (c *Collector) ObserveRequest(provider, model, operation string, duration time.Duration, err error) {
	if !c.config.Enabled {
		return
	}

	model = c.limitModel(provider, model)

	status := "success"
	if err != nil {
		status = "error"
		c.providerMetrics.RecordError(provider, operation, providers.ErrorType(err))
	}

	c.providerMetrics.RecordRequest(provider, model, operation, status)
	c.providerMetrics.RecordLatency(provider, model, operation, duration.Seconds())

	if operation == providers.OperationHealth {
		c.providerMetrics.UpdateHealth(provider, err == nil)
	}
}

// ObserveEmbedding implements providers.EmbeddingObserver.
func (c *Collector) ObserveEmbedding(provider, model string, dims int) {
	if !c.config.Enabled {
		return
	}
	c.providerMetrics.RecordDimensions(provider, c.limitModel(provider, model), dims)
}

// UpdateProviderHealth sets the health gauge of provider.
func (c *Collector) UpdateProviderHealth(provider string, healthy bool) {
	if !c.config.Enabled {
		return
	}
	c.providerMetrics.UpdateHealth(provider, healthy)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) limitModel(provider, model string) string {
	if model == "" {
		return "none"
	}
	if !c.cardinalityLimiter.Allow(provider + ":" + model) {
		return "other"
	}
	return model
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether labelSet is already tracked or still fits under
// the limit, tracking it in the latter case.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
