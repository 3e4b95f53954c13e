package health

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nicolangr/activeagent/pkg/providers"
)

// Overall and per-provider status values.
const (
	StatusOK        = "ok"
	StatusReady     = "ready"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// ErrCheckTimeout is reported when a live check exceeds the check timeout.
var ErrCheckTimeout = errors.New("health check timeout")

// ProviderSource lists the providers whose health is reported.
// providerfactory.Manager implements it.
type ProviderSource interface {
	GetProviders() map[string]providers.Provider
}

// CheckResult is the health of one provider.
type CheckResult struct {
	// Status is "ok" or "unhealthy"
	Status string `json:"status"`

	// Type is the provider type (ollama, openai, generic)
	Type string `json:"type"`

	// Message carries the last error for unhealthy providers
	Message string `json:"message,omitempty"`

	ConsecutiveFailures int       `json:"consecutive_failures,omitempty"`
	LastCheck           time.Time `json:"last_check,omitzero"`

	// Duration is the check latency; zero for cached results
	Duration time.Duration `json:"duration_ns,omitempty"`
}

// HealthStatus is the aggregated provider health.
type HealthStatus struct {
	// Status is "ok" (liveness), or "ready", "degraded", "unhealthy"
	Status string `json:"status"`

	// Providers contains per-provider results (readiness only)
	Providers map[string]CheckResult `json:"providers,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// Checker reports provider health for liveness and readiness checks.
//
// By default readiness uses the health each provider tracks from its own
// traffic and background checks. With live probing enabled every readiness
// request calls HealthCheck on each provider concurrently.
type Checker struct {
	source       ProviderSource
	checkTimeout time.Duration
	live         bool

	mu  sync.Mutex
	now func() time.Time
}

// Option configures a Checker.
type Option func(*Checker)

// WithLiveChecks makes readiness call HealthCheck on every provider.
func WithLiveChecks() Option {
	return func(c *Checker) {
		c.live = true
	}
}

// New creates a checker over source. A zero timeout defaults to 5 seconds
// per check.
func New(source ProviderSource, checkTimeout time.Duration, opts ...Option) *Checker {
	if checkTimeout == 0 {
		checkTimeout = 5 * time.Second
	}

	c := &Checker{
		source:       source,
		checkTimeout: checkTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckLiveness reports that the process is running.
func (c *Checker) CheckLiveness(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusOK,
		Timestamp: c.timestamp(),
	}
}

// CheckReadiness aggregates provider health: "ready" when every provider is
// healthy, "unhealthy" when none is, "degraded" otherwise. No providers
// means unhealthy.
func (c *Checker) CheckReadiness(ctx context.Context) HealthStatus {
	snapshot := c.source.GetProviders()

	results := make(map[string]CheckResult, len(snapshot))
	var (
		resultMu sync.Mutex
		wg       sync.WaitGroup
	)
	for name, provider := range snapshot {
		if !c.live {
			results[name] = cachedResult(provider)
			continue
		}

		wg.Add(1)
		go func(name string, provider providers.Provider) {
			defer wg.Done()
			result := c.checkProvider(ctx, provider)

			resultMu.Lock()
			results[name] = result
			resultMu.Unlock()
		}(name, provider)
	}
	wg.Wait()

	healthy := 0
	for _, result := range results {
		if result.Status == StatusOK {
			healthy++
		}
	}

	status := StatusDegraded
	switch {
	case len(results) > 0 && healthy == len(results):
		status = StatusReady
	case healthy == 0:
		status = StatusUnhealthy
	}

	return HealthStatus{
		Status:    status,
		Providers: results,
		Timestamp: c.timestamp(),
	}
}

func cachedResult(provider providers.Provider) CheckResult {
	h := provider.GetHealth()
	result := CheckResult{
		Status:              StatusOK,
		Type:                provider.GetType(),
		ConsecutiveFailures: h.ConsecutiveFailures,
		LastCheck:           h.LastCheck,
	}
	if !h.IsHealthy {
		result.Status = StatusUnhealthy
	}
	if h.LastError != nil {
		result.Message = h.LastError.Error()
	}
	return result
}

// checkProvider runs one HealthCheck bounded by the check timeout.
func (c *Checker) checkProvider(ctx context.Context, provider providers.Provider) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()

	errChan := make(chan error, 1)
	go func() {
		errChan <- provider.HealthCheck(checkCtx)
	}()

	var err error
	select {
	case err = <-errChan:
	case <-checkCtx.Done():
		err = ErrCheckTimeout
	}

	result := CheckResult{
		Status:    StatusOK,
		Type:      provider.GetType(),
		LastCheck: c.timestamp(),
		Duration:  time.Since(start),
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Message = err.Error()
	}
	return result
}

func (c *Checker) timestamp() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}
