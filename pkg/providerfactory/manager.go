package providerfactory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/nicolangr/activeagent/pkg/config"
	"github.com/nicolangr/activeagent/pkg/providers"
)

// ErrNotEmbeddingProvider is returned by Manager.Embed for providers
// without embedding support.
var ErrNotEmbeddingProvider = errors.New("provider does not support embeddings")

// Manager manages a collection of named provider instances: creation,
// health monitoring, dispatch and shutdown.
//
// Manager is thread-safe and can be used concurrently.
type Manager struct {
	providers map[string]providers.Provider
	opts      []Option
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewManager creates a new provider manager. opts apply to every provider
// it builds.
func NewManager(opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		providers: make(map[string]providers.Provider),
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// AddProvider builds the provider for one configuration entry and
// registers it under name. A positive HealthCheckInterval starts the
// provider's health checker.
func (m *Manager) AddProvider(name string, pc config.ProviderConfig) error {
	provider, err := NewFromConfig(name, pc, m.opts...)
	if err != nil {
		return fmt.Errorf("failed to add provider %q: %w", name, err)
	}

	if pc.HealthCheckInterval > 0 {
		startHealthChecker(m.ctx, provider)
	}

	m.Register(name, provider)
	return nil
}

// Register adds an already built provider. A provider previously
// registered under name is closed and replaced.
func (m *Manager) Register(name string, provider providers.Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.providers[name]; ok {
		slog.Warn("replacing existing provider", "name", name)
		if err := existing.Close(); err != nil {
			slog.Error("error closing provider", "name", name, "error", err)
		}
	}

	m.providers[name] = provider

	slog.Info("provider added to manager",
		"name", name,
		"type", provider.GetType(),
		"total_providers", len(m.providers),
	)
}

// RemoveProvider removes a provider from the manager and closes it.
func (m *Manager) RemoveProvider(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	provider, ok := m.providers[name]
	if !ok {
		return fmt.Errorf("provider %q not found", name)
	}

	if err := provider.Close(); err != nil {
		slog.Error("error closing provider", "name", name, "error", err)
	}
	delete(m.providers, name)

	slog.Info("provider removed from manager",
		"name", name,
		"remaining_providers", len(m.providers),
	)
	return nil
}

// GetProvider returns a provider by name.
func (m *Manager) GetProvider(name string) (providers.Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	provider, ok := m.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not found", name)
	}
	return provider, nil
}

// GetProviders returns a copy of the registry.
func (m *Manager) GetProviders() map[string]providers.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]providers.Provider, len(m.providers))
	for name, provider := range m.providers {
		out[name] = provider
	}
	return out
}

// GetProviderNames returns all provider names in sorted order.
func (m *Manager) GetProviderNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetHealthyProviders returns the providers currently marked healthy.
func (m *Manager) GetHealthyProviders() map[string]providers.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()

	healthy := make(map[string]providers.Provider)
	for name, provider := range m.providers {
		if provider.IsHealthy() {
			healthy[name] = provider
		}
	}
	return healthy
}

// ProviderCount returns the total number of providers.
func (m *Manager) ProviderCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.providers)
}

// HealthyProviderCount returns the number of healthy providers.
func (m *Manager) HealthyProviderCount() int {
	return len(m.GetHealthyProviders())
}

// LoadFromConfig adds every provider in cfg, in name order. Failures are
// collected and returned together; providers that built successfully stay
// registered.
func (m *Manager) LoadFromConfig(cfg *config.Config) error {
	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := m.AddProvider(name, cfg.Providers[name]); err != nil {
			errs = append(errs, err)
			slog.Error("failed to load provider", "name", name, "error", err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to load %d provider(s): %w", len(errs), errors.Join(errs...))
	}

	slog.Info("all providers loaded successfully", "count", len(names))
	return nil
}

// Embed dispatches an embedding request to the named provider.
func (m *Manager) Embed(ctx context.Context, name string, prompt *providers.Prompt, req providers.EmbeddingRequest) (*providers.Response, error) {
	provider, err := m.GetProvider(name)
	if err != nil {
		return nil, err
	}

	embedder, ok := provider.(providers.EmbeddingProvider)
	if !ok {
		return nil, fmt.Errorf("%w: %q (type %s)", ErrNotEmbeddingProvider, name, provider.GetType())
	}
	return embedder.Embed(ctx, prompt, req)
}

// SendCompletion dispatches a completion request to the named provider.
func (m *Manager) SendCompletion(ctx context.Context, name string, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	provider, err := m.GetProvider(name)
	if err != nil {
		return nil, err
	}
	return provider.SendCompletion(ctx, req)
}

// CheckHealth runs a health check against every provider concurrently and
// returns the failures keyed by provider name.
func (m *Manager) CheckHealth(ctx context.Context) map[string]error {
	snapshot := m.GetProviders()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures = make(map[string]error)
	)
	for name, provider := range snapshot {
		wg.Add(1)
		go func(name string, provider providers.Provider) {
			defer wg.Done()
			if err := provider.HealthCheck(ctx); err != nil {
				mu.Lock()
				failures[name] = err
				mu.Unlock()
			}
		}(name, provider)
	}
	wg.Wait()

	return failures
}

// Close closes all providers and stops their health checkers.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancel()

	var errs []error
	for name, provider := range m.providers {
		if err := provider.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close provider %q: %w", name, err))
		}
	}
	m.providers = make(map[string]providers.Provider)

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("provider manager closed")
	return nil
}

// GetHealthSummary returns a summary of provider health status.
func (m *Manager) GetHealthSummary() HealthSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := HealthSummary{
		Total:   len(m.providers),
		Details: make(map[string]providers.ProviderHealth),
	}

	for name, provider := range m.providers {
		health := provider.GetHealth()
		summary.Details[name] = health
		if health.IsHealthy {
			summary.Healthy++
		}
	}
	summary.Unhealthy = summary.Total - summary.Healthy

	return summary
}

// HealthSummary provides an overview of provider health across the manager.
type HealthSummary struct {
	Total     int
	Healthy   int
	Unhealthy int

	// Details contains per-provider health information
	Details map[string]providers.ProviderHealth
}
