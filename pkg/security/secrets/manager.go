package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/nicolangr/activeagent/pkg/config"
)

// secretRefRegex matches ${secret:name} patterns in configuration.
var secretRefRegex = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// Manager tries each provider in order until one returns a value. Values
// are cached according to the cache configuration.
type Manager struct {
	providers []SecretProvider
	cache     *Cache
}

// NewManager creates a new secret manager with the given providers and cache config.
func NewManager(providers []SecretProvider, cacheConfig CacheConfig) *Manager {
	m := &Manager{
		providers: providers,
		cache:     NewCache(cacheConfig),
	}
	for _, p := range providers {
		if fp, ok := p.(*FileProvider); ok {
			fp.OnChange(m.cache.Clear)
		}
	}
	return m
}

// NewManagerFromConfig builds the providers listed in cfg, in order.
func NewManagerFromConfig(cfg config.SecretsConfig) (*Manager, error) {
	providers := make([]SecretProvider, 0, len(cfg.Providers))
	for i, pc := range cfg.Providers {
		switch pc.Type {
		case "env":
			providers = append(providers, NewEnvProvider(pc.Prefix))
		case "file":
			fp, err := NewFileProvider(pc.Path, pc.Watch)
			if err != nil {
				closeAll(providers)
				return nil, fmt.Errorf("secrets.providers[%d]: %w", i, err)
			}
			providers = append(providers, fp)
		default:
			closeAll(providers)
			return nil, fmt.Errorf("secrets.providers[%d]: unknown type %q", i, pc.Type)
		}
	}

	return NewManager(providers, CacheConfig{
		Enabled: cfg.Cache.Enabled,
		TTL:     cfg.Cache.TTL,
		MaxSize: cfg.Cache.MaxSize,
	}), nil
}

// GetSecret retrieves a secret from the first provider that supports it.
func (m *Manager) GetSecret(ctx context.Context, name string) (string, error) {
	if value, ok := m.cache.Get(name); ok {
		slog.Debug("secret cache hit", "name", redactSecretName(name))
		return value, nil
	}

	var lastErr error
	for _, provider := range m.providers {
		if !provider.Supports(name) {
			continue
		}

		value, err := provider.GetSecret(ctx, name)
		if err != nil {
			lastErr = err
			slog.Debug("provider failed to get secret",
				"provider", provider.Provider(),
				"name", redactSecretName(name),
				"error", err,
			)
			continue
		}

		m.cache.Set(name, value)
		slog.Debug("secret retrieved",
			"provider", provider.Provider(),
			"name", redactSecretName(name),
		)
		return value, nil
	}

	if lastErr != nil {
		return "", fmt.Errorf("failed to get secret %q: %w", name, lastErr)
	}
	return "", fmt.Errorf("%w: %q (no provider supports this secret)", ErrSecretNotFound, name)
}

// Lookup returns the first of names that resolves to a non-empty value.
// Failures other than not-found are logged and treated as absent.
func (m *Manager) Lookup(ctx context.Context, names ...string) (string, bool) {
	for _, name := range names {
		value, err := m.GetSecret(ctx, name)
		if err == nil && value != "" {
			return value, true
		}
		if err != nil && !errors.Is(err, ErrSecretNotFound) {
			slog.Warn("credential lookup failed",
				"name", redactSecretName(name),
				"error", err,
			)
		}
	}
	return "", false
}

// Resolver returns a credential-resolution function bound to ctx, suitable
// for ollama.WithCredentialResolver.
func (m *Manager) Resolver(ctx context.Context) func(names ...string) (string, bool) {
	return func(names ...string) (string, bool) {
		return m.Lookup(ctx, names...)
	}
}

// EnvResolver resolves names straight from the process environment,
// returning the first non-empty value.
func EnvResolver(names ...string) (string, bool) {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v, true
		}
	}
	return "", false
}

// ResolveReferences replaces ${secret:name} patterns with secret values.
// References that cannot be resolved are left in place and reported.
func (m *Manager) ResolveReferences(ctx context.Context, input string) (string, error) {
	var failures []string

	output := secretRefRegex.ReplaceAllStringFunc(input, func(match string) string {
		name := secretRefRegex.FindStringSubmatch(match)[1]
		value, err := m.GetSecret(ctx, name)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%q: %v", name, err))
			return match
		}
		return value
	})

	if len(failures) > 0 {
		return output, fmt.Errorf("failed to resolve secret references: %s", strings.Join(failures, "; "))
	}
	return output, nil
}

// ResolveConfig resolves secret references in every provider's api_key and
// settings values in place.
func (m *Manager) ResolveConfig(ctx context.Context, cfg *config.Config) error {
	var failures []string
	for name, p := range cfg.Providers {
		resolved, err := m.ResolveReferences(ctx, p.APIKey)
		if err != nil {
			failures = append(failures, fmt.Sprintf("providers.%s.api_key: %v", name, err))
		}
		p.APIKey = resolved

		for key, value := range p.Settings {
			resolved, err := m.ResolveReferences(ctx, value)
			if err != nil {
				failures = append(failures, fmt.Sprintf("providers.%s.settings.%s: %v", name, key, err))
			}
			p.Settings[key] = resolved
		}
		cfg.Providers[name] = p
	}

	if len(failures) > 0 {
		return errors.New(strings.Join(failures, "; "))
	}
	return nil
}

// Refresh reloads all refreshable providers and clears the cache.
func (m *Manager) Refresh(ctx context.Context) error {
	var failures []string
	for _, provider := range m.providers {
		refreshable, ok := provider.(RefreshableProvider)
		if !ok {
			continue
		}
		if err := refreshable.Refresh(ctx); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", provider.Provider(), err))
			slog.Error("failed to refresh provider",
				"provider", provider.Provider(),
				"error", err,
			)
		}
	}

	m.cache.Clear()

	if len(failures) > 0 {
		return fmt.Errorf("failed to refresh some providers: %s", strings.Join(failures, "; "))
	}
	return nil
}

// ListSecrets returns the de-duplicated secret names of all providers.
func (m *Manager) ListSecrets(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var secrets []string

	for _, provider := range m.providers {
		names, err := provider.ListSecrets(ctx)
		if err != nil {
			slog.Warn("failed to list secrets from provider",
				"provider", provider.Provider(),
				"error", err,
			)
			continue
		}
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				secrets = append(secrets, name)
			}
		}
	}
	return secrets, nil
}

// Close releases providers holding resources such as file watchers.
func (m *Manager) Close() error {
	return closeAll(m.providers)
}

func closeAll(providers []SecretProvider) error {
	var errs []error
	for _, p := range providers {
		if c, ok := p.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// redactSecretName keeps the first and last two characters of name.
func redactSecretName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
