package providerfactory

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nicolangr/activeagent/pkg/config"
	"github.com/nicolangr/activeagent/pkg/providers"
	"github.com/nicolangr/activeagent/pkg/providers/ollama"
	"github.com/nicolangr/activeagent/pkg/providers/openai"
)

type options struct {
	resolver   ollama.CredentialResolver
	observer   providers.RequestObserver
	middleware []func(http.RoundTripper) http.RoundTripper
}

// Option configures provider construction.
type Option func(*options)

// WithCredentialResolver sets the credential lookup handed to adapters
// that resolve their own tokens (ollama).
func WithCredentialResolver(resolver func(names ...string) (string, bool)) Option {
	return func(o *options) {
		o.resolver = resolver
	}
}

// WithObserver registers an observer on every provider built.
func WithObserver(observer providers.RequestObserver) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithTransportMiddleware wraps the HTTP transport of every provider built,
// e.g. with a tracing RoundTripper.
func WithTransportMiddleware(wrap func(http.RoundTripper) http.RoundTripper) Option {
	return func(o *options) {
		o.middleware = append(o.middleware, wrap)
	}
}

func (o *options) httpOptions() []providers.HTTPOption {
	opts := make([]providers.HTTPOption, 0, len(o.middleware))
	for _, wrap := range o.middleware {
		opts = append(opts, providers.WithTransportMiddleware(wrap))
	}
	return opts
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewProvider creates an OpenAI-compatible provider from a resolved
// ProviderConfig.
//
// Supported provider types:
//   - "openai": OpenAI API
//   - "generic": any OpenAI-compatible server (LM Studio, vLLM, LocalAI)
//
// Ollama is configured through string settings instead; see NewOllamaProvider.
// An empty Type is inferred from the name.
//
// Example:
//
//	provider, err := NewProvider(providers.ProviderConfig{
//	    Name:    "openai",
//	    BaseURL: "https://api.openai.com/v1",
//	    APIKey:  "sk-...",
//	})
func NewProvider(cfg providers.ProviderConfig, opts ...Option) (providers.Provider, error) {
	provider, err := newOpenAICompatible(cfg, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	return provider, nil
}

func newOpenAICompatible(cfg providers.ProviderConfig, o *options, extra ...openai.Option) (*openai.Provider, error) {
	if cfg.Type == "" {
		cfg.Type = inferProviderType(cfg.Name)
	}

	slog.Debug("creating provider",
		"name", cfg.Name,
		"type", cfg.Type,
		"base_url", cfg.BaseURL,
	)

	var openaiOpts []openai.Option
	switch cfg.Type {
	case config.ProviderTypeOpenAI:
	case config.ProviderTypeGeneric:
		openaiOpts = append(openaiOpts, openai.WithProviderType(config.ProviderTypeGeneric))
	default:
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "type",
			Message:  fmt.Sprintf("unsupported provider type: %q (supported: ollama, openai, generic)", cfg.Type),
		}
	}
	if o.observer != nil {
		openaiOpts = append(openaiOpts, openai.WithObserver(o.observer))
	}
	if len(o.middleware) > 0 {
		openaiOpts = append(openaiOpts, openai.WithHTTPOptions(o.httpOptions()...))
	}
	openaiOpts = append(openaiOpts, extra...)

	provider, err := openai.NewProvider(cfg, openaiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider %q: %w", cfg.Name, err)
	}

	slog.Info("provider created successfully",
		"name", cfg.Name,
		"type", cfg.Type,
	)
	return provider, nil
}

// NewOllamaProvider creates an Ollama provider named name from string
// settings (model, host, api_version, api_key, access_token,
// embedding_model, timeout, max_retries, health_check_interval). A name in
// settings takes precedence over name.
func NewOllamaProvider(name string, settings ollama.Config, opts ...Option) (*ollama.Provider, error) {
	o := buildOptions(opts)

	cfg := make(ollama.Config, len(settings)+1)
	for k, v := range settings {
		cfg[k] = v
	}
	if cfg[ollama.KeyName] == "" && name != "" {
		cfg[ollama.KeyName] = name
	}

	var ollamaOpts []ollama.Option
	if o.resolver != nil {
		ollamaOpts = append(ollamaOpts, ollama.WithCredentialResolver(o.resolver))
	}
	if o.observer != nil {
		ollamaOpts = append(ollamaOpts, ollama.WithObserver(o.observer))
	}
	if len(o.middleware) > 0 {
		ollamaOpts = append(ollamaOpts, ollama.WithOpenAIOptions(openai.WithHTTPOptions(o.httpOptions()...)))
	}

	provider, err := ollama.NewProvider(cfg, ollamaOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider %q: %w", name, err)
	}
	return provider, nil
}

// NewFromConfig creates the provider described by one entry of the
// configuration file.
func NewFromConfig(name string, pc config.ProviderConfig, opts ...Option) (providers.Provider, error) {
	providerType := pc.Type
	if providerType == "" {
		providerType = inferProviderType(name)
	}

	if providerType == config.ProviderTypeOllama {
		provider, err := NewOllamaProvider(name, ollamaSettings(pc), opts...)
		if err != nil {
			return nil, err
		}
		return provider, nil
	}

	var extra []openai.Option
	if model := pc.Settings["model"]; model != "" {
		extra = append(extra, openai.WithDefaultModel(model))
	}
	if model := pc.Settings["embedding_model"]; model != "" {
		extra = append(extra, openai.WithDefaultEmbeddingModel(model))
	}

	provider, err := newOpenAICompatible(providers.ProviderConfig{
		Name:                name,
		Type:                providerType,
		BaseURL:             pc.BaseURL,
		APIKey:              pc.APIKey,
		Timeout:             pc.Timeout,
		MaxRetries:          pc.MaxRetries,
		HealthCheckInterval: pc.HealthCheckInterval,
	}, buildOptions(opts), extra...)
	if err != nil {
		return nil, err
	}
	return provider, nil
}

// ollamaSettings merges the typed fields of pc into its string settings.
// Explicit settings win.
func ollamaSettings(pc config.ProviderConfig) ollama.Config {
	settings := make(ollama.Config, len(pc.Settings)+4)
	for k, v := range pc.Settings {
		settings[k] = v
	}

	setDefault := func(key, value string) {
		if settings[key] == "" && value != "" {
			settings[key] = value
		}
	}
	setDefault(ollama.KeyAPIKey, pc.APIKey)
	if pc.Timeout > 0 {
		setDefault(ollama.KeyTimeout, pc.Timeout.String())
	}
	if pc.MaxRetries > 0 {
		setDefault(ollama.KeyMaxRetries, strconv.Itoa(pc.MaxRetries))
	}
	if pc.HealthCheckInterval > 0 {
		setDefault(ollama.KeyHealthCheckInterval, pc.HealthCheckInterval.String())
	}
	return settings
}

// NewProviderWithHealthCheck creates a provider and starts its health
// checker, which runs until ctx is cancelled or the provider is closed.
func NewProviderWithHealthCheck(ctx context.Context, name string, pc config.ProviderConfig, opts ...Option) (providers.Provider, error) {
	provider, err := NewFromConfig(name, pc, opts...)
	if err != nil {
		return nil, err
	}
	startHealthChecker(ctx, provider)
	return provider, nil
}

type healthCheckStarter interface {
	StartHealthChecker(context.Context)
}

func startHealthChecker(ctx context.Context, provider providers.Provider) {
	if hcs, ok := provider.(healthCheckStarter); ok {
		hcs.StartHealthChecker(ctx)
		slog.Debug("health checker started", "provider", provider.GetName())
		return
	}
	slog.Debug("provider does not support health checking", "name", provider.GetName())
}

func inferProviderType(name string) string {
	switch name {
	case config.ProviderTypeOpenAI, config.ProviderTypeOllama:
		return name
	default:
		return config.ProviderTypeGeneric
	}
}
