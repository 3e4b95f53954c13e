package ollama

import (
	"errors"
	"log/slog"

	"github.com/nicolangr/activeagent/pkg/providers"
	"github.com/nicolangr/activeagent/pkg/providers/openai"
)

// Provider talks to an Ollama server through its OpenAI-compatible API.
// Completion, streaming and health checks are the openai adapter's; only
// the embedding wire format differs and is supplied as a Codec.
type Provider struct {
	*openai.Provider

	settings Settings
	codec    Codec
}

var _ providers.EmbeddingProvider = (*Provider)(nil)

type options struct {
	resolver   CredentialResolver
	openaiOpts []openai.Option
}

// Option configures a Provider.
type Option func(*options)

// WithCredentialResolver sets the lookup used for the access token when
// the configuration holds none. Without it no external source is consulted.
func WithCredentialResolver(resolver CredentialResolver) Option {
	return func(o *options) {
		o.resolver = resolver
	}
}

// WithObserver registers an observer notified after every request.
func WithObserver(observer providers.RequestObserver) Option {
	return func(o *options) {
		o.openaiOpts = append(o.openaiOpts, openai.WithObserver(observer))
	}
}

// WithOpenAIOptions forwards options to the underlying openai adapter.
// openai.WithEmbeddingCodec and openai.WithProviderType are ignored: the
// Ollama embedding format and the "ollama" type always apply.
func WithOpenAIOptions(opts ...openai.Option) Option {
	return func(o *options) {
		o.openaiOpts = append(o.openaiOpts, opts...)
	}
}

// NewProvider resolves cfg and builds the provider. It performs no network
// I/O; errors are only returned for malformed timeout, max_retries or
// health_check_interval values.
func NewProvider(cfg Config, opts ...Option) (*Provider, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	settings, err := resolveSettings(cfg, o.resolver)
	if err != nil {
		return nil, err
	}

	codec := Codec{EmbeddingModel: settings.EmbeddingModel}

	openaiOpts := append([]openai.Option{
		openai.WithDefaultModel(settings.Model),
		openai.WithDefaultEmbeddingModel(DefaultEmbeddingModel),
	}, o.openaiOpts...)
	// The wire format and type are fixed; forwarded options cannot replace them.
	openaiOpts = append(openaiOpts,
		openai.WithEmbeddingCodec(codec),
		openai.WithProviderType("ollama"),
	)

	base, err := openai.NewProvider(providers.ProviderConfig{
		Name:       settings.Name,
		Type:       "ollama",
		BaseURL:    settings.BaseURL(),
		APIKey:     settings.accessToken,
		Timeout:    settings.Timeout,
		MaxRetries: settings.MaxRetries,

		HealthCheckInterval: settings.HealthCheckInterval,
	}, openaiOpts...)
	if err != nil {
		return nil, err
	}

	slog.Info("Ollama provider initialized",
		"provider", settings.Name,
		"base_url", settings.BaseURL(),
		"model", settings.Model,
		"embedding_model", firstNonEmpty(settings.EmbeddingModel, DefaultEmbeddingModel),
		"authenticated", settings.HasAccessToken(),
	)

	return &Provider{
		Provider: base,
		settings: settings,
		codec:    codec,
	}, nil
}

// Settings returns the values resolved at construction.
func (p *Provider) Settings() Settings {
	return p.settings
}

// BuildEmbeddingParameters returns the request body for embedding input,
// or the prompt's message content when input is empty. The configured
// embedding model wins over defaultModel.
func (p *Provider) BuildEmbeddingParameters(prompt *providers.Prompt, input, defaultModel string) EmbeddingParameters {
	return p.codec.Parameters(prompt, input, defaultModel)
}

// ParseEmbeddingResponse wraps the vector in raw["embedding"] into a
// Response bundling prompt, message, raw response and raw request.
func (p *Provider) ParseEmbeddingResponse(prompt *providers.Prompt, raw map[string]any, request any) (*providers.Response, error) {
	resp, err := p.codec.ParseEmbeddingResponse(prompt, raw, request)
	if err != nil {
		var parseErr *providers.ParseError
		if errors.As(err, &parseErr) && parseErr.Provider == "" {
			parseErr.Provider = p.GetName()
		}
		return nil, err
	}
	return resp, nil
}
