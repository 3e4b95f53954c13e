package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nicolangr/activeagent/pkg/providers"
)

const (
	defaultTimeout             = 60 * time.Second
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 90 * time.Second

	chatCompletionsPath = "chat/completions"
)

// Provider is the OpenAI-compatible provider adapter.
//
// Backends that speak the OpenAI wire format but differ in their embedding
// payloads are served by the same Provider constructed with a different
// EmbeddingCodec.
type Provider struct {
	*providers.HTTPProvider

	codec          providers.EmbeddingCodec
	providerType   string
	defaultModel   string
	embeddingModel string
	observer       providers.RequestObserver
	httpOpts       []providers.HTTPOption
}

var _ providers.EmbeddingProvider = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider)

// WithEmbeddingCodec replaces the OpenAI embedding wire format.
func WithEmbeddingCodec(codec providers.EmbeddingCodec) Option {
	return func(p *Provider) {
		if codec != nil {
			p.codec = codec
		}
	}
}

// WithProviderType overrides the type reported by GetType.
func WithProviderType(providerType string) Option {
	return func(p *Provider) {
		if providerType != "" {
			p.providerType = providerType
		}
	}
}

// WithObserver registers an observer notified after every request.
func WithObserver(observer providers.RequestObserver) Option {
	return func(p *Provider) {
		p.observer = observer
	}
}

// WithHTTPOptions configures the underlying HTTPProvider.
func WithHTTPOptions(opts ...providers.HTTPOption) Option {
	return func(p *Provider) {
		p.httpOpts = append(p.httpOpts, opts...)
	}
}

// WithDefaultModel sets the completion model used when a request names none.
func WithDefaultModel(model string) Option {
	return func(p *Provider) {
		p.defaultModel = model
	}
}

// WithDefaultEmbeddingModel sets the embedding model used when a request names none.
func WithDefaultEmbeddingModel(model string) Option {
	return func(p *Provider) {
		if model != "" {
			p.embeddingModel = model
		}
	}
}

// NewProvider creates a new OpenAI-compatible provider. It performs no network I/O.
func NewProvider(config providers.ProviderConfig, opts ...Option) (*Provider, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{
			Provider: "openai",
			Field:    "name",
			Message:  "provider name is required",
		}
	}
	if config.BaseURL == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "base_url",
			Message:  "base URL is required",
		}
	}

	if config.Type == "" {
		config.Type = "openai"
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = defaultMaxIdleConns
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = defaultMaxIdleConnsPerHost
	}
	if config.IdleConnTimeout == 0 {
		config.IdleConnTimeout = defaultIdleConnTimeout
	}

	p := &Provider{
		codec:          Codec{},
		providerType:   config.Type,
		embeddingModel: DefaultEmbeddingModel,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.HTTPProvider = providers.NewHTTPProvider(config, p.httpOpts...)

	slog.Debug("OpenAI-compatible provider initialized",
		"provider", config.Name,
		"type", p.providerType,
		"base_url", config.BaseURL,
		"authenticated", config.APIKey != "",
	)

	return p, nil
}

// GetType returns the provider type, which may differ from "openai" for
// compatible backends.
func (p *Provider) GetType() string {
	return p.providerType
}

// Codec returns the embedding codec in use.
func (p *Provider) Codec() providers.EmbeddingCodec {
	return p.codec
}

// SendCompletion sends a chat completion request.
func (p *Provider) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if err := p.validateRequest(req); err != nil {
		return nil, err
	}

	openaiReq := transformRequest(req, p.defaultModel)
	openaiReq.Stream = false

	start := time.Now()
	var openaiResp OpenAIResponse
	err := p.DoJSONRequest(ctx, http.MethodPost, p.Endpoint(chatCompletionsPath), openaiReq, &openaiResp, p.AuthHeaders())
	if err != nil {
		p.observe(openaiReq.Model, providers.OperationCompletion, start, err)
		return nil, err
	}

	resp, err := transformResponse(&openaiResp)
	if err != nil {
		err = &providers.ParseError{Provider: p.GetName(), Cause: err}
	}
	p.observe(openaiReq.Model, providers.OperationCompletion, start, err)
	if err != nil {
		return nil, err
	}

	slog.Debug("completion received",
		"provider", p.GetName(),
		"model", resp.Model,
		"total_tokens", resp.Usage.TotalTokens,
	)
	return resp, nil
}

// StreamCompletion sends a streaming chat completion request. The returned
// channel is closed when the stream ends; a failure is delivered as a final
// chunk with Error set.
func (p *Provider) StreamCompletion(ctx context.Context, req *providers.CompletionRequest) (<-chan *providers.StreamChunk, error) {
	if err := p.validateRequest(req); err != nil {
		return nil, err
	}

	openaiReq := transformRequest(req, p.defaultModel)
	openaiReq.Stream = true

	headers := p.AuthHeaders()
	headers["Accept"] = "text/event-stream"

	start := time.Now()
	reader, err := newStreamReader(ctx, p.HTTPProvider, p.Endpoint(chatCompletionsPath), openaiReq, headers)
	if err != nil {
		p.observe(openaiReq.Model, providers.OperationStream, start, err)
		return nil, err
	}

	chunks := make(chan *providers.StreamChunk, 16)
	go func() {
		defer close(chunks)
		defer reader.Close()

		var streamErr error
		defer func() {
			p.observe(openaiReq.Model, providers.OperationStream, start, streamErr)
		}()

		for {
			chunk, err := reader.Read(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				streamErr = err
				select {
				case chunks <- &providers.StreamChunk{Error: err}:
				case <-ctx.Done():
				}
				return
			}

			select {
			case chunks <- chunk:
			case <-ctx.Done():
				streamErr = ctx.Err()
				return
			}
		}
	}()

	return chunks, nil
}

// Embed builds the embedding request with the provider's codec, posts it
// and parses the result. The request model is req.Model, or the provider's
// default embedding model; the codec may override it.
func (p *Provider) Embed(ctx context.Context, prompt *providers.Prompt, req providers.EmbeddingRequest) (*providers.Response, error) {
	defaultModel := req.Model
	if defaultModel == "" {
		defaultModel = p.embeddingModel
	}

	params := p.codec.BuildEmbeddingParameters(prompt, req.Input, defaultModel)
	model := defaultModel
	if named, ok := params.(interface{ ModelName() string }); ok {
		model = named.ModelName()
	}

	start := time.Now()
	var raw map[string]any
	err := p.DoJSONRequest(ctx, http.MethodPost, p.Endpoint(p.codec.EmbeddingPath()), params, &raw, p.AuthHeaders())
	if err != nil {
		p.observe(model, providers.OperationEmbedding, start, err)
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}

	resp, err := p.codec.ParseEmbeddingResponse(prompt, raw, params)
	if err != nil {
		var parseErr *providers.ParseError
		if errors.As(err, &parseErr) && parseErr.Provider == "" {
			parseErr.Provider = p.GetName()
		}
		p.observe(model, providers.OperationEmbedding, start, err)
		return nil, err
	}

	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}

	p.observe(model, providers.OperationEmbedding, start, nil)
	if eo, ok := p.observer.(providers.EmbeddingObserver); ok {
		eo.ObserveEmbedding(p.GetName(), model, len(resp.Message.Embedding))
	}

	slog.Debug("embedding received",
		"provider", p.GetName(),
		"model", model,
		"dimensions", len(resp.Message.Embedding),
	)
	return resp, nil
}

// HealthCheck requests the backend's models endpoint.
func (p *Provider) HealthCheck(ctx context.Context) error {
	start := time.Now()
	err := p.HTTPProvider.HealthCheck(ctx)
	p.observe("", providers.OperationHealth, start, err)
	return err
}

func (p *Provider) validateRequest(req *providers.CompletionRequest) error {
	if req == nil {
		return &providers.ValidationError{Field: "request", Message: "request cannot be nil"}
	}
	if req.Model == "" && p.defaultModel == "" {
		return &providers.ValidationError{Field: "model", Message: "model is required"}
	}
	if len(req.Messages) == 0 {
		return &providers.ValidationError{Field: "messages", Message: "at least one message is required"}
	}
	for i, msg := range req.Messages {
		switch msg.Role {
		case providers.RoleSystem, providers.RoleUser, providers.RoleAssistant:
		default:
			return &providers.ValidationError{
				Field:   fmt.Sprintf("messages[%d].role", i),
				Message: fmt.Sprintf("unsupported role %q", msg.Role),
			}
		}
	}
	return nil
}

func (p *Provider) observe(model, operation string, start time.Time, err error) {
	if p.observer == nil {
		return
	}
	p.observer.ObserveRequest(p.GetName(), model, operation, time.Since(start), err)
}
