package providers

import (
	"context"
	"time"
)

// Provider is the core interface that all generation provider adapters must implement.
// It provides a unified abstraction over OpenAI-compatible backends such as
// OpenAI itself and a local Ollama server.
//
// All methods accept a context.Context for cancellation and timeout control.
// Implementations must respect context cancellation and return immediately when
// the context is cancelled.
//
// Example usage:
//
//	provider, err := providerfactory.NewProvider(config)
//	if err != nil {
//	    return err
//	}
//
//	req := &CompletionRequest{
//	    Model: "gemma3:latest",
//	    Messages: []Message{
//	        {Role: "user", Content: "Hello!"},
//	    },
//	}
//
//	resp, err := provider.SendCompletion(ctx, req)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.Content)
type Provider interface {
	// SendCompletion sends a completion request to the provider and returns the response.
	// The request is transformed to the provider-specific format, sent to the provider,
	// and the response is normalized to the provider-agnostic format.
	//
	// Returns an error if the request fails, times out, or the provider returns an error.
	// Transient errors are retried with exponential backoff.
	SendCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// StreamCompletion sends a streaming completion request to the provider.
	// It returns a channel that yields incremental response chunks as they arrive.
	//
	// The caller must read from the channel until it closes. If an error occurs during
	// streaming, it will be set in the Error field of the final StreamChunk.
	//
	// Example:
	//
	//  chunks, err := provider.StreamCompletion(ctx, req)
	//  if err != nil {
	//      return err
	//  }
	//  for chunk := range chunks {
	//      if chunk.Error != nil {
	//          return chunk.Error
	//      }
	//      fmt.Print(chunk.Delta)
	//  }
	StreamCompletion(ctx context.Context, req *CompletionRequest) (<-chan *StreamChunk, error)

	// HealthCheck performs a health check against the provider.
	// Returns nil if the provider is healthy, or an error describing the health issue.
	HealthCheck(ctx context.Context) error

	// GetName returns the provider's configured name (e.g., "ollama").
	GetName() string

	// GetType returns the provider's type (e.g., "openai", "ollama", "generic").
	GetType() string

	// GetConfig returns the provider's configuration.
	GetConfig() ProviderConfig

	// IsHealthy returns the current health status of the provider.
	IsHealthy() bool

	// GetHealth returns detailed health information including last check time,
	// consecutive failures, and error details.
	GetHealth() ProviderHealth

	// Close closes the provider and releases any resources (HTTP connections, etc.).
	// After calling Close, the provider should not be used.
	Close() error
}

// EmbeddingProvider is implemented by providers that can turn a prompt into
// an embedding vector.
type EmbeddingProvider interface {
	Provider

	// Embed sends a single embedding request built from prompt and req.
	// The returned Response carries the vector in Message.Embedding.
	Embed(ctx context.Context, prompt *Prompt, req EmbeddingRequest) (*Response, error)
}

// EmbeddingCodec translates embedding requests and responses between the
// generic shape and one backend's wire format. A provider is parameterized
// by a codec instead of being specialized per backend.
type EmbeddingCodec interface {
	// EmbeddingPath is the endpoint path relative to the provider base URL.
	EmbeddingPath() string

	// BuildEmbeddingParameters returns the JSON request body. An empty input
	// falls back to the prompt's message content. It performs no I/O.
	BuildEmbeddingParameters(prompt *Prompt, input, defaultModel string) any

	// ParseEmbeddingResponse wraps the vector found in raw into a Response.
	ParseEmbeddingResponse(prompt *Prompt, raw map[string]any, request any) (*Response, error)
}

// RequestObserver receives one notification per provider call.
// It is used to feed metrics without coupling adapters to a metrics backend.
type RequestObserver interface {
	ObserveRequest(provider, model, operation string, duration time.Duration, err error)
}

// EmbeddingObserver is optionally implemented by a RequestObserver that also
// records the size of returned vectors.
type EmbeddingObserver interface {
	ObserveEmbedding(provider, model string, dimensions int)
}

// Operation names reported to a RequestObserver.
const (
	OperationCompletion = "completion"
	OperationStream     = "stream"
	OperationEmbedding  = "embedding"
	OperationHealth     = "health_check"
)

// StreamReader is a helper interface for providers that support streaming.
// It abstracts the underlying SSE or streaming protocol used by the provider.
type StreamReader interface {
	// Read reads the next chunk from the stream.
	// Returns nil and io.EOF when the stream ends normally.
	Read(ctx context.Context) (*StreamChunk, error)

	// Close closes the stream and releases resources.
	Close() error
}
