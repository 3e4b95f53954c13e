// Package providers defines the provider-agnostic types and the shared HTTP
// plumbing used by every generation backend adapter.
//
// # Architecture
//
// The package is organized into layers:
//
//  1. Interfaces - Provider, EmbeddingProvider, EmbeddingCodec and RequestObserver
//  2. Base HTTP Provider - connection pooling, retries, timeouts and health tracking
//  3. Adapters - openai (any OpenAI-compatible API) and ollama, which reuses the
//     openai adapter with its own embedding codec
//
// Backend differences are expressed as an EmbeddingCodec handed to the openai
// adapter, so a new OpenAI-compatible backend only supplies its request body
// shape and response field:
//
//	provider, err := openai.NewProvider(cfg, openai.WithEmbeddingCodec(myCodec{}))
//
// # Embeddings
//
//	prompt := &providers.Prompt{Message: providers.Message{Role: "user", Content: "hello"}}
//	resp, err := provider.Embed(ctx, prompt, providers.EmbeddingRequest{})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(len(resp.Message.Embedding))
//
// # Error Handling
//
// The package defines specific error types for common failure scenarios:
//
//   - ProviderError: General provider errors and unexpected HTTP status codes
//   - AuthError: Authentication failures (HTTP 401/403)
//   - RateLimitError: Rate limit exceeded (HTTP 429)
//   - TimeoutError: Request timeout or cancellation
//   - ParseError: Response parsing failure, including a missing embedding field
//   - ValidationError: Invalid request
//
// A response without a vector is reported as a ParseError wrapping
// ErrMissingEmbedding:
//
//	if errors.Is(err, providers.ErrMissingEmbedding) {
//	    ...
//	}
//
// # Retry Logic
//
// Network errors and 5xx responses are retried up to MaxRetries times with
// exponential backoff. 4xx responses are returned immediately.
//
// # Thread Safety
//
// HTTPProvider and the adapters built on it are safe for concurrent use.
package providers
