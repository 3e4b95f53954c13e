// Package openai implements the adapter for OpenAI and OpenAI-compatible APIs.
//
// It supports:
//
//   - Chat completions
//   - Streaming responses (Server-Sent Events)
//   - Embeddings, with a pluggable wire format
//
// # Basic Usage
//
//	provider, err := openai.NewProvider(providers.ProviderConfig{
//	    Name:    "openai",
//	    BaseURL: "https://api.openai.com/v1",
//	    APIKey:  key,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	resp, err := provider.SendCompletion(ctx, &providers.CompletionRequest{
//	    Model:    "gpt-4o",
//	    Messages: []providers.Message{{Role: "user", Content: "Hello!"}},
//	})
//
// # Compatible Backends
//
// Servers that mimic the OpenAI API but return embeddings in another shape
// are served by the same Provider with a different codec:
//
//	provider, err := openai.NewProvider(cfg,
//	    openai.WithEmbeddingCodec(codec),
//	    openai.WithProviderType("ollama"),
//	)
//
// The default Codec sends {model, input} and reads data[0].embedding.
//
// # Error Handling
//
//   - 401/403 -> AuthError
//   - 429 -> RateLimitError (includes retry-after)
//   - 400/404 -> ProviderError (not retried)
//   - 5xx -> ProviderError (retried automatically)
//   - Missing vector -> ParseError wrapping providers.ErrMissingEmbedding
package openai
