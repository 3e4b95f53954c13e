// Package ollama adapts a local or remote Ollama server.
//
// Ollama exposes an OpenAI-compatible API under /v1, so the Provider is the
// openai adapter configured with an Ollama Codec. Embedding requests are
// sent as {"model", "prompt"} and the vector is read from the top-level
// "embedding" field of the response rather than from a "data" array.
//
// Configuration precedence for every setting is: explicit config value,
// then (for the access token only) the injected CredentialResolver over
// OLLAMA_API_KEY and OLLAMA_ACCESS_TOKEN, then the default.
//
//	provider, err := ollama.NewProvider(ollama.Config{
//	    "model":           "gemma3:latest",
//	    "embedding_model": "nomic-embed-text",
//	}, ollama.WithCredentialResolver(secrets.EnvResolver))
//	if err != nil {
//	    return err
//	}
//	defer provider.Close()
//
//	resp, err := provider.Embed(ctx, prompt, providers.EmbeddingRequest{})
package ollama
