package openai

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nicolangr/activeagent/pkg/providers"
)

// DefaultEmbeddingModel is used when neither the request nor the provider
// names an embedding model.
const DefaultEmbeddingModel = "text-embedding-3-small"

// EmbeddingRequest is the body of an OpenAI embeddings call.
type EmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// ModelName returns the model the request targets.
func (r EmbeddingRequest) ModelName() string {
	return r.Model
}

// Codec speaks OpenAI's embeddings format: {model, input} in and
// data[0].embedding out.
type Codec struct{}

var _ providers.EmbeddingCodec = Codec{}

// EmbeddingPath implements providers.EmbeddingCodec.
func (Codec) EmbeddingPath() string {
	return "embeddings"
}

// BuildEmbeddingParameters implements providers.EmbeddingCodec.
func (Codec) BuildEmbeddingParameters(prompt *providers.Prompt, input, defaultModel string) any {
	if input == "" {
		input = prompt.Content()
	}
	return EmbeddingRequest{Model: defaultModel, Input: input}
}

// ParseEmbeddingResponse implements providers.EmbeddingCodec.
func (Codec) ParseEmbeddingResponse(prompt *providers.Prompt, raw map[string]any, request any) (*providers.Response, error) {
	data, ok := raw["data"].([]any)
	if !ok || len(data) == 0 {
		return nil, &providers.ParseError{
			RawResponse: providers.RawString(raw),
			Cause:       providers.ErrMissingEmbedding,
		}
	}

	first, ok := data[0].(map[string]any)
	if !ok {
		return nil, &providers.ParseError{
			RawResponse: providers.RawString(raw),
			Cause:       fmt.Errorf("data[0] is %T, want object", data[0]),
		}
	}

	value, ok := first["embedding"]
	if !ok {
		return nil, &providers.ParseError{
			RawResponse: providers.RawString(raw),
			Cause:       providers.ErrMissingEmbedding,
		}
	}

	vector, err := providers.ToVector(value)
	if err != nil {
		return nil, &providers.ParseError{RawResponse: providers.RawString(raw), Cause: err}
	}

	return &providers.Response{
		ID:          uuid.NewString(),
		Prompt:      prompt,
		Message:     providers.Message{Role: providers.RoleAssistant, Embedding: vector},
		RawResponse: raw,
		RawRequest:  request,
	}, nil
}
