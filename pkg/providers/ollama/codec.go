package ollama

import (
	"github.com/google/uuid"

	"github.com/nicolangr/activeagent/pkg/providers"
)

const embeddingPath = "embeddings"

// EmbeddingParameters is the body of an Ollama embeddings request.
type EmbeddingParameters struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// ModelName returns the model the request targets.
func (p EmbeddingParameters) ModelName() string {
	return p.Model
}

// Codec speaks Ollama's embeddings format: {model, prompt} in and a
// top-level embedding array out.
type Codec struct {
	// EmbeddingModel, when set, takes precedence over the caller's default.
	EmbeddingModel string
}

var _ providers.EmbeddingCodec = Codec{}

// EmbeddingPath implements providers.EmbeddingCodec.
func (Codec) EmbeddingPath() string {
	return embeddingPath
}

// BuildEmbeddingParameters implements providers.EmbeddingCodec.
func (c Codec) BuildEmbeddingParameters(prompt *providers.Prompt, input, defaultModel string) any {
	return c.Parameters(prompt, input, defaultModel)
}

// Parameters is BuildEmbeddingParameters with a concrete return type.
func (c Codec) Parameters(prompt *providers.Prompt, input, defaultModel string) EmbeddingParameters {
	if input == "" {
		input = prompt.Content()
	}
	return EmbeddingParameters{
		Model:  firstNonEmpty(c.EmbeddingModel, defaultModel),
		Prompt: input,
	}
}

// ParseEmbeddingResponse implements providers.EmbeddingCodec. A response
// without an embedding field is a ParseError wrapping
// providers.ErrMissingEmbedding.
func (Codec) ParseEmbeddingResponse(prompt *providers.Prompt, raw map[string]any, request any) (*providers.Response, error) {
	value, ok := raw["embedding"]
	if !ok {
		return nil, &providers.ParseError{
			RawResponse: providers.RawString(raw),
			Cause:       providers.ErrMissingEmbedding,
		}
	}

	vector, err := providers.ToVector(value)
	if err != nil {
		return nil, &providers.ParseError{
			RawResponse: providers.RawString(raw),
			Cause:       err,
		}
	}

	return &providers.Response{
		ID:     uuid.NewString(),
		Prompt: prompt,
		Message: providers.Message{
			Role:      providers.RoleAssistant,
			Embedding: vector,
		},
		RawResponse: raw,
		RawRequest:  request,
	}, nil
}
