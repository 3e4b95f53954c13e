package providers

import "time"

// Message is a single conversational message.
//
// Text messages carry Content. A message produced by an embedding call
// carries the vector in Embedding and leaves Content empty.
type Message struct {
	// Role identifies the author (system, user, assistant)
	Role string `json:"role"`

	// Content is the message text
	Content string `json:"content"`

	// Name is an optional author name
	Name string `json:"name,omitempty"`

	// Embedding is the numeric vector returned by an embedding backend
	Embedding []float64 `json:"embedding,omitempty"`
}

// Prompt is the caller-supplied bundle that originates a request.
// Providers read it but never modify it.
type Prompt struct {
	// Message is the prompt's current message; its content is the default
	// input for embedding requests.
	Message Message `json:"message"`

	// Instructions are the system instructions attached to the prompt.
	Instructions string `json:"instructions,omitempty"`
}

// Content returns the prompt message content, or "" for a nil prompt.
func (p *Prompt) Content() string {
	if p == nil {
		return ""
	}
	return p.Message.Content
}

// Response bundles the originating prompt, the produced message and the raw
// request/response payloads of one call. It is built fresh per call.
type Response struct {
	// ID uniquely identifies this response
	ID string `json:"id"`

	// Prompt is the prompt that originated the call
	Prompt *Prompt `json:"prompt,omitempty"`

	// Message is the produced assistant message
	Message Message `json:"message"`

	// RawResponse is the decoded response payload as returned by the backend
	RawResponse map[string]any `json:"raw_response,omitempty"`

	// RawRequest is the request payload that was sent
	RawRequest any `json:"raw_request,omitempty"`
}

// EmbeddingRequest carries the caller's overrides for an embedding call.
// Zero values mean "use the default".
type EmbeddingRequest struct {
	// Input is the text to embed; defaults to the prompt message content
	Input string

	// Model is the caller's default model; a configured embedding model wins
	Model string
}

// TokenUsage tracks token consumption for a request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionRequest is a provider-agnostic chat completion request.
type CompletionRequest struct {
	// Model is the model identifier (e.g., "gemma3:latest", "gpt-4o")
	Model string `json:"model"`

	// Messages is the conversation history
	Messages []Message `json:"messages"`

	Temperature float64  `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	TopP        float64  `json:"top_p,omitempty"`
	Stream      bool     `json:"stream,omitempty"`
	Stop        []string `json:"stop,omitempty"`
	User        string   `json:"user,omitempty"`

	// Metadata is internal request context and is never sent to the provider
	Metadata map[string]string `json:"-"`
}

// CompletionResponse is a provider-agnostic chat completion response.
type CompletionResponse struct {
	ID           string            `json:"id"`
	Model        string            `json:"model"`
	Content      string            `json:"content"`
	FinishReason string            `json:"finish_reason"`
	Usage        TokenUsage        `json:"usage"`
	Created      int64             `json:"created"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// StreamChunk is a single chunk of a streaming response.
type StreamChunk struct {
	ID           string      `json:"id"`
	Model        string      `json:"model"`
	Delta        string      `json:"delta"`
	FinishReason string      `json:"finish_reason,omitempty"`
	Usage        *TokenUsage `json:"usage,omitempty"`
	Created      int64       `json:"created"`

	// Error is set if an error occurred during streaming
	Error error `json:"-"`
}

// ProviderHealth tracks the health status of a provider.
type ProviderHealth struct {
	IsHealthy             bool
	LastCheck             time.Time
	LastError             error
	ConsecutiveFailures   int
	LastSuccessfulRequest time.Time
	TotalRequests         int64
	FailedRequests        int64
}

// ProviderConfig contains the transport settings for a single provider instance.
type ProviderConfig struct {
	// Name is the provider identifier (e.g., "ollama")
	Name string

	// Type is the provider type (openai, generic, ollama)
	Type string

	// BaseURL is the API base URL including the version segment
	// (e.g., "http://localhost:11434/v1")
	BaseURL string

	// APIKey is the bearer token; empty means no Authorization header
	APIKey string

	Timeout             time.Duration
	MaxRetries          int
	HealthCheckInterval time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Finish reason constants
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonContentFilter = "content_filter"
)
