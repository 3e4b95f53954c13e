package providers

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nicolangr/activeagent/pkg/providers"
)

// TestConfig returns a test provider configuration.
func TestConfig(name, providerType string) providers.ProviderConfig {
	return providers.ProviderConfig{
		Name:                name,
		Type:                providerType,
		BaseURL:             "http://localhost:8080",
		APIKey:              "test-key",
		Timeout:             5 * time.Second,
		MaxRetries:          0,
		HealthCheckInterval: time.Second,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     30 * time.Second,
	}
}

// TestConfigWithURL returns a test config with a specific base URL.
func TestConfigWithURL(name, providerType, baseURL string) providers.ProviderConfig {
	config := TestConfig(name, providerType)
	config.BaseURL = baseURL
	return config
}

// TestMessage creates a test message.
func TestMessage(role, content string) providers.Message {
	return providers.Message{
		Role:    role,
		Content: content,
	}
}

// TestPrompt creates a prompt whose message has the given content.
func TestPrompt(content string) *providers.Prompt {
	return &providers.Prompt{
		Message: TestMessage(providers.RoleUser, content),
	}
}

// TestCompletionRequest creates a test completion request.
func TestCompletionRequest(model string, messages ...providers.Message) *providers.CompletionRequest {
	return &providers.CompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   100,
	}
}

// AssertErrorAs fails the test unless err matches target via errors.As.
func AssertErrorAs(t *testing.T, err error, target any) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.As(err, target) {
		t.Fatalf("expected %T, got %T: %v", target, err, err)
	}
}

// CollectStreamChunks collects all chunks from a stream channel.
func CollectStreamChunks(t *testing.T, chunks <-chan *providers.StreamChunk) ([]*providers.StreamChunk, error) {
	t.Helper()

	var collected []*providers.StreamChunk
	for chunk := range chunks {
		if chunk.Error != nil {
			return collected, chunk.Error
		}
		collected = append(collected, chunk)
	}

	return collected, nil
}

// ConcatenateChunks concatenates the delta content from all chunks.
func ConcatenateChunks(chunks []*providers.StreamChunk) string {
	var result string
	for _, chunk := range chunks {
		result += chunk.Delta
	}
	return result
}

// ObservedRequest is one notification captured by RecordingObserver.
type ObservedRequest struct {
	Provider  string
	Model     string
	Operation string
	Err       error
}

// RecordingObserver records RequestObserver and EmbeddingObserver calls.
type RecordingObserver struct {
	mu         sync.Mutex
	Requests   []ObservedRequest
	Dimensions []int
}

// ObserveRequest implements providers.RequestObserver.
func (o *RecordingObserver) ObserveRequest(provider, model, operation string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Requests = append(o.Requests, ObservedRequest{provider, model, operation, err})
}

// ObserveEmbedding implements providers.EmbeddingObserver.
func (o *RecordingObserver) ObserveEmbedding(_, _ string, dimensions int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Dimensions = append(o.Dimensions, dimensions)
}

// Snapshot returns a copy of the recorded requests.
func (o *RecordingObserver) Snapshot() []ObservedRequest {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]ObservedRequest, len(o.Requests))
	copy(out, o.Requests)
	return out
}
