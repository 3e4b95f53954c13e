package openai

import (
	"context"
	"testing"

	testhelpers "github.com/nicolangr/activeagent/internal/providers"
	"github.com/nicolangr/activeagent/pkg/providers"
)

func BenchmarkOpenAIProvider_SendCompletion(b *testing.B) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/chat/completions", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       testhelpers.MockOpenAIResponse("Hello, world!", "gpt-4"),
	})

	provider, err := NewProvider(testhelpers.TestConfigWithURL("openai", "openai", mock.URL()))
	if err != nil {
		b.Fatalf("failed to create provider: %v", err)
	}
	defer provider.Close()

	req := &providers.CompletionRequest{
		Model:    "gpt-4",
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "Hello"}},
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := provider.SendCompletion(ctx, req); err != nil {
			b.Fatalf("SendCompletion failed: %v", err)
		}
	}
}

func BenchmarkOpenAIProvider_Embed(b *testing.B) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/embeddings", testhelpers.MockResponse{
		Body: testhelpers.MockOpenAIEmbeddingResponse("text-embedding-3-small", make([]float64, 768)),
	})

	provider, err := NewProvider(testhelpers.TestConfigWithURL("openai", "openai", mock.URL()))
	if err != nil {
		b.Fatalf("failed to create provider: %v", err)
	}
	defer provider.Close()

	prompt := testhelpers.TestPrompt("benchmark input")
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := provider.Embed(ctx, prompt, providers.EmbeddingRequest{}); err != nil {
			b.Fatalf("Embed failed: %v", err)
		}
	}
}

func BenchmarkOpenAIProvider_RequestTransformation(b *testing.B) {
	req := &providers.CompletionRequest{
		Model: "gpt-4",
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: "You are a helpful assistant"},
			{Role: providers.RoleUser, Content: "Hello"},
		},
		Temperature: 0.7,
		MaxTokens:   100,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = transformRequest(req, "")
	}
}

func BenchmarkOpenAIProvider_ResponseTransformation(b *testing.B) {
	openaiResp := &OpenAIResponse{
		ID:      "chatcmpl-123",
		Object:  "chat.completion",
		Created: 1234567890,
		Model:   "gpt-4",
		Choices: []OpenAIChoice{
			{
				Message:      OpenAIMessage{Role: "assistant", Content: "Hello, world!"},
				FinishReason: "stop",
			},
		},
		Usage: OpenAIUsage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := transformResponse(openaiResp); err != nil {
			b.Fatalf("transformResponse failed: %v", err)
		}
	}
}
