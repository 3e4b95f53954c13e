package providers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// newTestHTTPProvider returns a provider whose retries do not sleep.
func newTestHTTPProvider(baseURL string, maxRetries int) *HTTPProvider {
	p := NewHTTPProvider(ProviderConfig{
		Name:       "test-provider",
		Type:       "openai",
		BaseURL:    baseURL,
		Timeout:    5 * time.Second,
		MaxRetries: maxRetries,
	})
	p.backoff = func(int) time.Duration { return time.Millisecond }
	return p
}

func TestHTTPProvider_RetryOn5xx(t *testing.T) {
	attemptCount := int32(0)

	// Fails twice with 500, then succeeds
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := atomic.AddInt32(&attemptCount, 1)
		if count <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": "internal server error"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message": "success"}`))
	}))
	defer server.Close()

	provider := newTestHTTPProvider(server.URL, 3)

	resp, err := provider.DoRequest(context.Background(), http.MethodPost, server.URL+"/test", []byte(`{"test": true}`), nil)
	if err != nil {
		t.Fatalf("expected request to succeed after retries, got error: %v", err)
	}
	defer resp.Body.Close()

	if got := atomic.LoadInt32(&attemptCount); got != 3 {
		t.Errorf("expected 3 attempts (2 retries), got %d", got)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if !provider.IsHealthy() {
		t.Error("expected provider to be healthy after successful retry")
	}
}

func TestHTTPProvider_NoRetryOn4xx(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		check      func(error) bool
	}{
		{
			name:       "400 bad request",
			statusCode: http.StatusBadRequest,
			check: func(err error) bool {
				var e *ProviderError
				return errors.As(err, &e) && e.StatusCode == http.StatusBadRequest
			},
		},
		{
			name:       "401 unauthorized",
			statusCode: http.StatusUnauthorized,
			check: func(err error) bool {
				var e *AuthError
				return errors.As(err, &e)
			},
		},
		{
			name:       "403 forbidden",
			statusCode: http.StatusForbidden,
			check: func(err error) bool {
				var e *AuthError
				return errors.As(err, &e)
			},
		},
		{
			name:       "404 not found",
			statusCode: http.StatusNotFound,
			check: func(err error) bool {
				var e *ProviderError
				return errors.As(err, &e) && e.StatusCode == http.StatusNotFound
			},
		},
		{
			name:       "429 rate limit",
			statusCode: http.StatusTooManyRequests,
			check: func(err error) bool {
				var e *RateLimitError
				return errors.As(err, &e) && e.RetryAfter == 7*time.Second
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attemptCount := int32(0)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&attemptCount, 1)
				w.Header().Set("Retry-After", "7")
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(`{"error": "client error"}`))
			}))
			defer server.Close()

			provider := newTestHTTPProvider(server.URL, 3)

			resp, err := provider.DoRequest(context.Background(), http.MethodPost, server.URL+"/test", []byte(`{}`), nil)
			if resp != nil {
				resp.Body.Close()
			}
			if err == nil {
				t.Fatalf("expected error for %d status, got nil", tt.statusCode)
			}
			if got := atomic.LoadInt32(&attemptCount); got != 1 {
				t.Errorf("expected 1 attempt (no retries for 4xx), got %d", got)
			}
			if !tt.check(err) {
				t.Errorf("unexpected error %T: %v", err, err)
			}
		})
	}
}

func TestHTTPProvider_MaxRetries(t *testing.T) {
	attemptCount := int32(0)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attemptCount, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := newTestHTTPProvider(server.URL, 2)

	_, err := provider.DoRequest(context.Background(), http.MethodPost, server.URL+"/test", []byte(`{}`), nil)
	if err == nil {
		t.Fatal("expected error after max retries exceeded")
	}

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) || providerErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected ProviderError with status 500, got %T: %v", err, err)
	}

	if got := atomic.LoadInt32(&attemptCount); got != 3 {
		t.Errorf("expected 3 attempts (initial + 2 retries), got %d", got)
	}

	health := provider.GetHealth()
	if health.ConsecutiveFailures != 1 {
		t.Errorf("expected 1 consecutive failure, got %d", health.ConsecutiveFailures)
	}
	if health.FailedRequests != 3 {
		t.Errorf("expected 3 failed requests, got %d", health.FailedRequests)
	}
}

func TestHTTPProvider_ContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider := newTestHTTPProvider(server.URL, 3)
	provider.backoff = func(int) time.Duration { return time.Minute }

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := provider.DoRequest(ctx, http.MethodGet, server.URL, nil, nil)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %T: %v", err, err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("cancellation took too long: %s", elapsed)
	}
}

func TestHTTPProvider_ClientTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	provider := newTestHTTPProvider(server.URL, 0)
	provider.client.Timeout = 50 * time.Millisecond

	_, err := provider.DoRequest(context.Background(), http.MethodGet, server.URL, nil, nil)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Errorf("expected ProviderError wrapping the transport error, got %T: %v", err, err)
	}
}

func TestHTTPProvider_Headers(t *testing.T) {
	var gotAuth, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	t.Run("bearer token", func(t *testing.T) {
		p := NewHTTPProvider(ProviderConfig{Name: "p", BaseURL: server.URL, APIKey: "sk-123", Timeout: time.Second})
		resp, err := p.DoRequest(context.Background(), http.MethodPost, server.URL, []byte(`{}`), p.AuthHeaders())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()

		if gotAuth != "Bearer sk-123" {
			t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer sk-123")
		}
		if gotContentType != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", gotContentType)
		}
	})

	t.Run("no token", func(t *testing.T) {
		p := NewHTTPProvider(ProviderConfig{Name: "p", BaseURL: server.URL, Timeout: time.Second})
		if len(p.AuthHeaders()) != 0 {
			t.Fatalf("expected no auth headers, got %v", p.AuthHeaders())
		}
		resp, err := p.DoRequest(context.Background(), http.MethodPost, server.URL, []byte(`{}`), p.AuthHeaders())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()

		if gotAuth != "" {
			t.Errorf("expected no Authorization header, got %q", gotAuth)
		}
	})
}

func TestHTTPProvider_DoJSONRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/echo":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(body)
		case "/garbage":
			_, _ = w.Write([]byte("not json"))
		}
	}))
	defer server.Close()

	provider := newTestHTTPProvider(server.URL, 0)

	t.Run("round trip", func(t *testing.T) {
		var out map[string]any
		err := provider.DoJSONRequest(context.Background(), http.MethodPost, provider.Endpoint("echo"),
			map[string]string{"model": "m"}, &out, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out["model"] != "m" {
			t.Errorf("expected echoed model, got %v", out)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		var out map[string]any
		err := provider.DoJSONRequest(context.Background(), http.MethodPost, provider.Endpoint("/garbage"), nil, &out, nil)

		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected ParseError, got %T: %v", err, err)
		}
		if parseErr.RawResponse != "not json" {
			t.Errorf("RawResponse = %q", parseErr.RawResponse)
		}
	})
}

func TestHTTPProvider_Endpoint(t *testing.T) {
	tests := []struct {
		baseURL string
		path    string
		want    string
	}{
		{"http://localhost:11434/v1", "embeddings", "http://localhost:11434/v1/embeddings"},
		{"http://localhost:11434/v1/", "embeddings", "http://localhost:11434/v1/embeddings"},
		{"http://localhost:11434/v1", "/models", "http://localhost:11434/v1/models"},
	}

	for _, tt := range tests {
		p := NewHTTPProvider(ProviderConfig{BaseURL: tt.baseURL})
		if got := p.Endpoint(tt.path); got != tt.want {
			t.Errorf("Endpoint(%q) with base %q = %q, want %q", tt.path, tt.baseURL, got, tt.want)
		}
	}
}

func TestHTTPProvider_CloseWithoutHealthChecker(t *testing.T) {
	p := NewHTTPProvider(ProviderConfig{Name: "idle", BaseURL: "http://127.0.0.1:0"})

	done := make(chan struct{})
	go func() {
		_ = p.Close()
		_ = p.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close blocked although no health checker was running")
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter(""); got != 0 {
		t.Errorf("empty header: got %s", got)
	}
	if got := parseRetryAfter("30"); got != 30*time.Second {
		t.Errorf("seconds: got %s", got)
	}
	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	if got := parseRetryAfter(future); got < 58*time.Minute || got > time.Hour {
		t.Errorf("http date: got %s", got)
	}
	if got := parseRetryAfter("soon"); got != 0 {
		t.Errorf("garbage: got %s", got)
	}
}

type headerTransport struct {
	value string
	next  http.RoundTripper
}

func (h headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Add("X-Chain", h.value)
	return h.next.RoundTrip(r)
}

func TestHTTPProvider_TransportMiddleware(t *testing.T) {
	received := make(chan []string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.Header.Values("X-Chain")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	wrap := func(value string) HTTPOption {
		return WithTransportMiddleware(func(next http.RoundTripper) http.RoundTripper {
			return headerTransport{value: value, next: next}
		})
	}
	p := NewHTTPProvider(ProviderConfig{Name: "p", BaseURL: server.URL, Timeout: time.Second}, wrap("inner"), wrap("outer"), WithTransportMiddleware(nil))
	defer p.Close()

	resp, err := p.DoRequest(context.Background(), http.MethodGet, server.URL, nil, nil)
	if err != nil {
		t.Fatalf("DoRequest() failed: %v", err)
	}
	resp.Body.Close()

	chain := <-received
	if len(chain) != 2 || chain[0] != "outer" || chain[1] != "inner" {
		t.Errorf("X-Chain = %v, want [outer inner]", chain)
	}
}
