package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"
)

// unhealthyThreshold is the number of consecutive failures after which a
// provider is marked unhealthy.
const unhealthyThreshold = 3

// HTTPProvider is the base for HTTP-based provider adapters.
// It provides connection pooling, retry logic, timeout handling, and health monitoring.
//
// Concrete adapters embed or hold a *HTTPProvider and add the wire format.
// HTTPProvider is safe for concurrent use.
type HTTPProvider struct {
	config ProviderConfig
	client *http.Client

	// healthMu protects health
	health   ProviderHealth
	healthMu sync.RWMutex

	// backoff computes the delay before retry attempt n (n >= 1)
	backoff func(attempt int) time.Duration

	checkerStarted     bool
	startOnce          sync.Once
	closeOnce          sync.Once
	stopHealthCheck    chan struct{}
	healthCheckStopped chan struct{}
}

// HTTPOption configures an HTTPProvider.
type HTTPOption func(*httpOptions)

type httpOptions struct {
	middleware []func(http.RoundTripper) http.RoundTripper
}

// WithTransportMiddleware wraps the pooled transport. Middleware is applied
// in order, so the last one added sees each request first.
func WithTransportMiddleware(wrap func(http.RoundTripper) http.RoundTripper) HTTPOption {
	return func(o *httpOptions) {
		if wrap != nil {
			o.middleware = append(o.middleware, wrap)
		}
	}
}

// NewHTTPProvider creates a new base HTTP provider with connection pooling.
func NewHTTPProvider(config ProviderConfig, opts ...HTTPOption) *HTTPProvider {
	var o httpOptions
	for _, opt := range opts {
		opt(&o)
	}

	var transport http.RoundTripper = &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}
	for _, wrap := range o.middleware {
		transport = wrap(transport)
	}

	now := time.Now()
	return &HTTPProvider{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		health: ProviderHealth{
			IsHealthy:             true, // Start optimistic
			LastCheck:             now,
			LastSuccessfulRequest: now,
		},
		backoff:            exponentialBackoff,
		stopHealthCheck:    make(chan struct{}),
		healthCheckStopped: make(chan struct{}),
	}
}

// GetName returns the provider's configured name.
func (p *HTTPProvider) GetName() string {
	return p.config.Name
}

// GetType returns the provider's type.
func (p *HTTPProvider) GetType() string {
	return p.config.Type
}

// GetConfig returns the provider's configuration.
func (p *HTTPProvider) GetConfig() ProviderConfig {
	return p.config
}

// Endpoint joins the base URL and path with exactly one slash.
func (p *HTTPProvider) Endpoint(path string) string {
	return strings.TrimSuffix(p.config.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// AuthHeaders returns the bearer Authorization header, or an empty map when
// no API key is configured.
func (p *HTTPProvider) AuthHeaders() map[string]string {
	headers := make(map[string]string, 1)
	if p.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + p.config.APIKey
	}
	return headers
}

// IsHealthy returns the current health status.
func (p *HTTPProvider) IsHealthy() bool {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health.IsHealthy
}

// GetHealth returns a snapshot of the health information.
func (p *HTTPProvider) GetHealth() ProviderHealth {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health
}

// updateHealth updates the provider's health status after a check or request.
func (p *HTTPProvider) updateHealth(success bool, err error) {
	p.healthMu.Lock()
	defer p.healthMu.Unlock()

	p.health.LastCheck = time.Now()

	if success {
		p.health.IsHealthy = true
		p.health.ConsecutiveFailures = 0
		p.health.LastError = nil
		p.health.LastSuccessfulRequest = time.Now()
		return
	}

	p.health.ConsecutiveFailures++
	p.health.LastError = err

	if p.health.ConsecutiveFailures >= unhealthyThreshold {
		p.health.IsHealthy = false
		slog.Warn("provider marked unhealthy",
			"provider", p.config.Name,
			"consecutive_failures", p.health.ConsecutiveFailures,
			"error", err,
		)
	}
}

func (p *HTTPProvider) recordRequest(success bool) {
	p.healthMu.Lock()
	defer p.healthMu.Unlock()

	p.health.TotalRequests++
	if !success {
		p.health.FailedRequests++
	}
}

// DoRequest performs an HTTP request with retry logic and timeout handling.
// Network errors and 5xx responses are retried with exponential backoff;
// 4xx responses are returned immediately as typed errors.
func (p *HTTPProvider) DoRequest(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	return p.doRequest(ctx, method, url, body, headers, true)
}

// doRequest is DoRequest with the health bookkeeping optional. Health
// health checks pass trackHealth=false and record a single outcome themselves.
func (p *HTTPProvider) doRequest(ctx context.Context, method, url string, body []byte, headers map[string]string, trackHealth bool) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := p.backoff(attempt)
			slog.DebugContext(ctx, "retrying request",
				"provider", p.config.Name,
				"attempt", attempt,
				"max_retries", p.config.MaxRetries,
				"backoff", delay,
			)

			select {
			case <-ctx.Done():
				return nil, &TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout}
			case <-time.After(delay):
			}
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		for key, value := range headers {
			req.Header.Set(key, value)
		}
		if req.Header.Get("Content-Type") == "" && body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		slog.DebugContext(ctx, "sending request to provider",
			"provider", p.config.Name,
			"method", method,
			"url", url,
		)

		resp, err := p.client.Do(req)
		if err != nil {
			lastErr = &ProviderError{Provider: p.config.Name, Message: "request failed", Cause: err}
			p.recordRequest(false)

			if ctx.Err() != nil {
				return nil, &TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout}
			}

			slog.WarnContext(ctx, "request failed, will retry",
				"provider", p.config.Name,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			p.recordRequest(true)
			if trackHealth {
				p.updateHealth(true, nil)
			}
			return resp, nil
		}

		errorBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		p.recordRequest(false)

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			if trackHealth {
				p.updateHealth(false, fmt.Errorf("authentication failed"))
			}
			return nil, &AuthError{Provider: p.config.Name, Message: string(errorBody)}

		case http.StatusTooManyRequests:
			return nil, &RateLimitError{
				Provider:   p.config.Name,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Message:    string(errorBody),
			}

		default:
			provErr := &ProviderError{
				Provider:   p.config.Name,
				StatusCode: resp.StatusCode,
				Message:    string(errorBody),
			}
			if resp.StatusCode < http.StatusInternalServerError {
				return nil, provErr
			}
			lastErr = provErr
			slog.WarnContext(ctx, "request returned error status, will retry",
				"provider", p.config.Name,
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)
		}
	}

	if trackHealth {
		p.updateHealth(false, lastErr)
	}
	return nil, lastErr
}

// DoJSONRequest marshals reqBody, performs the request and decodes the
// response into respBody.
func (p *HTTPProvider) DoJSONRequest(ctx context.Context, method, url string, reqBody, respBody any, headers map[string]string) error {
	var bodyBytes []byte
	if reqBody != nil {
		var err error
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := p.DoRequest(ctx, method, url, bodyBytes, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ParseError{
			Provider: p.config.Name,
			Cause:    fmt.Errorf("failed to read response: %w", err),
		}
	}

	if respBody != nil && len(responseBytes) > 0 {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &ParseError{
				Provider:    p.config.Name,
				RawResponse: string(responseBytes),
				Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
			}
		}
	}

	return nil
}

// Close stops the health checker (if running) and closes idle connections.
// It is safe to call more than once.
func (p *HTTPProvider) Close() error {
	p.closeOnce.Do(func() {
		close(p.stopHealthCheck)

		p.healthMu.RLock()
		started := p.checkerStarted
		p.healthMu.RUnlock()

		if started {
			select {
			case <-p.healthCheckStopped:
				slog.Debug("health checker stopped", "provider", p.config.Name)
			case <-time.After(5 * time.Second):
				slog.Warn("health checker did not stop in time", "provider", p.config.Name)
			}
		}

		p.client.CloseIdleConnections()
		slog.Info("provider closed", "provider", p.config.Name)
	})
	return nil
}

// exponentialBackoff returns 1s, 2s, 4s, ... for attempts 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
