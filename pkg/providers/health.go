package providers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultHealthCheckInterval = 30 * time.Second
	healthCheckTimeout         = 5 * time.Second
	maxHealthBackoff           = 5 * time.Minute
)

// HealthCheckPath is the endpoint requested by HealthCheck, relative to the
// base URL. OpenAI and Ollama both list models under it.
const HealthCheckPath = "models"

// StartHealthChecker starts a background goroutine that periodically checks
// the provider's health. Only the first call has any effect.
//
// The checker runs until the provider is closed or ctx is cancelled. While
// the provider is unhealthy the interval backs off exponentially.
func (p *HTTPProvider) StartHealthChecker(ctx context.Context) {
	p.startOnce.Do(func() {
		p.healthMu.Lock()
		p.checkerStarted = true
		p.healthMu.Unlock()

		go p.runHealthChecker(ctx)
	})
}

func (p *HTTPProvider) runHealthChecker(ctx context.Context) {
	defer close(p.healthCheckStopped)

	interval := p.config.HealthCheckInterval
	if interval <= 0 {
		interval = defaultHealthCheckInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("health checker started",
		"provider", p.config.Name,
		"interval", interval,
	)

	for {
		select {
		case <-ctx.Done():
			slog.Debug("health checker stopped (context cancelled)", "provider", p.config.Name)
			return

		case <-p.stopHealthCheck:
			slog.Debug("health checker stopped (provider closed)", "provider", p.config.Name)
			return

		case <-ticker.C:
			p.performHealthCheck(ctx)

			if p.IsHealthy() {
				ticker.Reset(interval)
				continue
			}

			health := p.GetHealth()
			next := calculateBackoff(health.ConsecutiveFailures, interval)
			ticker.Reset(next)

			slog.Debug("health check backoff",
				"provider", p.config.Name,
				"consecutive_failures", health.ConsecutiveFailures,
				"next_check_in", next,
			)
		}
	}
}

func (p *HTTPProvider) performHealthCheck(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	wasHealthy := p.IsHealthy()

	start := time.Now()
	err := p.HealthCheck(checkCtx)
	latency := time.Since(start)

	if err != nil {
		slog.Error("health check failed",
			"provider", p.config.Name,
			"error", err,
			"latency", latency,
		)
		return
	}

	slog.Debug("health check passed",
		"provider", p.config.Name,
		"latency", latency,
	)

	if !wasHealthy {
		slog.Info("provider marked healthy", "provider", p.config.Name)
	}
}

// HealthCheck performs a single synchronous GET against the models endpoint.
// Each call counts as exactly one success or failure towards the
// unhealthy threshold, however many retries it took.
func (p *HTTPProvider) HealthCheck(ctx context.Context) error {
	err := p.checkModels(ctx)
	p.updateHealth(err == nil, err)
	return err
}

func (p *HTTPProvider) checkModels(ctx context.Context) error {
	resp, err := p.doRequest(ctx, http.MethodGet, p.Endpoint(HealthCheckPath), nil, p.AuthHeaders(), false)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// calculateBackoff returns base * 2^failures, capped at 10x base and 5 minutes.
func calculateBackoff(consecutiveFailures int, baseInterval time.Duration) time.Duration {
	if consecutiveFailures <= 0 {
		return baseInterval
	}

	multiplier := 10
	if consecutiveFailures < 4 {
		multiplier = 1 << uint(consecutiveFailures)
	}

	backoff := baseInterval * time.Duration(multiplier)
	if backoff > maxHealthBackoff {
		backoff = maxHealthBackoff
	}
	return backoff
}
