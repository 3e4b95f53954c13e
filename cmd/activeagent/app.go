package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nicolangr/activeagent/pkg/cli"
	"github.com/nicolangr/activeagent/pkg/config"
	"github.com/nicolangr/activeagent/pkg/providerfactory"
	"github.com/nicolangr/activeagent/pkg/security/secrets"
	"github.com/nicolangr/activeagent/pkg/telemetry/logging"
	"github.com/nicolangr/activeagent/pkg/telemetry/metrics"
	"github.com/nicolangr/activeagent/pkg/telemetry/tracing"
)

// app holds everything a command needs once the configuration is loaded.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	secrets   *secrets.Manager
	metrics   *metrics.Collector
	tracer    *tracing.Tracer
	providers *providerfactory.Manager
}

type appOptions struct {
	configPath string
	// defaultIfMissing runs with config.Default when configPath does not exist.
	defaultIfMissing bool
	verbose          bool
	logWriter        io.Writer
	getenv           func(string) string
}

// newApp loads the configuration and wires logging, secrets, metrics,
// tracing and providers. The returned app must be closed.
func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}
	if opts.verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logCfg := logging.FromConfig(cfg.Telemetry.Logging)
	logCfg.Writer = opts.logWriter
	if logCfg.Writer == nil {
		logCfg.Writer = os.Stderr
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	secretManager, err := secrets.NewManagerFromConfig(cfg.Secrets)
	if err != nil {
		return nil, cli.NewConfigError("secrets", err.Error())
	}
	if err := secretManager.ResolveConfig(ctx, cfg); err != nil {
		_ = secretManager.Close()
		return nil, cli.NewConfigError("secrets", err.Error())
	}

	factoryOpts := []providerfactory.Option{
		providerfactory.WithCredentialResolver(secretManager.Resolver(ctx)),
	}

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
		factoryOpts = append(factoryOpts, providerfactory.WithObserver(collector))
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithVersion(Version))
	if err != nil {
		_ = secretManager.Close()
		return nil, cli.NewConfigError("telemetry.tracing", err.Error())
	}
	if tracer.Enabled() {
		factoryOpts = append(factoryOpts, providerfactory.WithTransportMiddleware(tracer.Transport))
	}

	manager := providerfactory.NewManager(factoryOpts...)
	if err := manager.LoadFromConfig(cfg); err != nil {
		_ = manager.Close()
		_ = secretManager.Close()
		_ = tracer.Shutdown(ctx)
		return nil, err
	}

	slog.Debug("activeagent initialized",
		"config", opts.configPath,
		"providers", manager.GetProviderNames(),
		"metrics_enabled", collector != nil,
		"tracing_enabled", tracer.Enabled(),
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		secrets:   secretManager,
		metrics:   collector,
		tracer:    tracer,
		providers: manager,
	}, nil
}

// Close shuts down providers and secret watchers and flushes pending spans.
func (a *app) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Join(a.providers.Close(), a.secrets.Close(), a.tracer.Shutdown(ctx))
}

// providerFor picks the provider a command talks to: the requested name,
// the only configured provider, or "ollama".
func (a *app) providerFor(requested string) (string, error) {
	names := a.providers.GetProviderNames()
	switch {
	case requested != "":
		if _, err := a.providers.GetProvider(requested); err != nil {
			return "", cli.NewConfigError("provider", fmt.Sprintf("provider %q is not configured (available: %v)", requested, names))
		}
		return requested, nil
	case len(names) == 1:
		return names[0], nil
	}

	if i := sort.SearchStrings(names, config.ProviderTypeOllama); i < len(names) && names[i] == config.ProviderTypeOllama {
		return config.ProviderTypeOllama, nil
	}
	return "", cli.NewConfigError("provider", fmt.Sprintf("several providers are configured, choose one with --provider: %v", names))
}

// startRequest tags ctx with a fresh request ID and the provider name and
// opens a span for operation, so the log lines and request spans of one
// call can be correlated. The caller ends the span.
func (a *app) startRequest(ctx context.Context, operation, provider string) (context.Context, trace.Span) {
	requestID := uuid.NewString()
	ctx = logging.WithProvider(logging.WithRequestID(ctx, requestID), provider)

	ctx, span := a.tracer.Start(ctx, operation, trace.WithAttributes(
		attribute.String(tracing.AttrProvider, provider),
		attribute.String(tracing.AttrRequestID, requestID),
	))
	if id := tracing.TraceID(ctx); id != "" {
		ctx = logging.WithTraceID(ctx, id)
	}
	return ctx, span
}

// loadApp builds the app from the global flags.
func loadApp(ctx context.Context, logWriter io.Writer) (*app, error) {
	return newApp(ctx, appOptions{
		configPath:       cfgFile,
		defaultIfMissing: !rootCmd.PersistentFlags().Changed("config"),
		verbose:          verbose,
		logWriter:        logWriter,
	})
}

// loadConfig reads opts.configPath. An explicitly named file must exist; the
// default path may be absent, in which case a single local ollama provider
// is configured.
func loadConfig(opts appOptions) (*config.Config, error) {
	if opts.defaultIfMissing {
		if _, err := os.Stat(opts.configPath); errors.Is(err, fs.ErrNotExist) {
			return config.LoadDefaultWithEnvOverrides(opts.getenv)
		}
	}
	return config.LoadConfigWithEnvOverrides(opts.configPath, opts.getenv)
}
