// Package telemetry groups the observability packages used by activeagent.
//
// # Components
//
//   - logging: structured slog logging with secret redaction and request IDs
//   - metrics: Prometheus metrics fed by provider request observations
//   - health: liveness and readiness checks over the configured providers
//   - tracing: OpenTelemetry client spans and trace propagation for provider calls
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
//	if err != nil {
//		return err
//	}
//	slog.SetDefault(logger)
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	manager := providerfactory.NewManager(
//		providerfactory.WithObserver(collector),
//		providerfactory.WithTransportMiddleware(tracer.Transport),
//	)
//
//	mux := http.NewServeMux()
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//	health.Register(mux, health.New(manager, 5*time.Second), health.VersionInfo{})
package telemetry
