// Package tracing records OpenTelemetry spans for outbound provider calls.
//
// A Tracer is built from the telemetry.tracing configuration. When tracing
// is disabled it hands out noop spans and Transport returns the wrapped
// RoundTripper unchanged.
//
// # Outbound requests
//
// Transport wraps the HTTP transport of a provider. Every request gets a
// client span and a W3C traceparent header, so a collector can join the
// activeagent span with the one recorded by the model server:
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	manager := providerfactory.NewManager(
//		providerfactory.WithTransportMiddleware(tracer.Transport),
//	)
//
// # Sampling
//
// Samplers are "always", "never" and "ratio". All of them are parent based,
// so a sampled command span keeps its request spans.
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: localhost:4317
//	    sampler: ratio
//	    sample_ratio: 0.25
//	    otlp:
//	      insecure: true
package tracing
