// Package metrics exports provider metrics to Prometheus.
//
// A Collector is a providers.RequestObserver: pass it to a provider and
// every completion, stream, embedding and health check is counted, timed
// and classified by error type.
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	provider, err := ollama.NewProvider(settings, ollama.WithObserver(collector))
//
//	http.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
package metrics
