// Package health serves liveness and readiness checks over the configured
// providers.
//
// # Endpoints
//
//   - /healthz: liveness, 200 while the process runs
//   - /readyz: readiness, 200 only when every provider is healthy
//   - /version: build information
//
// # Usage
//
//	checker := health.New(manager, 5*time.Second)
//	mux := http.NewServeMux()
//	health.Register(mux, checker, health.VersionInfo{Version: "0.1.0"})
//
// Readiness reads the health each provider already tracks (consecutive
// failures from requests and background checks). WithLiveChecks switches
// to calling HealthCheck on every provider per request, bounded by the
// checker's timeout.
package health
