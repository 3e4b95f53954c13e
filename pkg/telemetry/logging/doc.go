// Package logging builds the process-wide structured logger.
//
// Library packages log through the log/slog package-level functions; the
// command installs the configured logger once at startup:
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
// # Redaction
//
// With RedactSecrets set, string attributes whose key names a credential
// (api_key, access_token, Authorization, ...) keep only a four character
// prefix, and bearer tokens or sk- keys embedded in any other string or
// error are replaced:
//
//	slog.Info("request", "api_key", "sk-abc123xyz")  // api_key=sk-a***
//	slog.Error("failed", "error", err)              // "Bearer ***"
//
// # Context Fields
//
// Records logged with a context carrying WithRequestID or WithProvider
// include request_id and target_provider:
//
//	ctx = logging.WithRequestID(ctx, uuid.NewString())
//	slog.DebugContext(ctx, "sending request to provider")
package logging
