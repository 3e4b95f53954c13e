/*
Package security holds credential handling for activeagent.

# Secret Management

Provider tokens are looked up through secrets.Manager, which tries its
providers in order (environment variables, then a directory of secret
files) and optionally caches results:

	manager, err := secrets.NewManagerFromConfig(cfg.Secrets)
	if err != nil {
		return err
	}
	defer manager.Close()

	// Replace ${secret:name} references in the loaded configuration
	if err := manager.ResolveConfig(ctx, cfg); err != nil {
		return err
	}

	// Hand the Ollama adapter a resolver instead of letting it read the
	// environment itself
	provider, err := providerfactory.NewOllamaProvider("ollama", settings,
		providerfactory.WithCredentialResolver(manager.Resolver(ctx)))

Secret values are never logged; names are redacted in log messages.
*/
package security
