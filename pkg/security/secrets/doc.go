/*
Package secrets resolves provider credentials from pluggable sources.

# Providers

  - EnvProvider reads environment variables, optionally prefixed. Its
    lookup can be replaced for tests with WithLookupEnv.
  - FileProvider reads one file per secret from a directory and can watch
    it with fsnotify, dropping cached values when files change.

A Manager chains providers with ordered fallback and a TTL cache:

	manager, err := secrets.NewManagerFromConfig(cfg.Secrets)
	if err != nil {
		return err
	}
	defer manager.Close()

	key, err := manager.GetSecret(ctx, "openai-api-key")

# Credential Resolution

Provider adapters never read the environment themselves. They take a
resolver function instead:

	provider, err := ollama.NewProvider(settings,
		ollama.WithCredentialResolver(manager.Resolver(ctx)))

EnvResolver is the zero-configuration resolver over the process
environment.

# Secret References

Configuration values may reference secrets with ${secret:name}:

	resolved, err := manager.ResolveReferences(ctx, "${secret:openai-api-key}")

ResolveConfig applies this to every provider's api_key and settings.
*/
package secrets
