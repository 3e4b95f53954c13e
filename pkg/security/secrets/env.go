package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider loads secrets from environment variables.
//
// Secret names are converted to uppercase variable names with hyphens
// replaced by underscores, then prefixed:
//
//	"ollama-api-key" -> "ACTIVEAGENT_SECRET_OLLAMA_API_KEY" (prefix "ACTIVEAGENT_SECRET_")
//	"OLLAMA_API_KEY" -> "OLLAMA_API_KEY" (no prefix)
type EnvProvider struct {
	Prefix string

	lookup  func(string) (string, bool)
	environ func() []string
}

// EnvOption configures an EnvProvider.
type EnvOption func(*EnvProvider)

// WithLookupEnv replaces os.LookupEnv and os.Environ, typically with a
// fixed map in tests.
func WithLookupEnv(lookup func(string) (string, bool), environ func() []string) EnvOption {
	return func(p *EnvProvider) {
		p.lookup = lookup
		if environ != nil {
			p.environ = environ
		}
	}
}

// NewEnvProvider creates a new environment variable secret provider.
func NewEnvProvider(prefix string, opts ...EnvOption) *EnvProvider {
	p := &EnvProvider{
		Prefix:  prefix,
		lookup:  os.LookupEnv,
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MapEnv returns lookup and environ functions backed by env.
func MapEnv(env map[string]string) (func(string) (string, bool), func() []string) {
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	environ := func() []string {
		out := make([]string, 0, len(env))
		for k, v := range env {
			out = append(out, k+"="+v)
		}
		return out
	}
	return lookup, environ
}

// GetSecret retrieves a secret from an environment variable. Unset and
// empty variables are both reported as not found.
func (p *EnvProvider) GetSecret(ctx context.Context, name string) (string, error) {
	envVar := p.secretNameToEnvVar(name)

	value, ok := p.lookup(envVar)
	if !ok || value == "" {
		return "", fmt.Errorf("%w in environment: %s (env var: %s)", ErrSecretNotFound, name, envVar)
	}
	return value, nil
}

// ListSecrets returns the secret names of all variables carrying the prefix.
// Without a prefix nothing is listed, since every variable would match.
func (p *EnvProvider) ListSecrets(ctx context.Context) ([]string, error) {
	if p.Prefix == "" {
		return nil, nil
	}

	var secrets []string
	for _, env := range p.environ() {
		key, _, found := strings.Cut(env, "=")
		if !found || !strings.HasPrefix(key, p.Prefix) {
			continue
		}
		secrets = append(secrets, p.envVarToSecretName(key))
	}
	return secrets, nil
}

// Provider returns the provider name.
func (p *EnvProvider) Provider() string {
	return "env"
}

// Supports always returns true so the environment can act as a fallback.
func (p *EnvProvider) Supports(name string) bool {
	return true
}

func (p *EnvProvider) secretNameToEnvVar(name string) string {
	return p.Prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func (p *EnvProvider) envVarToSecretName(envVar string) string {
	name := strings.TrimPrefix(envVar, p.Prefix)
	return strings.ToLower(strings.ReplaceAll(name, "_", "-"))
}
