// Package secrets resolves provider credentials from pluggable sources.
package secrets

import (
	"context"
	"errors"
)

// ErrSecretNotFound is returned when a provider holds no value for a name.
var ErrSecretNotFound = errors.New("secret not found")

// SecretProvider retrieves secrets from a backend.
type SecretProvider interface {
	// GetSecret retrieves a secret by name. A missing secret is reported
	// with an error wrapping ErrSecretNotFound.
	GetSecret(ctx context.Context, name string) (string, error)

	// ListSecrets returns all secret names available from this provider.
	// Values are never included.
	ListSecrets(ctx context.Context) ([]string, error)

	// Provider returns the provider name (env, file).
	Provider() string

	// Supports indicates if this provider may hold the given secret name.
	Supports(name string) bool
}

// RefreshableProvider can reload secrets without restart.
type RefreshableProvider interface {
	SecretProvider

	// Refresh drops any cached values so the next read hits the backend.
	Refresh(ctx context.Context) error
}
