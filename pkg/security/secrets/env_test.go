package secrets

import (
	"context"
	"errors"
	"sort"
	"testing"
)

func newMapEnvProvider(prefix string, env map[string]string) *EnvProvider {
	lookup, environ := MapEnv(env)
	return NewEnvProvider(prefix, WithLookupEnv(lookup, environ))
}

func TestEnvProvider_GetSecret(t *testing.T) {
	provider := newMapEnvProvider("ACTIVEAGENT_SECRET_", map[string]string{
		"ACTIVEAGENT_SECRET_TEST_KEY": "test-value",
	})

	value, err := provider.GetSecret(context.Background(), "test-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "test-value" {
		t.Errorf("expected value 'test-value', got '%s'", value)
	}
}

func TestEnvProvider_GetSecret_NotFound(t *testing.T) {
	provider := newMapEnvProvider("", map[string]string{"EMPTY": ""})

	for _, name := range []string{"missing", "EMPTY"} {
		_, err := provider.GetSecret(context.Background(), name)
		if !errors.Is(err, ErrSecretNotFound) {
			t.Errorf("%s: expected ErrSecretNotFound, got %v", name, err)
		}
	}
}

func TestEnvProvider_SecretNameConversion(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		secretName string
		envVarName string
	}{
		{"simple name", "ACTIVEAGENT_SECRET_", "api-key", "ACTIVEAGENT_SECRET_API_KEY"},
		{"already upper", "", "OLLAMA_API_KEY", "OLLAMA_API_KEY"},
		{"mixed case", "", "Ollama-Access-Token", "OLLAMA_ACCESS_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newMapEnvProvider(tt.prefix, map[string]string{tt.envVarName: "v"})

			value, err := provider.GetSecret(context.Background(), tt.secretName)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if value != "v" {
				t.Errorf("expected 'v', got %q", value)
			}
		})
	}
}

func TestEnvProvider_ListSecrets(t *testing.T) {
	provider := newMapEnvProvider("ACTIVEAGENT_SECRET_", map[string]string{
		"ACTIVEAGENT_SECRET_OPENAI_KEY": "a",
		"ACTIVEAGENT_SECRET_OLLAMA_KEY": "b",
		"PATH":                          "/usr/bin",
	})

	secrets, err := provider.ListSecrets(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sort.Strings(secrets)

	want := []string{"ollama-key", "openai-key"}
	if len(secrets) != len(want) {
		t.Fatalf("expected %v, got %v", want, secrets)
	}
	for i := range want {
		if secrets[i] != want[i] {
			t.Errorf("expected %v, got %v", want, secrets)
		}
	}
}

func TestEnvProvider_ListSecrets_NoPrefix(t *testing.T) {
	provider := newMapEnvProvider("", map[string]string{"HOME": "/root"})

	secrets, err := provider.ListSecrets(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(secrets) != 0 {
		t.Errorf("expected nothing listed without a prefix, got %v", secrets)
	}
}

func TestEnvProvider_Metadata(t *testing.T) {
	provider := NewEnvProvider("")
	if provider.Provider() != "env" {
		t.Errorf("expected provider 'env', got %q", provider.Provider())
	}
	if !provider.Supports("anything") {
		t.Error("env provider should support every name")
	}
}

func TestEnvResolver(t *testing.T) {
	t.Setenv("ACTIVEAGENT_TEST_FIRST", "")
	t.Setenv("ACTIVEAGENT_TEST_SECOND", "second")

	value, ok := EnvResolver("ACTIVEAGENT_TEST_UNSET", "ACTIVEAGENT_TEST_FIRST", "ACTIVEAGENT_TEST_SECOND")
	if !ok || value != "second" {
		t.Errorf("expected (second, true), got (%q, %v)", value, ok)
	}

	if _, ok := EnvResolver("ACTIVEAGENT_TEST_UNSET"); ok {
		t.Error("expected no value for unset variable")
	}
}
