package ollama

import (
	"strconv"
	"strings"
	"time"

	"github.com/nicolangr/activeagent/pkg/providers"
)

// Default connection settings for a local Ollama server.
const (
	DefaultHost           = "http://localhost:11434"
	DefaultAPIVersion     = "v1"
	DefaultEmbeddingModel = "nomic-embed-text"
	DefaultName           = "ollama"
	DefaultMaxRetries     = 1
)

// TokenEnvNames are the credential names consulted, in order, when the
// configuration holds no token.
var TokenEnvNames = []string{"OLLAMA_API_KEY", "OLLAMA_ACCESS_TOKEN"}

// Config keys understood by NewProvider.
const (
	KeyService        = "service"
	KeyName           = "name"
	KeyModel          = "model"
	KeyHost           = "host"
	KeyAPIVersion     = "api_version"
	KeyAPIKey         = "api_key"
	KeyAccessToken    = "access_token"
	KeyEmbeddingModel = "embedding_model"
	KeyTimeout        = "timeout"
	KeyMaxRetries     = "max_retries"

	KeyHealthCheckInterval = "health_check_interval"
)

// Config is the provider's string-keyed configuration. Absent and empty
// values are equivalent.
type Config map[string]string

func (c Config) get(key string) string {
	return strings.TrimSpace(c[key])
}

// CredentialResolver looks up the first of names that has a non-empty value.
type CredentialResolver func(names ...string) (string, bool)

// Settings are the values resolved at construction time.
type Settings struct {
	Name           string
	Service        string
	Host           string
	APIVersion     string
	Model          string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int

	// HealthCheckInterval is zero unless configured, leaving the default
	// to the health checker.
	HealthCheckInterval time.Duration

	accessToken string
}

// BaseURL returns host joined with the API version.
func (s Settings) BaseURL() string {
	return strings.TrimSuffix(s.Host, "/") + "/" + strings.Trim(s.APIVersion, "/")
}

// HasAccessToken reports whether requests carry a bearer token.
func (s Settings) HasAccessToken() bool {
	return s.accessToken != ""
}

// resolveSettings applies the configuration precedence: explicit value,
// then resolver (token only), then default.
func resolveSettings(cfg Config, resolve CredentialResolver) (Settings, error) {
	s := Settings{
		Name:           firstNonEmpty(cfg.get(KeyName), DefaultName),
		Service:        cfg.get(KeyService),
		Host:           firstNonEmpty(cfg.get(KeyHost), DefaultHost),
		APIVersion:     firstNonEmpty(cfg.get(KeyAPIVersion), DefaultAPIVersion),
		Model:          cfg.get(KeyModel),
		EmbeddingModel: cfg.get(KeyEmbeddingModel),
		MaxRetries:     DefaultMaxRetries,
		accessToken:    firstNonEmpty(cfg.get(KeyAPIKey), cfg.get(KeyAccessToken)),
	}

	if s.accessToken == "" && resolve != nil {
		if token, ok := resolve(TokenEnvNames...); ok {
			s.accessToken = token
		}
	}

	if raw := cfg.get(KeyTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Settings{}, &providers.ConfigError{
				Provider: s.Name,
				Field:    KeyTimeout,
				Message:  "must be a positive duration such as 30s",
			}
		}
		s.Timeout = d
	}

	if raw := cfg.get(KeyMaxRetries); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Settings{}, &providers.ConfigError{
				Provider: s.Name,
				Field:    KeyMaxRetries,
				Message:  "must be a non-negative integer",
			}
		}
		s.MaxRetries = n
	}

	if raw := cfg.get(KeyHealthCheckInterval); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Settings{}, &providers.ConfigError{
				Provider: s.Name,
				Field:    KeyHealthCheckInterval,
				Message:  "must be a positive duration such as 1m",
			}
		}
		s.HealthCheckInterval = d
	}

	return s, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
