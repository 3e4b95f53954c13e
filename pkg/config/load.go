package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "ACTIVEAGENT_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML and applies defaults without validating.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no file is given: a single
// ollama provider named "ollama" with every default applied.
func Default() *Config {
	cfg := &Config{
		Providers: map[string]ProviderConfig{
			ProviderTypeOllama: {Type: ProviderTypeOllama},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides read through getenv (os.Getenv when nil).
// Environment variables follow the naming convention ACTIVEAGENT_SECTION_FIELD
// and always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string, getenv func(string) string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return withEnvOverrides(cfg, getenv)
}

// LoadDefaultWithEnvOverrides returns Default with environment overrides
// applied, for running without a configuration file.
func LoadDefaultWithEnvOverrides(getenv func(string) string) (*Config, error) {
	return withEnvOverrides(Default(), getenv)
}

func withEnvOverrides(cfg *Config, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	ApplyEnvOverrides(cfg, getenv)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// ApplyEnvOverrides applies ACTIVEAGENT_* overrides to cfg.
func ApplyEnvOverrides(cfg *Config, getenv func(string) string) {
	if val := getenv(EnvPrefix + "TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := getenv(EnvPrefix + "TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := getenv(EnvPrefix + "TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := getenv(EnvPrefix + "TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := getenv(EnvPrefix + "TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}

	for name := range cfg.Providers {
		applyProviderEnvOverrides(cfg, name, getenv)
	}
}

// applyProviderEnvOverrides applies overrides for one configured provider.
// Variables follow the format ACTIVEAGENT_PROVIDERS_<NAME>_<FIELD> where
// NAME is the uppercase provider name with dashes replaced by underscores.
func applyProviderEnvOverrides(cfg *Config, name string, getenv func(string) string) {
	provider := cfg.Providers[name]
	prefix := EnvPrefix + "PROVIDERS_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_")) + "_"

	if val := getenv(prefix + "BASE_URL"); val != "" {
		provider.BaseURL = val
	}
	if val := getenv(prefix + "API_KEY"); val != "" {
		provider.APIKey = val
	}
	if val := getenv(prefix + "TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			provider.Timeout = d
		}
	}
	if val := getenv(prefix + "MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			provider.MaxRetries = i
		}
	}
	for _, key := range []string{"host", "model", "embedding_model", "api_version"} {
		if val := getenv(prefix + strings.ToUpper(key)); val != "" {
			if provider.Settings == nil {
				provider.Settings = make(map[string]string)
			}
			provider.Settings[key] = val
		}
	}

	cfg.Providers[name] = provider
}
