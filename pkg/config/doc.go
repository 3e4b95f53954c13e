// Package config loads activeagent configuration.
//
// Configuration is read from a YAML file and optionally overlaid with
// environment variables:
//
//	cfg, err := config.LoadConfig("activeagent.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("activeagent.yaml", nil)
//
// # Environment Variable Overrides
//
// Variables follow the naming convention ACTIVEAGENT_SECTION_FIELD:
//
//   - ACTIVEAGENT_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//   - ACTIVEAGENT_PROVIDERS_OLLAMA_HOST overrides providers.ollama.settings.host
//   - ACTIVEAGENT_PROVIDERS_OPENAI_API_KEY overrides providers.openai.api_key
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation, which reports every invalid field at once
//
// # Example
//
//	providers:
//	  ollama:
//	    type: ollama
//	    settings:
//	      model: gemma3:latest
//	      embedding_model: nomic-embed-text
//	telemetry:
//	  logging: {level: info, format: json}
//	  metrics: {enabled: true}
//	secrets:
//	  providers:
//	    - {type: env}
//	    - {type: file, path: /var/secrets, watch: true}
package config
