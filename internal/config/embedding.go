package config

import (
	"fmt"
	"os"
	"time"
)

// EmbeddingConfig defines the remote embedding provider and its call budget.
type EmbeddingConfig struct {
	Provider      string        `mapstructure:"provider"`     // gemini, jina, openai
	Model         string        `mapstructure:"model"`        // provider model name
	APIKey        string        `mapstructure:"api_key"`      // set directly or via APIKeyEnv
	APIKeyEnv     string        `mapstructure:"api_key_env"`  // environment variable holding the key
	BaseURL       string        `mapstructure:"base_url"`     // override for proxies and compatible gateways
	Timeout       time.Duration `mapstructure:"timeout"`      // per attempt
	MaxAttempts   int           `mapstructure:"max_attempts"` // total attempts, not retries
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	MaxInputChars int           `mapstructure:"max_input_chars"`
}

// providerKeyEnv is where each provider's key is looked up when APIKeyEnv is unset.
var providerKeyEnv = map[string]string{
	"gemini": "GEMINI_API_KEY",
	"jina":   "JINA_API_KEY",
	"openai": "OPENAI_API_KEY",
}

// ResolveEnvVars fills APIKey from the environment.
// A key set directly takes precedence.
func (c *EmbeddingConfig) ResolveEnvVars() {
	if c.APIKey != "" {
		return
	}
	envName := c.APIKeyEnv
	if envName == "" {
		envName = providerKeyEnv[c.Provider]
	}
	if envName == "" {
		return
	}
	if val := os.Getenv(envName); val != "" {
		c.APIKey = val
		c.APIKeyEnv = envName
	}
}

// Validate checks that the embedding configuration has all required fields.
// The API key is not required here so that offline commands can still start.
func (c *EmbeddingConfig) Validate() error {
	switch c.Provider {
	case "gemini", "jina", "openai":
	case "":
		return fmt.Errorf("embedding: provider is required")
	default:
		return fmt.Errorf("embedding: unknown provider %q", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("embedding %q: model is required", c.Provider)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("embedding %q: max_attempts must be positive", c.Provider)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("embedding %q: timeout must be positive", c.Provider)
	}
	if c.MaxInputChars <= 0 {
		return fmt.Errorf("embedding %q: max_input_chars must be positive", c.Provider)
	}
	return nil
}

// ValidateWithAPIKey validates the configuration including the API key.
// Use this when the provider will actually be called.
func (c *EmbeddingConfig) ValidateWithAPIKey() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		envName := c.APIKeyEnv
		if envName == "" {
			envName = providerKeyEnv[c.Provider]
		}
		return fmt.Errorf("embedding %q: api_key is required (set directly or via %s)", c.Provider, envName)
	}
	return nil
}
