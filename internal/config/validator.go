package config

import (
	"fmt"
	"strings"
)

var validProviders = []string{"openai", "anthropic"}

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the whole configuration and returns the first problem
// found.
func (v *Validator) Validate(cfg *Config) error {
	if err := v.ValidateProvider(cfg.AI.Provider); err != nil {
		return err
	}
	if cfg.AI.Model == "" {
		return fmt.Errorf("ai model cannot be empty")
	}
	if err := v.ValidateAPIKey(cfg); err != nil {
		return err
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", cfg.Server.Port)
	}
	if cfg.Pipeline.ResearchTimeoutSeconds < 0 || cfg.Pipeline.SolveTimeoutSeconds < 0 {
		return fmt.Errorf("pipeline timeouts cannot be negative")
	}
	if cfg.Retention.AgeHours < 0 {
		return fmt.Errorf("retention age cannot be negative")
	}
	return nil
}

// ValidateProvider checks the provider name
func (v *Validator) ValidateProvider(provider string) error {
	for _, p := range validProviders {
		if provider == p {
			return nil
		}
	}
	return fmt.Errorf("unknown provider %q (valid: %s)", provider, strings.Join(validProviders, ", "))
}

// ValidateAPIKey checks that the configured provider has a key with the
// expected format
func (v *Validator) ValidateAPIKey(cfg *Config) error {
	switch cfg.AI.Provider {
	case "anthropic":
		if cfg.AI.AnthropicAPIKey == "" {
			return fmt.Errorf("anthropic API key cannot be empty")
		}
		if !strings.HasPrefix(cfg.AI.AnthropicAPIKey, "sk-ant-") {
			return fmt.Errorf("invalid Anthropic API key format (should start with sk-ant-)")
		}
	case "openai":
		if cfg.AI.OpenAIAPIKey == "" {
			return fmt.Errorf("openai API key cannot be empty")
		}
		if !strings.HasPrefix(cfg.AI.OpenAIAPIKey, "sk-") {
			return fmt.Errorf("invalid OpenAI API key format (should start with sk-)")
		}
	}
	return nil
}
