package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.AI.OpenAIAPIKey = "sk-test-key"
	return cfg
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with key", func(c *Config) {}, false},
		{"anthropic provider", func(c *Config) {
			c.AI.Provider = "anthropic"
			c.AI.Model = "claude-sonnet-4-20250514"
			c.AI.AnthropicAPIKey = "sk-ant-test-key"
		}, false},
		{"unknown provider", func(c *Config) { c.AI.Provider = "cohere" }, true},
		{"empty model", func(c *Config) { c.AI.Model = "" }, true},
		{"missing openai key", func(c *Config) { c.AI.OpenAIAPIKey = "" }, true},
		{"bad openai key prefix", func(c *Config) { c.AI.OpenAIAPIKey = "pk-wrong" }, true},
		{"bad anthropic key prefix", func(c *Config) {
			c.AI.Provider = "anthropic"
			c.AI.AnthropicAPIKey = "sk-wrong"
		}, true},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"negative research timeout", func(c *Config) { c.Pipeline.ResearchTimeoutSeconds = -1 }, true},
		{"negative retention", func(c *Config) { c.Retention.AgeHours = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := v.Validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, 30, cfg.Pipeline.ResearchTimeoutSeconds)
	assert.Equal(t, 120, cfg.Pipeline.SolveTimeoutSeconds)
	assert.True(t, cfg.Knowledge.Enabled)
	assert.Equal(t, 7*24, cfg.Retention.AgeHours)
	assert.Equal(t, "@hourly", cfg.Retention.Schedule)
}
