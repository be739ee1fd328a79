package config

// Config represents the main Mathwise configuration
type Config struct {
	// HTTP server
	Server ServerConfig `json:"server" mapstructure:"server"`

	// LLM provider
	AI AIConfig `json:"ai" mapstructure:"ai"`

	// Pipeline behavior
	Pipeline PipelineConfig `json:"pipeline" mapstructure:"pipeline"`

	// Knowledge base
	Knowledge KnowledgeConfig `json:"knowledge" mapstructure:"knowledge"`

	// Session retention
	Retention RetentionConfig `json:"retention" mapstructure:"retention"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host               string `json:"host" mapstructure:"host"`
	Port               int    `json:"port" mapstructure:"port"`
	RateLimitPerMinute int    `json:"rate_limit_per_minute" mapstructure:"rate_limit_per_minute"`
}

// AIConfig holds LLM provider configuration
type AIConfig struct {
	Provider        string  `json:"provider" mapstructure:"provider"` // openai, anthropic
	Model           string  `json:"model" mapstructure:"model"`
	OpenAIAPIKey    string  `json:"openai_api_key" mapstructure:"openai_api_key"`
	AnthropicAPIKey string  `json:"anthropic_api_key" mapstructure:"anthropic_api_key"`
	Temperature     float64 `json:"temperature" mapstructure:"temperature"`
	MaxTokens       int     `json:"max_tokens" mapstructure:"max_tokens"`
}

// PipelineConfig holds pipeline runner and approval gate configuration
type PipelineConfig struct {
	ResearchTimeoutSeconds int      `json:"research_timeout_seconds" mapstructure:"research_timeout_seconds"`
	SolveTimeoutSeconds    int      `json:"solve_timeout_seconds" mapstructure:"solve_timeout_seconds"`
	ApprovalTokens         []string `json:"approval_tokens" mapstructure:"approval_tokens"`
}

// KnowledgeConfig holds knowledge base configuration
type KnowledgeConfig struct {
	Enabled        bool   `json:"enabled" mapstructure:"enabled"`
	DBPath         string `json:"db_path" mapstructure:"db_path"`
	SeedDir        string `json:"seed_dir" mapstructure:"seed_dir"`
	WatchSeeds     bool   `json:"watch_seeds" mapstructure:"watch_seeds"`
	EmbeddingModel string `json:"embedding_model" mapstructure:"embedding_model"`
}

// RetentionConfig holds session retention configuration
type RetentionConfig struct {
	AgeHours    int    `json:"age_hours" mapstructure:"age_hours"`
	Schedule    string `json:"schedule" mapstructure:"schedule"` // cron expression
	ArchivePath string `json:"archive_path" mapstructure:"archive_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `json:"level" mapstructure:"level"`
	File    string `json:"file" mapstructure:"file"`
	Console bool   `json:"console" mapstructure:"console"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			RateLimitPerMinute: 100,
		},
		AI: AIConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			MaxTokens:   4096,
		},
		Pipeline: PipelineConfig{
			ResearchTimeoutSeconds: 30,
			SolveTimeoutSeconds:    120,
		},
		Knowledge: KnowledgeConfig{
			Enabled:        true,
			WatchSeeds:     true,
			EmbeddingModel: "text-embedding-3-small",
		},
		Retention: RetentionConfig{
			AgeHours: 7 * 24,
			Schedule: "@hourly",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			Pretty:  true,
		},
	}
}
