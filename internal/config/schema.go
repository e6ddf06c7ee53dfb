package config

// Config holds qextract configuration.
// Stored at: {home}/config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	LlamaParse   LlamaParseCfg             `mapstructure:"llamaparse" yaml:"llamaparse"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type       string `mapstructure:"type" yaml:"type"`                 // "openrouter", "openai"
	Model      string `mapstructure:"model" yaml:"model"`               // Model name
	APIKey     string `mapstructure:"api_key" yaml:"api_key"`           // API key (supports ${ENV_VAR} syntax)
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`         // Override endpoint (optional)
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`   // Per-request timeout
	MaxRetries int    `mapstructure:"max_retries" yaml:"max_retries"`
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
}

// LlamaParseCfg configures the document parsing service.
type LlamaParseCfg struct {
	APIKey          string `mapstructure:"api_key" yaml:"api_key"` // Supports ${ENV_VAR} syntax
	BaseURL         string `mapstructure:"base_url" yaml:"base_url"`
	PollIntervalSec int    `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
	MaxPolls        int    `mapstructure:"max_polls" yaml:"max_polls"`
	DownloadImages  bool   `mapstructure:"download_images" yaml:"download_images"`
}

// DefaultsCfg specifies default pipeline behavior.
type DefaultsCfg struct {
	LLMProvider string `mapstructure:"llm_provider" yaml:"llm_provider"` // Default LLM provider name
	MaxWorkers  int    `mapstructure:"max_workers" yaml:"max_workers"`   // Max concurrent documents
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:       "openrouter",
				Model:      "anthropic/claude-3.5-sonnet",
				APIKey:     "${OPENROUTER_API_KEY}",
				TimeoutSec: 300,
				MaxRetries: 3,
				Enabled:    true,
			},
			"openai": {
				Type:       "openai",
				Model:      "gpt-4o",
				APIKey:     "${OPENAI_API_KEY}",
				TimeoutSec: 300,
				MaxRetries: 3,
				Enabled:    false,
			},
		},
		LlamaParse: LlamaParseCfg{
			APIKey:          "${LLAMA_CLOUD_API_KEY}",
			PollIntervalSec: 5,
			MaxPolls:        60,
			DownloadImages:  true,
		},
		Defaults: DefaultsCfg{
			LLMProvider: "openrouter",
			MaxWorkers:  2,
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
