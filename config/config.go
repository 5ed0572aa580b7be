// Package config loads runtime configuration from an optional YAML file
// overlaid with environment variables. Environment values win, so deployed
// credentials never need to live on disk.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider selects which language-model backend a run uses.
type Provider string

const (
	// ProviderAnthropic selects the Anthropic messages API.
	ProviderAnthropic Provider = "anthropic"
	// ProviderOpenAI selects the OpenAI chat completions API.
	ProviderOpenAI Provider = "openai"
	// ProviderMock selects the in-process mock model; no credentials needed.
	ProviderMock Provider = "mock"
)

// Config is the full runtime configuration.
type Config struct {
	// Provider names the model backend. Defaults to anthropic.
	Provider Provider `yaml:"provider"`

	// Model overrides the backend's default model identifier.
	Model string `yaml:"model"`

	// MaxIterations bounds the review/revision loop. Defaults to 3.
	MaxIterations int `yaml:"max_iterations"`

	// ApprovalThreshold is the minimum review quality score for approval.
	// Zero means use the reviewer default.
	ApprovalThreshold float64 `yaml:"approval_threshold"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level"`

	// Credentials for the external services.
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	SearchAPIKey    string `yaml:"search_api_key"`

	// SearchBaseURL overrides the search API endpoint, mainly for tests.
	SearchBaseURL string `yaml:"search_base_url"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Provider:      ProviderAnthropic,
		MaxIterations: 3,
		LogLevel:      "info",
	}
}

// Load reads the YAML file at path (skipped when path is "" or the file does
// not exist) and overlays environment variables on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Optional file; fall through to env overlay.
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("RESEARCHMESH_PROVIDER"); v != "" {
		c.Provider = Provider(strings.ToLower(v))
	}
	if v := os.Getenv("RESEARCHMESH_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("RESEARCHMESH_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.AnthropicAPIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAIAPIKey = v
	}
	if v := os.Getenv("SEARCH_API_KEY"); v != "" {
		c.SearchAPIKey = v
	}
}

// Validate reports configuration that cannot produce a working run.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderMock:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1, got %d", c.MaxIterations)
	}
	if c.ApprovalThreshold < 0 || c.ApprovalThreshold > 1 {
		return fmt.Errorf("approval_threshold must be in [0, 1], got %v", c.ApprovalThreshold)
	}
	if c.Provider == ProviderAnthropic && c.AnthropicAPIKey == "" {
		return fmt.Errorf("anthropic provider selected but no API key configured")
	}
	if c.Provider == ProviderOpenAI && c.OpenAIAPIKey == "" {
		return fmt.Errorf("openai provider selected but no API key configured")
	}
	return nil
}
