// Package llm drafts reply text through an OpenAI-compatible chat
// endpoint (typically a local ollama) with retry, error
// classification, and response sanitization. A nil provider is a
// supported state: the composer then always narrates.
package llm

import (
	"time"

	"github.com/pkg/errors"

	"github.com/vishalnagda1/outlook-mail-responder/internal/profile"
)

// Defaults matching the local-ollama deployment this responder was
// built against.
const (
	DefaultBaseURL     = "http://localhost:11434/v1"
	DefaultModel       = "llama3.1:8b"
	DefaultMaxRetries  = 3
	DefaultTimeout     = 15 * time.Second
	DefaultTemperature = 0.6
	DefaultTopP        = 0.9
	DefaultMaxTokens   = 1024
)

// Config holds the LLM provider configuration.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxRetries  int
	Timeout     time.Duration
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		MaxRetries:  DefaultMaxRetries,
		Timeout:     DefaultTimeout,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		MaxTokens:   DefaultMaxTokens,
	}
}

// NewConfigFromProfile builds the provider config from the profile.
// Returns nil when LLM drafting is disabled.
func NewConfigFromProfile(p *profile.Profile) *Config {
	if !p.IsLLMEnabled() {
		return nil
	}
	cfg := DefaultConfig()
	cfg.BaseURL = p.LLMBaseURL
	cfg.APIKey = p.LLMAPIKey
	if p.LLMModel != "" {
		cfg.Model = p.LLMModel
	}
	return cfg
}

// Validate checks the configuration before a provider is constructed.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("llm base URL is required")
	}
	if c.Model == "" {
		return errors.New("llm model is required")
	}
	if c.MaxRetries < 1 {
		return errors.New("llm max retries must be at least 1")
	}
	if c.Timeout <= 0 {
		return errors.New("llm timeout must be positive")
	}
	return nil
}
