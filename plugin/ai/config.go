package ai

import (
	"errors"
	"time"

	"github.com/hrygo/smartrouter/internal/profile"
)

// DefaultSystemPrompt is used when a generation request carries no system prompt.
const DefaultSystemPrompt = "You are a helpful assistant. Provide clear, accurate, and concise answers."

// Config represents the LLM gateway configuration.
type Config struct {
	APIKey       string
	BaseURL      string
	DefaultModel string        // used when a request names no model
	Temperature  float32       // generation temperature, default: 0.7
	Timeout      time.Duration // transport timeout, default: 60s
}

// NewConfigFromProfile creates gateway config from profile.
// The fast tier is the default generation model.
func NewConfigFromProfile(p *profile.Profile) *Config {
	return &Config{
		APIKey:       p.APIKey,
		BaseURL:      p.APIBaseURL,
		DefaultModel: p.FastModel,
		Temperature:  0.7,
		Timeout:      p.RequestTimeout,
	}
}

// Validate validates the gateway configuration.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("llm: API key is required")
	}
	if c.DefaultModel == "" {
		return errors.New("llm: default model is required")
	}
	return nil
}
