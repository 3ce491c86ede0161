// Package llm provides the language model client used by the optimizer and
// helpers for pulling JSON out of model responses.
package llm

import "time"

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// Defaults for the Gemini provider.
const (
	DefaultModel       = "gemini-2.0-flash"
	DefaultTemperature = float32(0.3)
	DefaultTimeout     = 60 * time.Second
)

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Model       string
	Temperature float32
	// MaxOutputTokens of zero leaves the provider default in place.
	MaxOutputTokens int32
	// Timeout bounds a single generation call.
	Timeout time.Duration
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderGemini,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
	}
}

// WithModel returns a copy of c using model.
func (c *Config) WithModel(model string) *Config {
	cp := *c
	cp.Model = model
	return &cp
}

func (c *Config) withDefaults() *Config {
	cp := *c
	if cp.Provider == "" {
		cp.Provider = ProviderGemini
	}
	if cp.Model == "" {
		cp.Model = DefaultModel
	}
	if cp.Timeout <= 0 {
		cp.Timeout = DefaultTimeout
	}
	return &cp
}
