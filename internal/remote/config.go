package remote

import (
	"fmt"
	"time"

	"github.com/finantah/credit-simulator/pkg/constants"
)

// ProviderType names a hosted model provider.
type ProviderType string

const (
	ProviderNone   ProviderType = ""
	ProviderClaude ProviderType = "claude"
	ProviderGemini ProviderType = "gemini"
)

// Config selects and tunes the remote provider.
type Config struct {
	Provider    ProviderType `yaml:"provider,omitempty"`
	Model       string       `yaml:"model,omitempty"`
	Timeout     string       `yaml:"timeout,omitempty"`
	MaxTokens   int          `yaml:"maxTokens,omitempty"`
	Temperature float64      `yaml:"temperature,omitempty"`
	MaxAttempts int          `yaml:"maxAttempts,omitempty"`
}

// APIKeys holds provider credentials. They are read from the environment,
// never from configuration files.
type APIKeys struct {
	Anthropic string
	Gemini    string
}

// Enabled reports whether a provider has been selected.
func (c Config) Enabled() bool {
	return c.Provider != ProviderNone
}

// WithDefaults fills every unset field.
func (c Config) WithDefaults() Config {
	if c.Model == "" {
		switch c.Provider {
		case ProviderClaude:
			c.Model = constants.DefaultClaudeModel
		case ProviderGemini:
			c.Model = constants.DefaultGeminiModel
		}
	}
	if c.Timeout == "" {
		c.Timeout = constants.DefaultRemoteTimeout
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = constants.DefaultRemoteMaxTokens
	}
	if c.Temperature <= 0 {
		c.Temperature = constants.DefaultRemoteTemperature
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = constants.DefaultRemoteMaxAttempts
	}
	return c
}

// Validate checks the provider name and the timeout.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderNone, ProviderClaude, ProviderGemini:
	default:
		return fmt.Errorf("unknown remote provider %q, expected %s or %s", c.Provider, ProviderClaude, ProviderGemini)
	}
	if c.Timeout != "" {
		if _, err := c.TimeoutDuration(); err != nil {
			return err
		}
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("remote temperature %g must be between 0 and 1", c.Temperature)
	}
	return nil
}

// TimeoutDuration parses the per-call timeout.
func (c Config) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid remote timeout '%s': %w", c.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("remote timeout must be positive, got %s", c.Timeout)
	}
	return d, nil
}
