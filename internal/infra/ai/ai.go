// Package ai provides the external AI classification capability behind a
// narrow Provider interface. Any backend may implement it; the classifier
// never blocks indefinitely waiting on one.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotConfigured is returned when the configured provider is missing
// required settings. Classification then runs on the fallback tier only.
var ErrNotConfigured = errors.New("ai provider not configured")

// Provider generates a completion for a prompt. Implementations must
// return parseable text or an error; they never block past their timeout.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config selects and configures the AI backend.
type Config struct {
	Provider   string        `yaml:"provider"` // azure_openai, ollama
	Endpoint   string        `yaml:"endpoint"`
	APIKey     string        `yaml:"api_key"`
	Deployment string        `yaml:"deployment"` // azure_openai only
	APIVersion string        `yaml:"api_version"`
	Model      string        `yaml:"model"` // ollama only
	Timeout    time.Duration `yaml:"timeout"`
}

// New creates the configured provider.
func New(cfg Config) (Provider, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	switch strings.ToLower(cfg.Provider) {
	case "azure_openai":
		if cfg.Endpoint == "" || cfg.APIKey == "" {
			return nil, ErrNotConfigured
		}
		return NewAzureOpenAI(cfg.Endpoint, cfg.APIKey, cfg.Deployment, cfg.APIVersion, timeout), nil
	case "ollama":
		if cfg.Endpoint == "" {
			return nil, ErrNotConfigured
		}
		return NewOllama(cfg.Endpoint, cfg.Model, timeout), nil
	case "":
		return nil, ErrNotConfigured
	default:
		return nil, fmt.Errorf("unknown ai provider: %s", cfg.Provider)
	}
}

// StripFences removes markdown code fences some models wrap around JSON.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
