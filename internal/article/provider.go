package article

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Provider identifies an OpenAI-compatible chat completion service.
type Provider string

// Supported providers.
const (
	OpenAI   Provider = "openai"
	DeepSeek Provider = "deepseek"
)

// Provider defaults.
const (
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultDeepSeekModel = "deepseek-chat"
	DeepSeekBaseURL      = "https://api.deepseek.com/v1"
)

// ParseProvider validates a provider name. Empty selects OpenAI.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return OpenAI, nil
	case OpenAI, DeepSeek:
		return p, nil
	default:
		return "", fmt.Errorf("unknown provider %q (use %s or %s): %w", s, OpenAI, DeepSeek, ErrUnknownProvider)
	}
}

// DefaultModel returns the chat model used when none is configured.
func (p Provider) DefaultModel() string {
	if p == DeepSeek {
		return DefaultDeepSeekModel
	}
	return DefaultOpenAIModel
}

// EnvKey returns the environment variable holding the provider API key.
func (p Provider) EnvKey() string {
	if p == DeepSeek {
		return "DEEPSEEK_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// NewClient builds a go-openai client for the provider.
// A non-empty baseURL overrides the provider endpoint (proxies, tests).
func NewClient(p Provider, apiKey, baseURL string) (*openai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %w", p.EnvKey(), ErrEmptyAPIKey)
	}
	cfg := openai.DefaultConfig(apiKey)
	if p == DeepSeek {
		cfg.BaseURL = DeepSeekBaseURL
	}
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return openai.NewClientWithConfig(cfg), nil
}
