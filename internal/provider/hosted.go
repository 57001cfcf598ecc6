package provider

import (
	"context"
)

const (
	openAIHost    = "https://api.openai.com"
	anthropicHost = "https://api.anthropic.com"

	// DefaultOpenAIModel is used when no model is configured for OpenAI.
	DefaultOpenAIModel = "gpt-4o"
	// DefaultAnthropicModel is used when no model is configured for Anthropic.
	// Override with WithDefaultModel; hosted model ids are retired over time.
	DefaultAnthropicModel = "claude-sonnet-4-5"
)

// DefaultHost returns the fixed endpoint of a hosted provider, or "".
func DefaultHost(t Type) string {
	switch t {
	case TypeOpenAI:
		return openAIHost
	case TypeAnthropic:
		return anthropicHost
	default:
		return ""
	}
}

// OpenAIProvider implements Provider for the OpenAI API
type OpenAIProvider struct {
	*BaseProvider
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(host, apiKey string, opts ...Option) *OpenAIProvider {
	return &OpenAIProvider{BaseProvider: NewBaseProvider(TypeOpenAI, host, apiKey, opts...)}
}

// DetectModels returns the default model. The hosted catalogue is not
// ordered, so the first listed model would be arbitrary.
func (p *OpenAIProvider) DetectModels(ctx context.Context) ([]string, error) {
	p.info.Models = []string{p.hostedModel(DefaultOpenAIModel)}
	return p.info.Models, nil
}

// AnthropicProvider implements Provider for Anthropic's OpenAI-compatible
// endpoint.
type AnthropicProvider struct {
	*BaseProvider
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(host, apiKey string, opts ...Option) *AnthropicProvider {
	return &AnthropicProvider{BaseProvider: NewBaseProvider(TypeAnthropic, host, apiKey, opts...)}
}

// DetectModels returns the default model
func (p *AnthropicProvider) DetectModels(ctx context.Context) ([]string, error) {
	p.info.Models = []string{p.hostedModel(DefaultAnthropicModel)}
	return p.info.Models, nil
}
