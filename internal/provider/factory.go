package provider

import (
	"context"
	"fmt"

	"github.com/tara-vision/codedoctor/internal/log"
)

// New creates a new provider based on the vendor configuration
// If vendor is empty or "auto", it will auto-detect the provider type
func New(ctx context.Context, host, vendor, apiKey string, opts ...Option) (Provider, error) {
	providerType := ParseVendorConfig(vendor)

	if providerType == TypeUnknown {
		if host == "" {
			return nil, fmt.Errorf("host is required when vendor is %q", vendor)
		}
		providerType = Detect(ctx, host)
		log.Component("provider").Debug("detected provider", "host", host, "type", providerType)
	}

	return NewWithType(providerType, host, apiKey, opts...)
}

// NewWithType creates a provider with an explicit type (no auto-detection)
func NewWithType(providerType Type, host, apiKey string, opts ...Option) (Provider, error) {
	if host == "" && providerType.Hosted() {
		host = DefaultHost(providerType)
	}
	if host == "" {
		return nil, fmt.Errorf("host is required for %s", providerType.DisplayName())
	}

	switch providerType {
	case TypeOpenAI:
		return NewOpenAIProvider(host, apiKey, opts...), nil
	case TypeAnthropic:
		return NewAnthropicProvider(host, apiKey, opts...), nil
	case TypeOllama:
		return NewOllamaProvider(host, apiKey, opts...), nil
	case TypeLlamaCpp:
		return NewLlamaCppProvider(host, apiKey, opts...), nil
	default:
		// vLLM is the most broadly compatible OpenAI-style server
		return NewVLLMProvider(host, apiKey, opts...), nil
	}
}
