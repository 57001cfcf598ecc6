package provider

import (
	"context"
)

// VLLMProvider implements Provider for vLLM servers
type VLLMProvider struct {
	*BaseProvider
}

// NewVLLMProvider creates a new vLLM provider
func NewVLLMProvider(host, apiKey string, opts ...Option) *VLLMProvider {
	return &VLLMProvider{BaseProvider: NewBaseProvider(TypeVLLM, host, apiKey, opts...)}
}

// DetectModels queries available models from the vLLM server
func (p *VLLMProvider) DetectModels(ctx context.Context) ([]string, error) {
	return p.DetectModelsOpenAI(ctx)
}
