package provider

import (
	"context"
)

// LlamaCppProvider implements Provider for llama.cpp servers (llama-server)
type LlamaCppProvider struct {
	*BaseProvider
}

// NewLlamaCppProvider creates a new llama.cpp provider
func NewLlamaCppProvider(host, apiKey string, opts ...Option) *LlamaCppProvider {
	return &LlamaCppProvider{BaseProvider: NewBaseProvider(TypeLlamaCpp, host, apiKey, opts...)}
}

// DetectModels queries available models from the llama.cpp server
// llama.cpp typically serves a single model, but supports /v1/models endpoint
func (p *LlamaCppProvider) DetectModels(ctx context.Context) ([]string, error) {
	return p.DetectModelsOpenAI(ctx)
}
