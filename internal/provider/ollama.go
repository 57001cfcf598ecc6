package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// OllamaProvider implements Provider for Ollama servers
type OllamaProvider struct {
	*BaseProvider
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider(host, apiKey string, opts ...Option) *OllamaProvider {
	return &OllamaProvider{BaseProvider: NewBaseProvider(TypeOllama, host, apiKey, opts...)}
}

// DetectModels queries available models from the Ollama server
// Tries OpenAI-compatible endpoint first, falls back to native /api/tags
func (p *OllamaProvider) DetectModels(ctx context.Context) ([]string, error) {
	models, err := p.DetectModelsOpenAI(ctx)
	if err == nil && len(models) > 0 {
		return models, nil
	}

	return p.detectModelsNative(ctx)
}

// detectModelsNative queries the Ollama-specific /api/tags endpoint
func (p *OllamaProvider) detectModelsNative(ctx context.Context) ([]string, error) {
	url := p.info.Host + "/api/tags"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, newTransportError("list models", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("list models", resp)
	}

	// Ollama /api/tags response format
	var tagsResp struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&tagsResp); err != nil {
		return nil, newTransportError("list models", fmt.Errorf("decode response: %w", err))
	}

	models := make([]string, 0, len(tagsResp.Models))
	for _, m := range tagsResp.Models {
		models = append(models, m.Name)
	}

	p.info.Models = models
	return models, nil
}
