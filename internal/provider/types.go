package provider

import (
	"context"
)

// Type represents the LLM provider type
type Type string

const (
	TypeOpenAI    Type = "openai"
	TypeAnthropic Type = "anthropic"
	TypeVLLM      Type = "vllm"
	TypeOllama    Type = "ollama"
	TypeLlamaCpp  Type = "llama.cpp"
	TypeUnknown   Type = "unknown"
)

// String returns the string representation of the provider type
func (t Type) String() string {
	return string(t)
}

// DisplayName returns a human-readable name for the provider type
func (t Type) DisplayName() string {
	switch t {
	case TypeOpenAI:
		return "OpenAI"
	case TypeAnthropic:
		return "Anthropic"
	case TypeVLLM:
		return "vLLM"
	case TypeOllama:
		return "Ollama"
	case TypeLlamaCpp:
		return "llama.cpp"
	default:
		return "Unknown"
	}
}

// Hosted reports whether the type is a hosted API with a fixed endpoint.
func (t Type) Hosted() bool {
	return t == TypeOpenAI || t == TypeAnthropic
}

// Info holds provider metadata
type Info struct {
	Type    Type     // Provider type
	Name    string   // Display name (e.g., "Ollama")
	Host    string   // Base URL
	Model   string   // Selected model
	Models  []string // Available models
	APIPath string   // API path prefix (e.g., "/v1")
}

// Request is a single-turn completion request.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Usage reports token accounting returned by the server.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the text returned for a Request.
type Response struct {
	Text  string
	Model string
	Usage Usage
}

// Provider interface for LLM operations
type Provider interface {
	// Info returns provider metadata
	Info() *Info

	// DetectModels queries available models from the server
	DetectModels(ctx context.Context) ([]string, error)

	// Complete sends one prompt and returns the model's answer. Failures
	// are returned as *TransportError.
	Complete(ctx context.Context, req Request) (*Response, error)

	// SetModel sets the active model
	SetModel(model string)
}
