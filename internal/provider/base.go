package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/sashabaranov/go-openai"

	"github.com/tara-vision/codedoctor/internal/log"
)

const (
	defaultConnectTimeout = 10 * time.Second
	// DefaultCallTimeout bounds a single completion attempt.
	DefaultCallTimeout = 5 * time.Minute
)

// Option configures a provider at construction.
type Option func(*BaseProvider)

// WithCallTimeout sets the deadline applied to each completion attempt.
func WithCallTimeout(d time.Duration) Option {
	return func(p *BaseProvider) {
		if d > 0 {
			p.callTimeout = d
		}
	}
}

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(p *BaseProvider) { p.retry = policy }
}

// WithDefaultModel sets the model a hosted provider reports when no model is
// configured.
func WithDefaultModel(model string) Option {
	return func(p *BaseProvider) { p.defaultModel = model }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *BaseProvider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// BaseProvider contains common provider functionality
type BaseProvider struct {
	info         *Info
	httpClient   *http.Client
	apiKey       string
	callTimeout  time.Duration
	retry        RetryPolicy
	defaultModel string
	client       *openai.Client
}

// NewBaseProvider creates a base provider with common setup
func NewBaseProvider(providerType Type, host, apiKey string, opts ...Option) *BaseProvider {
	host = strings.TrimSuffix(host, "/")

	p := &BaseProvider{
		info: &Info{
			Type:    providerType,
			Name:    providerType.DisplayName(),
			Host:    host,
			APIPath: "/v1",
		},
		httpClient:  newHTTPClient(),
		apiKey:      apiKey,
		callTimeout: DefaultCallTimeout,
		retry:       DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Info returns provider metadata
func (p *BaseProvider) Info() *Info {
	return p.info
}

func (p *BaseProvider) hostedModel(fallback string) string {
	if p.defaultModel != "" {
		return p.defaultModel
	}
	return fallback
}

// SetModel sets the active model
func (p *BaseProvider) SetModel(model string) {
	p.info.Model = model
}

// CreateClient returns an OpenAI-compatible client
func (p *BaseProvider) CreateClient() *openai.Client {
	if p.client == nil {
		config := openai.DefaultConfig(p.apiKey)
		config.BaseURL = p.info.Host + p.info.APIPath
		config.HTTPClient = p.httpClient
		p.client = openai.NewClientWithConfig(config)
	}
	return p.client
}

// Complete sends req as a chat completion. Transient failures are retried
// with exponential backoff and each attempt runs under the call timeout.
func (p *BaseProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	if p.info.Model == "" {
		return nil, &TransportError{Op: "complete", Err: errors.New("no model selected")}
	}

	t := timeout.New[*Response](timeout.Config{DefaultTimeout: p.callTimeout})
	r := newRetrier(p.retry, "completion")

	start := time.Now()
	resp, err := r.Do(ctx, func(ctx context.Context) (*Response, error) {
		return t.Execute(ctx, p.callTimeout, func(ctx context.Context) (*Response, error) {
			return p.complete(ctx, req)
		})
	})
	if err != nil {
		return nil, newTransportError("complete", err)
	}
	log.Component("provider").Debug("completion finished",
		"provider", p.info.Type,
		"model", resp.Model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"duration", time.Since(start))
	return resp, nil
}

func (p *BaseProvider) complete(ctx context.Context, req Request) (*Response, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := p.CreateClient().CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.info.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	model := resp.Model
	if model == "" {
		model = p.info.Model
	}
	return &Response{
		Text:  cleanResponse(resp.Choices[0].Message.Content),
		Model: model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

var thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// cleanResponse removes thinking tags and surrounding whitespace
func cleanResponse(response string) string {
	// Remove <think>...</think> blocks (DeepSeek R1 reasoning)
	cleaned := thinkRe.ReplaceAllString(response, "")

	// Also handle unclosed think tags
	if idx := strings.Index(cleaned, "</think>"); idx != -1 {
		cleaned = cleaned[idx+len("</think>"):]
	}

	return strings.TrimSpace(cleaned)
}

// DetectModelsOpenAI queries the /v1/models endpoint (OpenAI-compatible)
func (p *BaseProvider) DetectModelsOpenAI(ctx context.Context) ([]string, error) {
	url := p.info.Host + p.info.APIPath + "/models"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, newTransportError("list models", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("list models", resp)
	}

	var modelsResp struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&modelsResp); err != nil {
		return nil, newTransportError("list models", fmt.Errorf("decode response: %w", err))
	}

	models := make([]string, 0, len(modelsResp.Data))
	for _, m := range modelsResp.Data {
		models = append(models, m.ID)
	}

	p.info.Models = models
	return models, nil
}

// statusError builds a TransportError from a non-2xx response.
func statusError(op string, resp *http.Response) *TransportError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err := fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(body)))
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		err = fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: err}
}

// newHTTPClient creates an HTTP client for LLM API requests.
// Client-level timeout is disabled (0); each call is bounded by the
// provider's call timeout instead.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 0,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   defaultConnectTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}
