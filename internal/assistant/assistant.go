// Package assistant drives the two operations of codedoctor: analyzing a
// repository into a Markdown document and answering questions about it.
package assistant

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tara-vision/codedoctor/internal/log"
	"github.com/tara-vision/codedoctor/internal/provider"
	"github.com/tara-vision/codedoctor/internal/scan"
	"github.com/tara-vision/codedoctor/internal/summary"
	"github.com/tara-vision/codedoctor/internal/ui"
)

const (
	// DefaultMaxTokens is the completion budget for an analysis.
	DefaultMaxTokens = 4000
	// DefaultAskMaxTokens is the completion budget for one answer.
	DefaultAskMaxTokens = 1000

	providerInitTimeout = 2 * time.Minute
)

// Config is everything the pipeline needs. It is filled in by the command
// layer; nothing below reads the environment.
type Config struct {
	Host         string
	APIKey       string
	Model        string
	Vendor       string
	MaxTokens    int
	AskMaxTokens int
	Timeout      time.Duration // per completion attempt, 0 for the provider default
	HostedModel  string        // model reported by hosted vendors when Model is empty

	Scan    scan.Options
	Summary summary.Options

	EnableSpinner bool
	SaveContext   bool
}

// DefaultConfig returns a Config with the default scan and summary caps.
func DefaultConfig() Config {
	return Config{
		MaxTokens:     DefaultMaxTokens,
		AskMaxTokens:  DefaultAskMaxTokens,
		Scan:          scan.DefaultOptions(),
		Summary:       summary.DefaultOptions(),
		EnableSpinner: true,
	}
}

// Option customizes an Assistant beyond its Config.
type Option func(*Assistant)

// WithProvider uses p instead of building one from Config.Host and
// Config.Vendor. Model resolution still applies.
func WithProvider(p provider.Provider) Option {
	return func(a *Assistant) { a.provider = p }
}

// WithTokenCounter replaces the tiktoken-based prompt size estimate.
func WithTokenCounter(c summary.TokenCounter) Option {
	return func(a *Assistant) { a.counter = c }
}

// WithOutput directs progress output to w instead of stderr.
func WithOutput(w io.Writer) Option {
	return func(a *Assistant) { a.out = w }
}

// WithClock overrides time.Now for document timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) { a.now = now }
}

// Assistant holds a resolved provider and the pipeline configuration.
type Assistant struct {
	cfg        Config
	provider   provider.Provider
	model      string
	summarizer *summary.Summarizer
	counter    summary.TokenCounter
	out        io.Writer
	now        func() time.Time
}

// New resolves the provider and model. A configured model always wins;
// otherwise the first model reported by the server is used.
func New(ctx context.Context, cfg Config, opts ...Option) (*Assistant, error) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.AskMaxTokens <= 0 {
		cfg.AskMaxTokens = DefaultAskMaxTokens
	}

	a := &Assistant{
		cfg:        cfg,
		summarizer: summary.New(cfg.Summary),
		out:        os.Stderr,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	initCtx, cancel := context.WithTimeout(ctx, providerInitTimeout)
	defer cancel()

	if a.provider == nil {
		var popts []provider.Option
		if cfg.Timeout > 0 {
			popts = append(popts, provider.WithCallTimeout(cfg.Timeout))
		}
		if cfg.HostedModel != "" {
			popts = append(popts, provider.WithDefaultModel(cfg.HostedModel))
		}
		p, err := provider.New(initCtx, cfg.Host, cfg.Vendor, cfg.APIKey, popts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create provider: %w", err)
		}
		a.provider = p
	}

	model, err := resolveModel(initCtx, a.provider, cfg.Model)
	if err != nil {
		return nil, err
	}
	a.model = model
	a.provider.SetModel(model)

	if a.counter == nil {
		a.counter = summary.NewTokenCounter(model)
	}

	log.Component("assistant").Debug("assistant ready",
		"provider", a.provider.Info().Type, "host", a.provider.Info().Host, "model", model)
	return a, nil
}

func resolveModel(ctx context.Context, p provider.Provider, configModel string) (string, error) {
	if configModel != "" {
		return configModel, nil
	}
	models, err := p.DetectModels(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to detect model and no model configured: %w", err)
	}
	if len(models) == 0 {
		return "", fmt.Errorf("no models available from %s and no model configured", p.Info().Name)
	}
	log.Component("assistant").Info("auto-detected model", "model", models[0])
	return models[0], nil
}

// Model returns the model used for completions.
func (a *Assistant) Model() string {
	return a.model
}

// ProviderInfo returns metadata about the connected provider.
func (a *Assistant) ProviderInfo() *provider.Info {
	return a.provider.Info()
}

// Config returns the effective configuration.
func (a *Assistant) Config() Config {
	return a.cfg
}

// step runs fn behind a spinner when spinners are enabled.
func (a *Assistant) step(message string, fn func() error) error {
	if !a.cfg.EnableSpinner {
		log.Component("assistant").Info(message)
		return fn()
	}
	s := ui.NewSpinner(a.out)
	s.Start(message)
	err := fn()
	s.Stop()
	return err
}
