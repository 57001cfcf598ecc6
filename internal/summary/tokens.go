package summary

import (
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"github.com/tara-vision/codedoctor/internal/log"
)

// defaultTiktokenModel is used when the configured model has no known
// encoding, which is the case for non-OpenAI models.
const defaultTiktokenModel = "gpt-4o"

// TokenCounter estimates how many tokens a text costs.
type TokenCounter interface {
	CountTokens(text string) int
}

// Estimator approximates four bytes per token.
type Estimator struct{}

func (Estimator) CountTokens(text string) int {
	return (len(text) + 3) / 4
}

// TiktokenCounter counts with the tiktoken encoding of a model. The
// encoding is loaded on first use; if it cannot be loaded the count falls
// back to Estimator.
type TiktokenCounter struct {
	model string
	once  sync.Once
	tke   *tiktoken.Tiktoken
}

// NewTokenCounter returns a tiktoken-backed counter for model.
func NewTokenCounter(model string) *TiktokenCounter {
	return &TiktokenCounter{model: model}
}

func (c *TiktokenCounter) load() {
	logger := log.Component("tokens")
	tke, err := tiktoken.EncodingForModel(c.model)
	if err != nil {
		logger.Debug("no tiktoken encoding for model, using default", "model", c.model, "default", defaultTiktokenModel)
		tke, err = tiktoken.EncodingForModel(defaultTiktokenModel)
	}
	if err != nil {
		logger.Warn("tiktoken unavailable, estimating tokens", "error", err)
		return
	}
	c.tke = tke
}

func (c *TiktokenCounter) CountTokens(text string) int {
	c.once.Do(c.load)
	if c.tke == nil {
		return Estimator{}.CountTokens(text)
	}
	return len(c.tke.EncodeOrdinary(text))
}
