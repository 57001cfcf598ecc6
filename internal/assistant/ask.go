package assistant

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/tara-vision/codedoctor/internal/log"
	"github.com/tara-vision/codedoctor/internal/provider"
)

var (
	// ErrDocumentNotFound is returned when the analysis document does not exist.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrEmptyQuestion is returned for blank questions.
	ErrEmptyQuestion = errors.New("question is empty")
)

// Document is a loaded analysis document. Content is sent to the model
// verbatim, front matter included.
type Document struct {
	Path        string
	Content     string
	FrontMatter *FrontMatter
}

// Answer is the model's reply to one question.
type Answer struct {
	Text  string
	Model string
	Usage provider.Usage
}

// LoadDocument reads an analysis document.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	fm, _, err := SplitFrontMatter(data)
	if err != nil {
		// Hand-edited headers are tolerated; the text still goes out as is.
		log.Component("assistant").Warn("ignoring unreadable front matter", "path", path, "error", err)
	}
	return &Document{Path: path, Content: string(data), FrontMatter: fm}, nil
}

// Ask loads the document at docPath and answers question from it.
func (a *Assistant) Ask(ctx context.Context, docPath, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}
	doc, err := LoadDocument(docPath)
	if err != nil {
		return nil, err
	}
	return a.AskDocument(ctx, doc, question)
}

// AskDocument answers question from an already loaded document.
func (a *Assistant) AskDocument(ctx context.Context, doc *Document, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	prompt := BuildAskPrompt(doc.Content, question)
	log.Component("assistant").Debug("asking",
		"document", doc.Path, "question_chars", len(question), "prompt_tokens", a.counter.CountTokens(prompt))

	var resp *provider.Response
	err := a.step("Thinking...", func() error {
		var err error
		resp, err = a.provider.Complete(ctx, provider.Request{
			Prompt:    prompt,
			MaxTokens: a.cfg.AskMaxTokens,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("question failed: %w", err)
	}
	return &Answer{Text: resp.Text, Model: resp.Model, Usage: resp.Usage}, nil
}
