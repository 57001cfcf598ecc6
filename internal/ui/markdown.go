package ui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

const defaultWordWrap = 100

var (
	markdownOnce     sync.Once
	markdownRenderer *glamour.TermRenderer
)

// renderer lazily builds the glamour renderer so commands that never print
// markdown do not pay for style detection.
func renderer() *glamour.TermRenderer {
	markdownOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(defaultWordWrap),
			glamour.WithEmoji(),
		)
		if err == nil {
			markdownRenderer = r
		}
	})
	return markdownRenderer
}

// RenderMarkdown renders markdown content with syntax highlighting. Content
// is returned unchanged when glamour cannot be initialized.
func RenderMarkdown(content string) string {
	r := renderer()
	if r == nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	// Trim extra whitespace that glamour sometimes adds
	return strings.TrimSpace(rendered)
}
