package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/tara-vision/codedoctor/internal/provider"
	"github.com/tara-vision/codedoctor/internal/storage"
)

// Config holds UI configuration options
type Config struct {
	EnableMarkdown bool // render answers through glamour
}

// DefaultConfig returns the default UI configuration
func DefaultConfig() *Config {
	return &Config{
		EnableMarkdown: true,
	}
}

// Renderer handles all UI output formatting
type Renderer struct {
	config *Config
}

// NewRenderer creates a new renderer with default config
func NewRenderer() *Renderer {
	return &Renderer{
		config: DefaultConfig(),
	}
}

// NewRendererWithConfig creates a renderer with custom config
func NewRendererWithConfig(config *Config) *Renderer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Renderer{
		config: config,
	}
}

// WelcomeMessage returns the styled banner for interactive mode
func (r *Renderer) WelcomeMessage(document string) string {
	var sb strings.Builder

	title := TitleStyle.Render(IconStar + " Codebase Doctor")
	subtitle := Subtle.Render("ask questions about an analyzed codebase")

	sb.WriteString(fmt.Sprintf("%s - %s\n", title, subtitle))
	if document != "" {
		sb.WriteString(SessionStyle.Render(fmt.Sprintf("%s Using %s", IconFolder, filepath.Base(document))))
		sb.WriteString("\n")
	}
	sb.WriteString(Subtle.Render("Type '/help' for commands, 'exit' to quit"))
	sb.WriteString("\n")

	return sb.String()
}

// HelpMessage lists the interactive slash commands
func (r *Renderer) HelpMessage() string {
	var sb strings.Builder
	sb.WriteString(Bold.Render("Commands") + "\n")
	sb.WriteString("  /help      Show this help\n")
	sb.WriteString("  /history   Show questions asked in this session\n")
	sb.WriteString("  /usage     Show token usage for this session\n")
	sb.WriteString("  exit       Leave interactive mode\n")
	sb.WriteString(Subtle.Render("The document is re-read before every question.") + "\n")
	return sb.String()
}

// SessionResumeMessage returns styled session info
func (r *Renderer) SessionResumeMessage(messageCount int) string {
	var sb strings.Builder
	sb.WriteString(SessionStyle.Render(fmt.Sprintf("%s Resuming session with %d previous messages", IconSession, messageCount)))
	sb.WriteString("\n")
	return sb.String()
}

// AnalysisStats is the subset of an analyze run shown to the operator
type AnalysisStats struct {
	Output       string
	Model        string
	Files        int
	Skipped      int
	TotalBytes   int64
	PromptTokens int
	Truncated    bool
	Usage        *storage.TokenUsage
}

// FormatAnalysis summarizes a finished analyze run
func (r *Renderer) FormatAnalysis(stats AnalysisStats) string {
	var sb strings.Builder
	sb.WriteString(r.SuccessMessage(fmt.Sprintf("Analysis complete! Documentation written to %s", stats.Output)))
	sb.WriteString("\n")
	sb.WriteString(Subtle.Render(fmt.Sprintf("  Files: %d analyzed, %d skipped (%s)",
		stats.Files, stats.Skipped, humanize.Bytes(uint64(stats.TotalBytes)))))
	sb.WriteString("\n")
	sb.WriteString(Subtle.Render(fmt.Sprintf("  Model: %s, prompt ~%s tokens", stats.Model, humanize.Comma(int64(stats.PromptTokens)))))
	sb.WriteString("\n")
	if stats.Truncated {
		sb.WriteString(WarningStyle.Render(fmt.Sprintf("  %s Context was truncated to fit the size cap", IconWarning)))
		sb.WriteString("\n")
	}
	if stats.Usage != nil && stats.Usage.TotalTokens > 0 {
		sb.WriteString(Subtle.Render(fmt.Sprintf("  Usage: %d prompt + %d completion tokens",
			stats.Usage.PromptTokens, stats.Usage.CompletionTokens)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatHistory lists the user questions of a session
func (r *Renderer) FormatHistory(messages []storage.ConversationMessage) string {
	var sb strings.Builder
	n := 0
	for _, msg := range messages {
		if msg.Role != "user" {
			continue
		}
		n++
		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			Subtle.Render(fmt.Sprintf("%3d", n)),
			Subtle.Render(msg.Timestamp.Format("15:04")),
			msg.Content))
	}
	if n == 0 {
		return Subtle.Render("No questions asked yet.") + "\n"
	}
	return SessionStyle.Render(IconSession+" History") + "\n" + sb.String()
}

// PromptString returns the styled prompt
func (r *Renderer) PromptString() string {
	return PromptStyle.Render("❯") + " "
}

// ErrorMessage formats an error message
func (r *Renderer) ErrorMessage(err error) string {
	return ErrorStyle.Render(fmt.Sprintf("%s Error: %v", IconError, err))
}

// WarningMessage formats a warning message
func (r *Renderer) WarningMessage(msg string) string {
	return WarningStyle.Render(fmt.Sprintf("%s %s", IconWarning, msg))
}

// InfoMessage formats an info message
func (r *Renderer) InfoMessage(msg string) string {
	return SessionStyle.Render(fmt.Sprintf("%s %s", IconInfo, msg))
}

// SuccessMessage formats a success message
func (r *Renderer) SuccessMessage(msg string) string {
	return SuccessStyle.Render(fmt.Sprintf("%s %s", IconSuccess, msg))
}

// FormatUsage formats token usage statistics for display
func (r *Renderer) FormatUsage(usage *storage.TokenUsage) string {
	if usage == nil || usage.TotalTokens == 0 {
		return Subtle.Render("No token usage recorded yet.")
	}

	var sb strings.Builder
	sb.WriteString(SessionStyle.Render(IconInfo+" Token Usage") + "\n")
	sb.WriteString(fmt.Sprintf("  Prompt tokens:     %s\n", humanize.Comma(int64(usage.PromptTokens))))
	sb.WriteString(fmt.Sprintf("  Completion tokens: %s\n", humanize.Comma(int64(usage.CompletionTokens))))
	sb.WriteString(fmt.Sprintf("  Total tokens:      %s\n", humanize.Comma(int64(usage.TotalTokens))))

	return sb.String()
}

// ProviderMessage formats provider information for display
func (r *Renderer) ProviderMessage(info *provider.Info) string {
	if info == nil {
		return ""
	}
	msg := fmt.Sprintf("%s Connected to %s", IconSuccess, info.Name)
	if info.Model != "" {
		msg += fmt.Sprintf(" (%s)", info.Model)
	}
	return SuccessStyle.Render(msg) + "\n"
}

// Markdown renders content through glamour when markdown output is enabled
func (r *Renderer) Markdown(content string) string {
	if !r.config.EnableMarkdown {
		return content
	}
	return RenderMarkdown(content)
}
