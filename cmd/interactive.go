package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/tara-vision/codedoctor/internal/assistant"
	"github.com/tara-vision/codedoctor/internal/log"
	"github.com/tara-vision/codedoctor/internal/storage"
	"github.com/tara-vision/codedoctor/internal/ui"
)

func newInteractiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interactive [doc]",
		Short: "Ask questions about a codebase in a REPL",
		Long: `Start an interactive session against an analysis document. Without an
argument, pick one of the Markdown files in the current directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInteractive,
	}
}

func runInteractive(cmd *cobra.Command, args []string) error {
	var docPath string
	if len(args) == 1 {
		docPath = args[0]
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		docPath, err = selectDocument(wd, assistant.DefaultOutput)
		if err != nil {
			return err
		}
	}

	doc, err := assistant.LoadDocument(docPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	renderer := newRenderer()
	fmt.Fprint(out, renderer.WelcomeMessage(docPath))

	a, err := newAssistant(cmd.Context(), loadConfig())
	if err != nil {
		return err
	}
	fmt.Fprint(out, renderer.ProviderMessage(a.ProviderInfo()))

	c := newChat(a, doc, renderer, out, cmd.ErrOrStderr())
	c.openSession()
	fmt.Fprintln(out, renderer.InfoMessage("Type /help for commands, exit to quit."))
	fmt.Fprintln(out)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          renderer.PromptString(),
		HistoryFile:     historyFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    slashCompleter(),
	})
	if err != nil {
		return fmt.Errorf("failed to set up readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or Ctrl+C
			fmt.Fprintln(out, "\nGoodbye!")
			return nil
		}
		if c.handle(cmd.Context(), line) {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
	}
}

// chat is one interactive session against a loaded document.
type chat struct {
	asst     *assistant.Assistant
	doc      *assistant.Document
	renderer *ui.Renderer
	out      io.Writer
	errOut   io.Writer

	store   *storage.Manager // nil when history cannot be persisted
	session *storage.Session
	usage   storage.TokenUsage
}

func newChat(a *assistant.Assistant, doc *assistant.Document, r *ui.Renderer, out, errOut io.Writer) *chat {
	return &chat{asst: a, doc: doc, renderer: r, out: out, errOut: errOut}
}

// openSession resumes the active session for this document or starts a new
// one. History lives in .codedoctor/ next to the document.
func (c *chat) openSession() {
	absDoc, err := filepath.Abs(c.doc.Path)
	if err != nil {
		absDoc = c.doc.Path
	}
	store, err := storage.NewManager(filepath.Dir(absDoc))
	if err != nil {
		log.Warn("session history disabled", "error", err)
		fmt.Fprintln(c.errOut, c.renderer.WarningMessage(fmt.Sprintf("Could not initialize history: %v", err)))
		return
	}
	c.store = store

	if s, err := store.GetActiveSession(); err == nil && s != nil && s.Document == absDoc {
		c.session = s
		if s.TotalUsage != nil {
			c.usage = *s.TotalUsage
		}
		if n := len(s.Messages); n > 0 {
			fmt.Fprint(c.out, c.renderer.SessionResumeMessage(n))
		}
		return
	}

	s, err := store.CreateSession(absDoc)
	if err != nil {
		log.Warn("could not create session", "error", err)
		c.store = nil
		return
	}
	c.session = s
}

// handle processes one input line and reports whether the session should end.
func (c *chat) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false
	case line == "exit" || line == "quit":
		return true
	case strings.HasPrefix(line, "/"):
		c.command(line)
		return false
	}

	// Re-read per question so a regenerated analysis is picked up.
	if doc, err := assistant.LoadDocument(c.doc.Path); err != nil {
		log.Warn("could not re-read document, using the loaded copy", "path", c.doc.Path, "error", err)
	} else {
		c.doc = doc
	}

	ans, err := c.asst.AskDocument(ctx, c.doc, line)
	if err != nil {
		fmt.Fprintln(c.errOut, c.renderer.ErrorMessage(err))
		return false
	}
	fmt.Fprintln(c.out, c.renderer.Markdown(ans.Text))
	fmt.Fprintln(c.out)

	usage := &storage.TokenUsage{
		PromptTokens:     ans.Usage.PromptTokens,
		CompletionTokens: ans.Usage.CompletionTokens,
		TotalTokens:      ans.Usage.TotalTokens,
	}
	c.usage.Add(usage)
	c.record(storage.ConversationMessage{Role: "user", Content: line})
	c.record(storage.ConversationMessage{Role: "assistant", Content: ans.Text, Usage: usage})
	return false
}

func (c *chat) record(msg storage.ConversationMessage) {
	if c.store == nil || c.session == nil {
		return
	}
	if err := c.store.AddMessage(c.session.ID, msg); err != nil {
		log.Warn("could not save message", "error", err)
	}
}

func (c *chat) command(line string) {
	switch strings.Fields(line)[0] {
	case "/help":
		fmt.Fprintln(c.out, c.renderer.HelpMessage())

	case "/history":
		if c.store == nil || c.session == nil {
			fmt.Fprintln(c.out, c.renderer.WarningMessage("History is not available."))
			return
		}
		s, err := c.store.GetSession(c.session.ID)
		if err != nil {
			fmt.Fprintln(c.errOut, c.renderer.ErrorMessage(err))
			return
		}
		fmt.Fprint(c.out, c.renderer.FormatHistory(s.Messages))

	case "/usage":
		fmt.Fprintln(c.out, c.renderer.FormatUsage(&c.usage))

	default:
		fmt.Fprintf(c.out, "Unknown command: %s\n", line)
		fmt.Fprintln(c.out, "Type '/help' for available commands.")
	}
}
