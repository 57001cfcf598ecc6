package cmd

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/tara-vision/codedoctor/internal/assistant"
	"github.com/tara-vision/codedoctor/internal/log"
)

func newAskCmd() *cobra.Command {
	var (
		copyAnswer bool
		raw        bool
	)

	cmd := &cobra.Command{
		Use:   "ask <doc> <question>",
		Short: "Ask a question about a codebase using its analysis document",
		Example: `  codedoctor ask codebase_analysis.md "How do I add a new API endpoint?"
  codedoctor ask codebase_analysis.md where is the database layer --copy`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args[1:], " "))
			if question == "" {
				return assistant.ErrEmptyQuestion
			}
			// Fail on a missing document before touching the network.
			doc, err := assistant.LoadDocument(args[0])
			if err != nil {
				return err
			}

			a, err := newAssistant(cmd.Context(), loadConfig())
			if err != nil {
				return err
			}
			ans, err := a.AskDocument(cmd.Context(), doc, question)
			if err != nil {
				return err
			}

			renderer := newRenderer()
			out := cmd.OutOrStdout()
			if raw {
				fmt.Fprintln(out, ans.Text)
			} else {
				fmt.Fprintln(out, renderer.Markdown(ans.Text))
			}

			if copyAnswer {
				if err := clipboard.WriteAll(ans.Text); err != nil {
					log.Warn("clipboard unavailable", "error", err)
					fmt.Fprintln(cmd.ErrOrStderr(), renderer.WarningMessage("Could not copy answer to clipboard"))
				} else {
					fmt.Fprintln(cmd.ErrOrStderr(), renderer.SuccessMessage("Answer copied to clipboard."))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&copyAnswer, "copy", false, "copy the answer to the clipboard")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the answer without markdown rendering")
	return cmd
}
