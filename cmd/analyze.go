package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tara-vision/codedoctor/internal/assistant"
	"github.com/tara-vision/codedoctor/internal/storage"
	"github.com/tara-vision/codedoctor/internal/ui"
)

func newAnalyzeCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "analyze <path|git-url>",
		Short: "Scan a repository and write a Markdown analysis",
		Long: `Scan a local directory (or clone a git URL), summarize its structure and
ask the model for an overview, coding patterns, implementation examples and
recommendations. The result is written to --output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a, err := newAssistant(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			renderer := newRenderer()
			fmt.Fprint(cmd.ErrOrStderr(), renderer.ProviderMessage(a.ProviderInfo()))

			rep, err := a.Analyze(cmd.Context(), args[0], output)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), renderer.FormatAnalysis(ui.AnalysisStats{
				Output:       rep.Output,
				Model:        rep.Model,
				Files:        rep.Files,
				Skipped:      rep.Skipped,
				TotalBytes:   rep.TotalBytes,
				PromptTokens: rep.PromptTokens,
				Truncated:    rep.Truncated,
				Usage: &storage.TokenUsage{
					PromptTokens:     rep.Usage.PromptTokens,
					CompletionTokens: rep.Usage.CompletionTokens,
					TotalTokens:      rep.Usage.TotalTokens,
				},
			}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", assistant.DefaultOutput, "output Markdown file")
	cmd.Flags().Bool("save-context", false, "store the prompt context and run metadata in .codedoctor/ next to the output")
	_ = viper.BindPFlag("save_context", cmd.Flags().Lookup("save-context"))

	return cmd
}
