package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tara-vision/codedoctor/internal/assistant"
	"github.com/tara-vision/codedoctor/internal/log"
	"github.com/tara-vision/codedoctor/internal/provider"
	"github.com/tara-vision/codedoctor/internal/scan"
	"github.com/tara-vision/codedoctor/internal/summary"
	"github.com/tara-vision/codedoctor/internal/ui"
)

// Version is set at build time with -ldflags.
var Version = "dev"

const envPrefix = "CODEDOCTOR"

// newAssistant builds the assistant for a command. Tests replace it to
// avoid network access.
var newAssistant = func(ctx context.Context, cfg assistant.Config) (*assistant.Assistant, error) {
	return assistant.New(ctx, cfg)
}

// Execute runs the command tree, cancelling on interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the codedoctor command tree.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:     "codedoctor",
		Version: Version,
		Short:   "Codebase Doctor - AI-generated codebase documentation",
		Long: `Codebase Doctor scans a repository, summarizes its structure and asks an
LLM to write a Markdown guide to the codebase. The guide can then be
queried with "ask" or "interactive".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfgFile); err != nil {
				return err
			}
			log.Init(viper.GetInt("verbosity"), viper.GetString("log_format"))
			if used := viper.ConfigFileUsed(); used != "" {
				log.Info("using config file", "path", used)
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.codedoctor/config.yaml)")
	flags.String("host", "", "LLM server URL (default depends on --vendor)")
	flags.String("key", "", "API key (also read from CLAUDE_API_KEY)")
	flags.String("model", "", "model name (optional, auto-detected from server)")
	flags.String("vendor", "", "LLM vendor (auto, anthropic, openai, vllm, ollama, llama.cpp)")
	flags.Duration("timeout", 0, "per-request timeout for the LLM call (0 for the default)")
	flags.Bool("no-spinner", false, "disable spinner animations")
	flags.Bool("no-markdown", false, "print answers as plain text")
	flags.IntP("verbosity", "v", log.VerbosityWarn, "log verbosity (0 error .. 4 trace)")
	flags.String("log-format", "text", "log format (text, json)")

	for key, flag := range map[string]string{
		"host":        "host",
		"key":         "key",
		"model":       "model",
		"vendor":      "vendor",
		"timeout":     "timeout",
		"no_spinner":  "no-spinner",
		"no_markdown": "no-markdown",
		"verbosity":   "verbosity",
		"log_format":  "log-format",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
	setDefaults()

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newAskCmd(),
		newInteractiveCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func setDefaults() {
	scanDefaults := scan.DefaultOptions()
	viper.SetDefault("scan.max_files", scanDefaults.MaxFiles)
	viper.SetDefault("scan.max_file_size", scanDefaults.MaxFileSize)
	viper.SetDefault("scan.exclude_dirs", []string{})
	viper.SetDefault("scan.exclude", []string{})
	viper.SetDefault("scan.hidden", false)
	viper.SetDefault("scan.no_ignore", false)

	sumDefaults := summary.DefaultOptions()
	viper.SetDefault("summary.max_chars", sumDefaults.MaxChars)
	viper.SetDefault("summary.snippet_chars", sumDefaults.SnippetChars)
	viper.SetDefault("summary.layout_depth", sumDefaults.LayoutDepth)
	viper.SetDefault("summary.max_children", sumDefaults.MaxChildren)
	viper.SetDefault("summary.max_samples", sumDefaults.MaxSamples)

	viper.SetDefault("openai_model", provider.DefaultOpenAIModel)
	viper.SetDefault("anthropic_model", provider.DefaultAnthropicModel)

	viper.SetDefault("max_tokens", assistant.DefaultMaxTokens)
	viper.SetDefault("ask_max_tokens", assistant.DefaultAskMaxTokens)
}

func initConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("key", envPrefix+"_KEY", "CLAUDE_API_KEY")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// configDir returns $HOME/.codedoctor, creating it if needed.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	dir := filepath.Join(home, ".codedoctor")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// loadConfig reads the effective settings once and hands them to the
// pipeline as an explicit Config.
func loadConfig() assistant.Config {
	cfg := assistant.DefaultConfig()

	cfg.Host = viper.GetString("host")
	cfg.APIKey = viper.GetString("key")
	cfg.Model = viper.GetString("model")
	cfg.Vendor = viper.GetString("vendor")
	if cfg.Host == "" && cfg.Vendor == "" {
		// Without a server, talk to the hosted Claude API like the
		// CLAUDE_API_KEY setup expects.
		cfg.Vendor = "anthropic"
	}
	switch provider.ParseVendorConfig(cfg.Vendor) {
	case provider.TypeOpenAI:
		cfg.HostedModel = viper.GetString("openai_model")
	case provider.TypeAnthropic:
		cfg.HostedModel = viper.GetString("anthropic_model")
	}
	cfg.Timeout = viper.GetDuration("timeout")
	cfg.MaxTokens = viper.GetInt("max_tokens")
	cfg.AskMaxTokens = viper.GetInt("ask_max_tokens")
	cfg.EnableSpinner = !viper.GetBool("no_spinner")
	cfg.SaveContext = viper.GetBool("save_context")

	cfg.Scan.MaxFiles = viper.GetInt("scan.max_files")
	cfg.Scan.MaxFileSize = viper.GetInt64("scan.max_file_size")
	cfg.Scan.ExcludeDirs = append(cfg.Scan.ExcludeDirs, viper.GetStringSlice("scan.exclude_dirs")...)
	cfg.Scan.ExcludePatterns = append(cfg.Scan.ExcludePatterns, viper.GetStringSlice("scan.exclude")...)
	cfg.Scan.IncludeHidden = viper.GetBool("scan.hidden")
	cfg.Scan.RespectGitignore = !viper.GetBool("scan.no_ignore")

	cfg.Summary.MaxChars = viper.GetInt("summary.max_chars")
	cfg.Summary.SnippetChars = viper.GetInt("summary.snippet_chars")
	cfg.Summary.LayoutDepth = viper.GetInt("summary.layout_depth")
	cfg.Summary.MaxChildren = viper.GetInt("summary.max_children")
	cfg.Summary.MaxSamples = viper.GetInt("summary.max_samples")

	return cfg
}

// newRenderer builds the terminal renderer from the output flags.
func newRenderer() *ui.Renderer {
	return ui.NewRendererWithConfig(&ui.Config{
		EnableMarkdown: !viper.GetBool("no_markdown"),
	})
}

// historyFile is the readline history location.
func historyFile() string {
	dir, err := configDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}
