package assistant

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/tara-vision/codedoctor/internal/log"
	"github.com/tara-vision/codedoctor/internal/provider"
	"github.com/tara-vision/codedoctor/internal/scan"
	"github.com/tara-vision/codedoctor/internal/storage"
	"github.com/tara-vision/codedoctor/internal/summary"
)

// DefaultOutput is the document written when no output path is given.
const DefaultOutput = "codebase_analysis.md"

// Report describes a finished analysis.
type Report struct {
	Output       string
	Repository   string
	Model        string
	Files        int
	Skipped      int
	TotalBytes   int64
	PromptTokens int
	Truncated    bool
	Fingerprint  string
	Usage        provider.Usage
	Duration     time.Duration
}

// Analyze scans input (a directory or git URL), asks the model for an
// analysis and writes the resulting document to outputPath. Nothing is
// written when any step fails.
func (a *Assistant) Analyze(ctx context.Context, input, outputPath string) (*Report, error) {
	logger := log.Component("assistant")
	start := a.now()
	if outputPath == "" {
		outputPath = DefaultOutput
	}

	var (
		dir     string
		cleanup = func() {}
	)
	if scan.IsRemote(input) {
		err := a.step("Cloning "+input+"...", func() error {
			var err error
			dir, cleanup, err = scan.Resolve(ctx, input, a.cloneProgress())
			return err
		})
		if err != nil {
			return nil, err
		}
	} else {
		dir = input
	}
	defer cleanup()

	var res *scan.ScanResult
	err := a.step("Scanning repository...", func() error {
		var err error
		res, err = scan.Walk(dir, a.cfg.Scan)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("scan complete",
		"root", res.Root, "files", res.Considered, "skipped", res.Skipped, "bytes", res.TotalBytes)

	sum := a.summarizer.Summarize(res)
	prompt := BuildAnalysisPrompt(sum.Text)
	tokens := a.counter.CountTokens(prompt)
	logger.Debug("prompt built", "chars", len(prompt), "tokens", tokens, "truncated", sum.Truncated)

	var resp *provider.Response
	err = a.step("Asking "+a.model+" for an analysis...", func() error {
		var err error
		resp, err = a.provider.Complete(ctx, provider.Request{
			Prompt:    prompt,
			MaxTokens: a.cfg.MaxTokens,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}

	fm := FrontMatter{
		Repository:  repositoryName(input, res.Root),
		GeneratedAt: start.UTC().Truncate(time.Second),
		Model:       resp.Model,
		Fingerprint: fmt.Sprintf("%016x", sum.Fingerprint),
		Files:       res.Considered,
		Skipped:     res.Skipped,
		Tokens:      tokens,
	}
	doc, err := RenderDocument(fm, sum, ParseSections(resp.Text))
	if err != nil {
		return nil, err
	}

	if err := storage.WriteFileAtomic(outputPath, []byte(doc)); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	logger.Info("document written", "path", outputPath, "bytes", len(doc))

	if a.cfg.SaveContext {
		if err := a.saveContext(input, outputPath, fm, res, sum); err != nil {
			// The document is already in place; a missing record is not fatal.
			logger.Warn("could not save analysis record", "error", err)
		}
	}

	return &Report{
		Output:       outputPath,
		Repository:   fm.Repository,
		Model:        fm.Model,
		Files:        res.Considered,
		Skipped:      res.Skipped,
		TotalBytes:   res.TotalBytes,
		PromptTokens: tokens,
		Truncated:    sum.Truncated,
		Fingerprint:  fm.Fingerprint,
		Usage:        resp.Usage,
		Duration:     a.now().Sub(start),
	}, nil
}

func (a *Assistant) saveContext(input, outputPath string, fm FrontMatter, res *scan.ScanResult, sum *summary.Summary) error {
	absOut, err := filepath.Abs(outputPath)
	if err != nil {
		return err
	}
	mgr, err := storage.NewManager(filepath.Dir(absOut))
	if err != nil {
		return err
	}
	root := res.Root
	if scan.IsRemote(input) {
		root = input
	}
	return mgr.SaveAnalysis(&storage.AnalysisRecord{
		Root:          root,
		Document:      filepath.Base(absOut),
		Model:         fm.Model,
		Fingerprint:   fm.Fingerprint,
		CreatedAt:     fm.GeneratedAt,
		Files:         res.Considered,
		Skipped:       res.Skipped,
		TotalBytes:    res.TotalBytes,
		PromptContext: sum.Text,
	})
}

// repositoryName names the repository in the document title.
func repositoryName(input, root string) string {
	if scan.IsRemote(input) {
		u := strings.TrimSuffix(strings.TrimRight(input, "/"), ".git")
		if i := strings.LastIndexAny(u, ":/"); i >= 0 {
			u = u[i+1:]
		}
		if u != "" {
			return u
		}
	}
	return filepath.Base(root)
}

// cloneProgress is where git reports clone progress. The spinner owns the
// output line when it is enabled, so progress is dropped then.
func (a *Assistant) cloneProgress() io.Writer {
	if a.cfg.EnableSpinner {
		return nil
	}
	return a.out
}
