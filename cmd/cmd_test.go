package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/tara-vision/codedoctor/internal/assistant"
	"github.com/tara-vision/codedoctor/internal/provider"
	"github.com/tara-vision/codedoctor/internal/storage"
	"github.com/tara-vision/codedoctor/internal/summary"
	"github.com/tara-vision/codedoctor/internal/ui"
)

type stubProvider struct {
	info       provider.Info
	response   string
	calls      int
	lastPrompt string
}

func (p *stubProvider) Info() *provider.Info { return &p.info }

func (p *stubProvider) DetectModels(ctx context.Context) ([]string, error) {
	return []string{"stub-model"}, nil
}

func (p *stubProvider) Complete(ctx context.Context, req provider.Request) (*provider.Response, error) {
	p.calls++
	p.lastPrompt = req.Prompt
	return &provider.Response{
		Text:  p.response,
		Model: p.info.Model,
		Usage: provider.Usage{PromptTokens: 20, CompletionTokens: 5, TotalTokens: 25},
	}, nil
}

func (p *stubProvider) SetModel(model string) { p.info.Model = model }

// useStub routes command assistants to p and records the config they got.
func useStub(t *testing.T, p *stubProvider) *assistant.Config {
	t.Helper()
	var got assistant.Config
	old := newAssistant
	newAssistant = func(ctx context.Context, cfg assistant.Config) (*assistant.Assistant, error) {
		got = cfg
		return assistant.New(ctx, cfg,
			assistant.WithProvider(p),
			assistant.WithTokenCounter(summary.Estimator{}),
			assistant.WithOutput(io.Discard))
	}
	t.Cleanup(func() { newAssistant = old })
	return &got
}

// withHome points $HOME at a fresh directory so config and history stay
// inside the test.
func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func fixtureRepo(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "repo")
	writeFile(t, filepath.Join(root, "README.md"), "# repo\n")
	writeFile(t, filepath.Join(root, "app.py"), "import flask\n\ndef main():\n    pass\n")
	return root
}

func TestAnalyzeCommand(t *testing.T) {
	withHome(t)
	p := &stubProvider{info: provider.Info{Name: "stub"}, response: "# Overview\nA Flask app.\n"}
	useStub(t, p)
	root := fixtureRepo(t)
	outDir := t.TempDir()
	outPath := filepath.Join(outDir, "analysis.md")

	out, err := execute(t, "analyze", root, "--output", outPath, "--no-spinner", "--save-context")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(out, "Analysis complete") || !strings.Contains(out, "2 analyzed") {
		t.Errorf("unexpected output:\n%s", out)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "A Flask app.") {
		t.Errorf("document missing model overview:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(outDir, storage.DirName, "context", "analysis.json")); err != nil {
		t.Errorf("analysis record not saved: %v", err)
	}
}

func TestAnalyzeCommandMissingRoot(t *testing.T) {
	withHome(t)
	p := &stubProvider{info: provider.Info{Name: "stub"}}
	useStub(t, p)
	outPath := filepath.Join(t.TempDir(), "analysis.md")

	_, err := execute(t, "analyze", filepath.Join(t.TempDir(), "missing"), "-o", outPath, "--no-spinner")
	if err == nil {
		t.Fatal("expected error for missing root")
	}
	if p.calls != 0 {
		t.Error("model called for missing root")
	}
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Error("document written despite failure")
	}
}

func TestAskCommand(t *testing.T) {
	withHome(t)
	p := &stubProvider{info: provider.Info{Name: "stub"}, response: "Routes live in app.py."}
	useStub(t, p)
	doc := filepath.Join(t.TempDir(), "analysis.md")
	writeFile(t, doc, "# repo Codebase Analysis\n")

	out, err := execute(t, "ask", doc, "where", "are", "routes?", "--raw", "--no-spinner")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if out != "Routes live in app.py.\n" {
		t.Errorf("output = %q", out)
	}
}

func TestAskCommandNoMarkdown(t *testing.T) {
	withHome(t)
	p := &stubProvider{info: provider.Info{Name: "stub"}, response: "# Routes\n\nSee **app.py**."}
	useStub(t, p)
	doc := filepath.Join(t.TempDir(), "analysis.md")
	writeFile(t, doc, "# repo Codebase Analysis\n")

	out, err := execute(t, "ask", doc, "routes?", "--no-markdown", "--no-spinner")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if out != "# Routes\n\nSee **app.py**.\n" {
		t.Errorf("--no-markdown should print the answer untouched, got %q", out)
	}
}

func TestAskCommandErrors(t *testing.T) {
	withHome(t)
	p := &stubProvider{info: provider.Info{Name: "stub"}, response: "x"}
	useStub(t, p)

	_, err := execute(t, "ask", filepath.Join(t.TempDir(), "missing.md"), "hello")
	if !errors.Is(err, assistant.ErrDocumentNotFound) {
		t.Errorf("err = %v, want ErrDocumentNotFound", err)
	}

	doc := filepath.Join(t.TempDir(), "analysis.md")
	writeFile(t, doc, "# doc\n")
	_, err = execute(t, "ask", doc, "  ")
	if !errors.Is(err, assistant.ErrEmptyQuestion) {
		t.Errorf("err = %v, want ErrEmptyQuestion", err)
	}

	if _, err := execute(t, "ask", doc); err == nil {
		t.Error("expected usage error without a question")
	}
	if p.calls != 0 {
		t.Error("model called for invalid input")
	}
}

func TestConfigLayers(t *testing.T) {
	p := &stubProvider{info: provider.Info{Name: "stub"}, response: "ok"}
	cfg := useStub(t, p)

	home := withHome(t)
	writeFile(t, filepath.Join(home, ".codedoctor", "config.yaml"),
		"model: from-file\nsummary:\n  max_chars: 1234\nscan:\n  exclude:\n    - \"*.gen.go\"\n")
	t.Setenv("CLAUDE_API_KEY", "sk-test")
	t.Setenv("CODEDOCTOR_SCAN_MAX_FILES", "7")

	root := fixtureRepo(t)
	outPath := filepath.Join(t.TempDir(), "analysis.md")
	if _, err := execute(t, "analyze", root, "-o", outPath, "--no-spinner"); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if cfg.Model != "from-file" {
		t.Errorf("Model = %q, want value from config file", cfg.Model)
	}
	if cfg.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want CLAUDE_API_KEY", cfg.APIKey)
	}
	if cfg.Vendor != "anthropic" {
		t.Errorf("Vendor = %q, want anthropic default without host", cfg.Vendor)
	}
	if cfg.Scan.MaxFiles != 7 {
		t.Errorf("Scan.MaxFiles = %d, want env override", cfg.Scan.MaxFiles)
	}
	if cfg.Summary.MaxChars != 1234 {
		t.Errorf("Summary.MaxChars = %d", cfg.Summary.MaxChars)
	}
	if !contains(cfg.Scan.ExcludePatterns, "*.gen.go") || !contains(cfg.Scan.ExcludeDirs, "node_modules") {
		t.Errorf("exclude lists should extend the defaults: %v / %v", cfg.Scan.ExcludePatterns, cfg.Scan.ExcludeDirs)
	}
	if cfg.EnableSpinner {
		t.Error("--no-spinner not applied")
	}

	if _, err := execute(t, "analyze", root, "-o", outPath, "--no-spinner", "--model", "from-flag", "--host", "http://localhost:8000"); err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "from-flag" || cfg.Vendor != "" {
		t.Errorf("flags should win: model %q vendor %q", cfg.Model, cfg.Vendor)
	}
}

func TestHostedModelConfig(t *testing.T) {
	p := &stubProvider{info: provider.Info{Name: "stub"}, response: "ok"}
	cfg := useStub(t, p)
	withHome(t)
	root := fixtureRepo(t)
	outPath := filepath.Join(t.TempDir(), "analysis.md")

	if _, err := execute(t, "analyze", root, "-o", outPath, "--no-spinner"); err != nil {
		t.Fatal(err)
	}
	if cfg.HostedModel != provider.DefaultAnthropicModel {
		t.Errorf("HostedModel = %q, want built-in default", cfg.HostedModel)
	}

	t.Setenv("CODEDOCTOR_ANTHROPIC_MODEL", "claude-next")
	if _, err := execute(t, "analyze", root, "-o", outPath, "--no-spinner"); err != nil {
		t.Fatal(err)
	}
	if cfg.HostedModel != "claude-next" {
		t.Errorf("HostedModel = %q, want env override", cfg.HostedModel)
	}

	if _, err := execute(t, "analyze", root, "-o", outPath, "--no-spinner", "--vendor", "openai"); err != nil {
		t.Fatal(err)
	}
	if cfg.HostedModel != provider.DefaultOpenAIModel {
		t.Errorf("HostedModel = %q, want OpenAI default", cfg.HostedModel)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestVersionCommand(t *testing.T) {
	withHome(t)
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "codedoctor "+Version) {
		t.Errorf("version output = %q", out)
	}
}

func TestListDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.md"), "")
	writeFile(t, filepath.Join(dir, "A.MD"), "")
	writeFile(t, filepath.Join(dir, ".hidden.md"), "")
	writeFile(t, filepath.Join(dir, "notes.txt"), "")
	writeFile(t, filepath.Join(dir, "sub", "c.md"), "")

	docs, err := listDocuments(dir)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(docs, ",") != "A.MD,b.md" {
		t.Errorf("docs = %v", docs)
	}

	only := t.TempDir()
	writeFile(t, filepath.Join(only, "codebase_analysis.md"), "")
	got, err := selectDocument(only, "codebase_analysis.md")
	if err != nil || got != filepath.Join(only, "codebase_analysis.md") {
		t.Errorf("selectDocument single = %q, %v", got, err)
	}
	if _, err := selectDocument(t.TempDir(), ""); err == nil {
		t.Error("expected error when no documents exist")
	}
}

func TestChatSession(t *testing.T) {
	p := &stubProvider{info: provider.Info{Name: "stub"}, response: "It is a Flask app."}
	a, err := assistant.New(context.Background(), assistant.Config{},
		assistant.WithProvider(p),
		assistant.WithTokenCounter(summary.Estimator{}),
		assistant.WithOutput(io.Discard))
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	docPath := filepath.Join(dir, "analysis.md")
	writeFile(t, docPath, "# repo Codebase Analysis\n")
	doc, err := assistant.LoadDocument(docPath)
	if err != nil {
		t.Fatal(err)
	}

	renderer := ui.NewRendererWithConfig(&ui.Config{EnableMarkdown: false})
	var out, errOut bytes.Buffer
	c := newChat(a, doc, renderer, &out, &errOut)
	c.openSession()
	ctx := context.Background()

	for _, line := range []string{"", "/help", "what is this?", "/usage", "/bogus"} {
		if c.handle(ctx, line) {
			t.Fatalf("%q should not end the session", line)
		}
	}
	got := out.String()
	for _, want := range []string{"/history", "It is a Flask app.", "Total tokens:      25", "Unknown command: /bogus"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	if !strings.Contains(p.lastPrompt, "# repo Codebase Analysis") {
		t.Errorf("prompt missing document:\n%s", p.lastPrompt)
	}

	// Each question sees the document as it is on disk now.
	writeFile(t, docPath, "# regenerated analysis\n")
	c.handle(ctx, "and now?")
	if !strings.Contains(p.lastPrompt, "# regenerated analysis") {
		t.Errorf("prompt should use the re-read document:\n%s", p.lastPrompt)
	}

	// A vanished document falls back to the copy already loaded.
	if err := os.Remove(docPath); err != nil {
		t.Fatal(err)
	}
	c.handle(ctx, "still there?")
	if !strings.Contains(p.lastPrompt, "# regenerated analysis") || errOut.Len() != 0 {
		t.Errorf("missing document should fall back silently: %q / %q", p.lastPrompt, errOut.String())
	}
	writeFile(t, docPath, "# regenerated analysis\n")

	out.Reset()
	c.handle(ctx, "/history")
	if !strings.Contains(out.String(), "what is this?") {
		t.Errorf("history missing question:\n%s", out.String())
	}
	if !c.handle(ctx, "exit") {
		t.Error("exit should end the session")
	}

	// A new chat on the same document resumes the stored session.
	var out2 bytes.Buffer
	c2 := newChat(a, doc, renderer, &out2, &errOut)
	c2.openSession()
	if c2.session == nil || c2.session.ID != c.session.ID {
		t.Fatalf("session not resumed: %+v", c2.session)
	}
	if len(c2.session.Messages) != 6 || c2.usage.TotalTokens != 75 {
		t.Errorf("resumed session = %d messages, %d tokens", len(c2.session.Messages), c2.usage.TotalTokens)
	}
	if !strings.Contains(out2.String(), "Resuming session with 6 previous messages") {
		t.Errorf("missing resume message:\n%s", out2.String())
	}
}
