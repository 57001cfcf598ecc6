package summary

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tara-vision/codedoctor/internal/scan"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func walk(t *testing.T, root string) *scan.ScanResult {
	t.Helper()
	res, err := scan.Walk(root, scan.DefaultOptions())
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	return res
}

func sampleRepo(t *testing.T) string {
	root := t.TempDir()
	writeFile(t, root, "go.mod", "module example.com/demo\n\ngo 1.22\n\nrequire github.com/spf13/cobra v1.8.1\n")
	writeFile(t, root, "README.md", "# Demo\n\nA demo project.\n")
	writeFile(t, root, "main.go", "package main\n\nimport \"github.com/spf13/cobra\"\n\nfunc main() { _ = cobra.Command{} }\n")
	writeFile(t, root, "internal/server/server.go", "package server\n\ntype Server struct{}\n\nfunc (s *Server) Start() error { return nil }\n")
	writeFile(t, root, "web/index.html", "<html></html>\n")
	writeFile(t, root, "config.yaml", "port: 8080\n")
	return root
}

func TestHistogramScenario(t *testing.T) {
	entries := []scan.FileEntry{
		{RelPath: "a.py", Size: 100, Ext: "py"},
		{RelPath: "README.md", Size: 50, Ext: "md"},
	}
	want := []ExtCount{{Ext: "md", Count: 1}, {Ext: "py", Count: 1}}
	if got := Histogram(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("Histogram = %v, want %v", got, want)
	}
}

func TestHistogramOrdering(t *testing.T) {
	entries := []scan.FileEntry{
		{RelPath: "a.go", Ext: "go"},
		{RelPath: "b.go", Ext: "go"},
		{RelPath: "Makefile", Ext: ""},
		{RelPath: "c.ts", Ext: "ts"},
		{RelPath: "d.js", Ext: "js"},
		{RelPath: "e.js", Ext: "js"},
	}
	want := []ExtCount{
		{Ext: "go", Count: 2},
		{Ext: "js", Count: 2},
		{Ext: NoExtension, Count: 1},
		{Ext: "ts", Count: 1},
	}
	if got := Histogram(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("Histogram = %v, want %v", got, want)
	}
}

func TestLayoutDepth(t *testing.T) {
	entries := []scan.FileEntry{
		{RelPath: "README.md"},
		{RelPath: "cmd/app/flags.go"},
		{RelPath: "cmd/app/main.go"},
		{RelPath: "go.mod"},
		{RelPath: "internal/x/y.go"},
	}
	want := ".\n" +
		"  cmd/\n" +
		"    app/ (2 files)\n" +
		"  internal/\n" +
		"    x/ (1 file)\n" +
		"  README.md\n" +
		"  go.mod\n"
	if got := Layout(entries, 2, 20); got != want {
		t.Errorf("Layout =\n%s\nwant\n%s", got, want)
	}
}

func TestLayoutMaxChildren(t *testing.T) {
	var entries []scan.FileEntry
	for i := 0; i < 25; i++ {
		entries = append(entries, scan.FileEntry{RelPath: filepath.ToSlash(filepath.Join("docs", string(rune('a'+i))+".md"))})
	}
	entries = append(entries, scan.FileEntry{RelPath: "z/sub/file.go"})

	got := Layout(entries, 2, 20)
	if !strings.Contains(got, "    … 5 more files\n") {
		t.Errorf("expected overflow line, got:\n%s", got)
	}
	if strings.Contains(got, "u.md") {
		t.Errorf("21st child should not be listed:\n%s", got)
	}

	got = Layout(entries, 1, 1)
	if !strings.Contains(got, "  docs/ (25 files)\n  … 1 more files\n") {
		t.Errorf("cut directories should use the same overflow label, got:\n%s", got)
	}
}

func TestSummarizeSectionOrder(t *testing.T) {
	root := sampleRepo(t)
	sum := New(DefaultOptions()).Summarize(walk(t, root))

	headings := []string{
		"# Project Statistics",
		"# Directory Layout",
		"# File Types",
		"# Entry Points",
		"# Dependencies",
		"# Code Patterns",
		"# Sampled Files",
	}
	last := -1
	for _, h := range headings {
		idx := strings.Index(sum.Text, "\n"+h+"\n")
		if h == headings[0] {
			idx = strings.Index(sum.Text, h+"\n")
		}
		if idx < 0 {
			t.Fatalf("missing section %q in:\n%s", h, sum.Text)
		}
		if idx < last {
			t.Errorf("section %q out of order", h)
		}
		last = idx
	}
	if sum.Truncated {
		t.Error("small repo should not be truncated")
	}
}

func TestSummarizeDeterministic(t *testing.T) {
	root := sampleRepo(t)
	s := New(DefaultOptions())
	first := s.Summarize(walk(t, root))
	second := s.Summarize(walk(t, root))
	if first.Text != second.Text {
		t.Error("summaries differ between runs")
	}
	if first.Fingerprint != second.Fingerprint {
		t.Error("fingerprints differ between runs")
	}
}

func TestSummarizeBounded(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", strings.Repeat("lorem ipsum ", 5000))
	writeFile(t, root, "package.json", `{"dependencies": {"react": "^18"}}`)
	for i := 0; i < 60; i++ {
		writeFile(t, root, filepath.Join("src", "mod"+string(rune('a'+i%26)), "f"+string(rune('a'+i/26))+".js"),
			"import x from 'lib"+string(rune('a'+i%26))+"';\nexport const Value = 1;\n")
	}
	res := walk(t, root)

	for _, max := range []int{1, 10, 30, 200, 1000, 5000, 100000} {
		opts := DefaultOptions()
		opts.MaxChars = max
		sum := New(opts).Summarize(res)
		if len(sum.Text) > max {
			t.Errorf("MaxChars=%d: len(Text) = %d", max, len(sum.Text))
		}
		if max <= 1000 && !sum.Truncated {
			t.Errorf("MaxChars=%d: expected Truncated", max)
		}
	}
}

func TestSamplingPriorityOrder(t *testing.T) {
	root := sampleRepo(t)
	sum := New(DefaultOptions()).Summarize(walk(t, root))

	var got []string
	for _, s := range sum.Samples {
		got = append(got, s.Path)
	}
	want := []string{"go.mod", "README.md", "main.go"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("samples = %v, want %v", got, want)
	}
	if sum.Samples[0].Rule != "go-module" || sum.Samples[0].Kind != "config" {
		t.Errorf("unexpected rule on first sample: %+v", sum.Samples[0])
	}
}

func TestCIWorkflowIsSampled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".github/workflows/ci.yml", "on: push\n")
	writeFile(t, root, "main.go", "package main\n")
	sum := New(DefaultOptions()).Summarize(walk(t, root))

	for _, s := range sum.Samples {
		if s.Path == ".github/workflows/ci.yml" {
			if s.Rule != "ci-workflow" {
				t.Errorf("workflow sampled by rule %q", s.Rule)
			}
			return
		}
	}
	t.Errorf("workflow not sampled: %+v", sum.Samples)
}

func TestSamplingStopsAtFirstBlockThatDoesNotFit(t *testing.T) {
	root := sampleRepo(t)
	res := walk(t, root)

	opts := DefaultOptions()
	opts.MaxSamples = 0
	base := New(opts).Summarize(res)

	goMod, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatal(err)
	}
	first := samplesHeading + renderSample(Sample{Path: "go.mod", Kind: "config", Content: string(goMod)})

	opts = DefaultOptions()
	opts.MaxChars = len(base.Text) + len(first) + 5
	sum := New(opts).Summarize(res)

	if len(sum.Samples) != 1 {
		t.Fatalf("samples = %d, want 1", len(sum.Samples))
	}
	if !sum.Truncated {
		t.Error("expected Truncated")
	}
	if sum.Text != base.Text+first {
		t.Errorf("unexpected text tail:\n%s", sum.Text[len(base.Text):])
	}
}

func TestSnippetCap(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", strings.Repeat("é", 100))

	opts := DefaultOptions()
	opts.SnippetChars = 11
	sum := New(opts).Summarize(walk(t, root))

	if len(sum.Samples) != 1 {
		t.Fatalf("samples = %d, want 1", len(sum.Samples))
	}
	s := sum.Samples[0]
	if !s.Truncated || s.Content != strings.Repeat("é", 5) {
		t.Errorf("sample = %q (truncated=%v)", s.Content, s.Truncated)
	}
}

func TestUnreadableSampleIsNoted(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := sampleRepo(t)
	res := walk(t, root)
	readme := filepath.Join(root, "README.md")
	if err := os.Chmod(readme, 0); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(readme, 0644)

	sum := New(DefaultOptions()).Summarize(res)
	for _, s := range sum.Samples {
		if s.Path == "README.md" {
			t.Error("unreadable file was sampled")
		}
	}
	if !strings.Contains(sum.Text, "> skipped sample README.md") {
		t.Errorf("missing note in text:\n%s", sum.Text)
	}
	if len(sum.Samples) != 2 {
		t.Errorf("samples = %d, want 2", len(sum.Samples))
	}
}

func TestEntryPoints(t *testing.T) {
	entries := []scan.FileEntry{
		{RelPath: "app.py"},
		{RelPath: "bin/run"},
		{RelPath: "cmd/tool/main.go"},
		{RelPath: "myapp.py"},
		{RelPath: "src/App.tsx"},
		{RelPath: "deploy/values.yaml"},
	}
	got := EntryPoints(entries, 10)
	want := []EntryPointGroup{
		{Category: "backend", Paths: []string{"app.py", "cmd/tool/main.go"}},
		{Category: "frontend", Paths: []string{"src/App.tsx"}},
		{Category: "cli", Paths: []string{"bin/run", "cmd/tool/main.go"}},
		{Category: "config", Paths: []string{"deploy/values.yaml"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EntryPoints = %+v\nwant %+v", got, want)
	}
}

func TestRuleMatch(t *testing.T) {
	tests := []struct {
		path string
		rule string
	}{
		{"go.mod", "go-module"},
		{"docs/README.rst", "readme"},
		{"src/index.ts", "js-main"},
		{".github/workflows/ci.yml", "ci-workflow"},
		{"pkg/__init__.py", "python-package"},
	}
	for _, tt := range tests {
		r, ok := matchRule(DefaultRules, tt.path)
		if !ok || r.Name != tt.rule {
			t.Errorf("matchRule(%q) = %q, %v; want %q", tt.path, r.Name, ok, tt.rule)
		}
	}
	if _, ok := matchRule(DefaultRules, "internal/util.go"); ok {
		t.Error("util.go should not match any rule")
	}
}

func TestTruncateRunes(t *testing.T) {
	s := "aé€b"
	for n := 0; n <= len(s)+1; n++ {
		got := truncateRunes(s, n)
		if len(got) > n {
			t.Errorf("truncateRunes(%d) = %q too long", n, got)
		}
		if !strings.HasPrefix(s, got) {
			t.Errorf("truncateRunes(%d) = %q not a prefix", n, got)
		}
		for _, r := range got {
			if r == '�' {
				t.Errorf("truncateRunes(%d) split a rune", n)
			}
		}
	}
}

func TestFenceFor(t *testing.T) {
	if got := fenceFor("plain"); got != "```" {
		t.Errorf("fenceFor(plain) = %q", got)
	}
	if got := fenceFor("x\n```go\ny\n```\n"); got != "````" {
		t.Errorf("fenceFor(fenced) = %q", got)
	}
}

func TestEstimator(t *testing.T) {
	if got := (Estimator{}).CountTokens("abcdefgh"); got != 2 {
		t.Errorf("CountTokens = %d, want 2", got)
	}
	if got := (Estimator{}).CountTokens(""); got != 0 {
		t.Errorf("CountTokens(empty) = %d, want 0", got)
	}
}
