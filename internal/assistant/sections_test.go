package assistant

import (
	"strings"
	"testing"
	"time"

	"github.com/tara-vision/codedoctor/internal/summary"
)

func TestParseSections(t *testing.T) {
	resp := "Intro text\n## Overview\nArch.\n\n# Patterns:\nMVC\n# best practices\nLint.\n# Overview\nsecond overview ignored\n"
	s := ParseSections(resp)
	if s.Overview != "Arch." {
		t.Errorf("Overview = %q", s.Overview)
	}
	if s.Patterns != "MVC" {
		t.Errorf("Patterns = %q", s.Patterns)
	}
	if s.BestPractices != "Lint." {
		t.Errorf("BestPractices = %q", s.BestPractices)
	}
	if s.Examples != "" || s.Recommendations != "" {
		t.Errorf("unexpected sections: %+v", s)
	}
	if s.Raw != resp {
		t.Error("Raw should keep the full response")
	}
}

func TestParseSectionsIgnoresInlineMentions(t *testing.T) {
	s := ParseSections("# Overview\nSee the # Patterns section below.\n")
	if s.Overview != "See the # Patterns section below." {
		t.Errorf("Overview = %q", s.Overview)
	}
	if s.Patterns != "" {
		t.Errorf("Patterns = %q", s.Patterns)
	}
}

func TestParseSectionsNoHeaders(t *testing.T) {
	s := ParseSections("\n  plain answer \n")
	if s.Overview != "plain answer" {
		t.Errorf("Overview = %q", s.Overview)
	}
}

func TestBuildAskPromptSinglePass(t *testing.T) {
	p := BuildAskPrompt("doc mentions {{question}}", "what about {{document}}?")
	if !strings.Contains(p, "doc mentions {{question}}") {
		t.Error("placeholder inside document was expanded")
	}
	if !strings.Contains(p, "what about {{document}}?") {
		t.Error("placeholder inside question was expanded")
	}
}

func TestBuildAnalysisPrompt(t *testing.T) {
	p := BuildAnalysisPrompt("# Project Statistics\n- Total files: 1\n\n")
	if !strings.Contains(p, "Here's data from the codebase analysis:\n\n# Project Statistics\n- Total files: 1\n\nPlease provide") {
		t.Errorf("context not embedded between instructions:\n%s", p)
	}
}

func TestRenderDocumentRoundTrip(t *testing.T) {
	fm := FrontMatter{
		Repository:  "demo",
		GeneratedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Model:       "m",
		Fingerprint: "0000000000000123",
		Files:       3,
		Skipped:     1,
		Tokens:      42,
	}
	sum := &summary.Summary{
		Layout:    ".\n  main.go\n",
		Histogram: []summary.ExtCount{{Ext: "go", Count: 3}},
		EntryPoints: []summary.EntryPointGroup{
			{Category: "cli", Paths: []string{"main.go"}},
		},
	}
	doc, err := RenderDocument(fm, sum, Sections{Overview: "Hello."})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"## Table of Contents",
		"```\n.\n  main.go\n```",
		"#### Cli\n\n- `main.go`",
		"No dependencies detected.",
		"No patterns detected.",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}

	got, body, err := SplitFrontMatter([]byte(doc))
	if err != nil || got == nil {
		t.Fatalf("SplitFrontMatter: %v, %v", got, err)
	}
	if !got.GeneratedAt.Equal(fm.GeneratedAt) {
		t.Errorf("generated_at = %v", got.GeneratedAt)
	}
	got.GeneratedAt = fm.GeneratedAt
	if *got != fm {
		t.Errorf("front matter = %+v, want %+v", *got, fm)
	}
	if !strings.HasPrefix(string(body), "# demo Codebase Analysis") {
		t.Errorf("body = %.30q", body)
	}
}

func TestSplitFrontMatterAbsent(t *testing.T) {
	fm, body, err := SplitFrontMatter([]byte("# Title\n"))
	if err != nil || fm != nil || string(body) != "# Title\n" {
		t.Errorf("got %v, %q, %v", fm, body, err)
	}
}
