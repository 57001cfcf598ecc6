package assistant

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tara-vision/codedoctor/internal/summary"
)

const frontMatterDelim = "---"

// FrontMatter is the YAML header of a generated document.
type FrontMatter struct {
	Repository  string    `yaml:"repository"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Model       string    `yaml:"model"`
	Fingerprint string    `yaml:"fingerprint"`
	Files       int       `yaml:"files"`
	Skipped     int       `yaml:"skipped"`
	Tokens      int       `yaml:"tokens"`
}

// RenderDocument produces the Markdown analysis document.
func RenderDocument(fm FrontMatter, sum *summary.Summary, sec Sections) (string, error) {
	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshal front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString(frontMatterDelim + "\n")
	b.Write(header)
	b.WriteString(frontMatterDelim + "\n\n")

	fmt.Fprintf(&b, "# %s Codebase Analysis\n\n", fm.Repository)

	b.WriteString("## Table of Contents\n\n")
	b.WriteString("1. [Overview](#overview)\n")
	b.WriteString("2. [Project Structure](#project-structure)\n")
	b.WriteString("3. [Code Patterns](#code-patterns)\n")
	b.WriteString("4. [Dependencies](#dependencies)\n")
	b.WriteString("5. [Implementation Examples](#implementation-examples)\n")
	b.WriteString("6. [Best Practices](#best-practices)\n")
	b.WriteString("7. [Recommendations](#recommendations)\n\n")

	writeSection(&b, "Overview", sec.Overview, "No overview available.")

	b.WriteString("## Project Structure\n\n")
	b.WriteString("```\n")
	b.WriteString(sum.Layout)
	if !strings.HasSuffix(sum.Layout, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n\n")

	b.WriteString("### File Statistics\n\n")
	fmt.Fprintf(&b, "- Total files: %d\n", fm.Files)
	for _, h := range sum.Histogram {
		fmt.Fprintf(&b, "- %s files: %d\n", h.Ext, h.Count)
	}
	b.WriteString("\n")

	if len(sum.EntryPoints) > 0 {
		b.WriteString("### Entry Points\n\n")
		for _, g := range sum.EntryPoints {
			fmt.Fprintf(&b, "#### %s\n\n", titleCase(g.Category))
			for _, p := range g.Paths {
				fmt.Fprintf(&b, "- `%s`\n", p)
			}
			b.WriteString("\n")
		}
	}

	writeSection(&b, "Code Patterns", sec.Patterns, "No patterns detected.")

	b.WriteString("## Dependencies\n\n")
	if len(sum.Dependencies) == 0 {
		b.WriteString("No dependencies detected.\n\n")
	}
	for _, g := range sum.Dependencies {
		fmt.Fprintf(&b, "### %s\n\n", titleCase(g.Ecosystem))
		for _, d := range g.Deps {
			fmt.Fprintf(&b, "- %s: %d occurrences\n", d.Name, d.Count)
		}
		b.WriteString("\n")
	}

	writeSection(&b, "Implementation Examples", sec.Examples, "No examples provided.")
	writeSection(&b, "Best Practices", sec.BestPractices, "No best practices defined.")
	writeSection(&b, "Recommendations", sec.Recommendations, "No recommendations provided.")

	return b.String(), nil
}

func writeSection(b *strings.Builder, title, body, fallback string) {
	fmt.Fprintf(b, "## %s\n\n", title)
	if strings.TrimSpace(body) == "" {
		body = fallback
	}
	b.WriteString(body)
	b.WriteString("\n\n")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// SplitFrontMatter separates the YAML header from the document body.
// Documents without a header return a nil FrontMatter and the full content.
func SplitFrontMatter(content []byte) (*FrontMatter, []byte, error) {
	open := []byte(frontMatterDelim + "\n")
	if !bytes.HasPrefix(content, open) {
		return nil, content, nil
	}
	rest := content[len(open):]
	end := bytes.Index(rest, []byte("\n"+frontMatterDelim+"\n"))
	if end < 0 {
		return nil, content, nil
	}

	var fm FrontMatter
	if err := yaml.Unmarshal(rest[:end+1], &fm); err != nil {
		return nil, content, fmt.Errorf("parse front matter: %w", err)
	}
	body := bytes.TrimLeft(rest[end+len(frontMatterDelim)+2:], "\n")
	return &fm, body, nil
}
