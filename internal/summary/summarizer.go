// Package summary turns a scan result into the bounded prompt context
// sent to the model.
package summary

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"

	"github.com/tara-vision/codedoctor/internal/log"
	"github.com/tara-vision/codedoctor/internal/scan"
)

// TruncationMarker ends a Text that had to be cut inside its fixed sections.
const TruncationMarker = "\n… [context truncated]\n"

const samplesHeading = "\n# Sampled Files\n"

// Summarizer renders scan results. It holds no state between calls.
type Summarizer struct {
	opts  Options
	rules []Rule
}

// New creates a Summarizer using DefaultRules for sampling.
func New(opts Options) *Summarizer {
	return &Summarizer{opts: opts.withDefaults(), rules: DefaultRules}
}

// Options returns the effective options.
func (s *Summarizer) Options() Options {
	return s.opts
}

// Summarize builds the summary of res. Sections always appear in the same
// order and len(Text) never exceeds Options.MaxChars.
func (s *Summarizer) Summarize(res *scan.ScanResult) *Summary {
	logger := log.Component("summary")
	o := s.opts

	sum := &Summary{
		Histogram:   Histogram(res.Entries),
		Layout:      Layout(res.Entries, o.LayoutDepth, o.MaxChildren),
		EntryPoints: EntryPoints(res.Entries, o.TopItems),
	}

	patterns, sources, notes := collectPatterns(res.Root, res.Entries, o.PatternFiles, o.TopItems)
	sum.Patterns = patterns
	sum.Notes = append(sum.Notes, notes...)

	deps, notes := dependencies(res.Root, res.Entries, sources, o.TopItems)
	sum.Dependencies = deps
	sum.Notes = append(sum.Notes, notes...)

	var b strings.Builder
	writeStatistics(&b, res)
	writeLayout(&b, sum.Layout)
	writeHistogram(&b, sum.Histogram)
	writeEntryPoints(&b, sum.EntryPoints)
	writeDependencies(&b, sum.Dependencies)
	writePatterns(&b, sum.Patterns)
	text := b.String()

	if len(text) > o.MaxChars {
		sum.Text = cutWithMarker(text, o.MaxChars)
		sum.Truncated = true
	} else {
		sum.Text = s.appendSamples(text, res, sum)
	}

	for _, n := range sum.Notes {
		logger.Warn(n)
	}
	sum.Fingerprint = xxhash.Sum64String(sum.Text)
	logger.Debug("summary built",
		"chars", len(sum.Text),
		"samples", len(sum.Samples),
		"truncated", sum.Truncated,
		"fingerprint", fmt.Sprintf("%016x", sum.Fingerprint))
	return sum
}

type candidate struct {
	entry scan.FileEntry
	rule  Rule
}

// candidates returns the entries matched by a rule, by descending
// priority then path.
func (s *Summarizer) candidates(entries []scan.FileEntry) []candidate {
	var out []candidate
	for _, e := range entries {
		if r, ok := matchRule(s.rules, e.RelPath); ok {
			out = append(out, candidate{entry: e, rule: r})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].rule.Priority != out[j].rule.Priority {
			return out[i].rule.Priority > out[j].rule.Priority
		}
		return out[i].entry.RelPath < out[j].entry.RelPath
	})
	return out
}

// appendSamples adds snippet blocks to text until the next one would not
// fit under MaxChars.
func (s *Summarizer) appendSamples(text string, res *scan.ScanResult, sum *Summary) string {
	o := s.opts
	var b strings.Builder
	b.WriteString(text)
	headed := false

	// add appends chunk (with the section heading on first use) if it fits.
	add := func(chunk string) bool {
		if !headed {
			chunk = samplesHeading + chunk
		}
		if b.Len()+len(chunk) > o.MaxChars {
			return false
		}
		b.WriteString(chunk)
		headed = true
		return true
	}

	for _, c := range s.candidates(res.Entries) {
		if len(sum.Samples) >= o.MaxSamples {
			break
		}
		content, truncated, err := readPrefix(filepath.Join(res.Root, filepath.FromSlash(c.entry.RelPath)), o.SnippetChars)
		if err != nil {
			note := fmt.Sprintf("skipped sample %s: %v", c.entry.RelPath, err)
			sum.Notes = append(sum.Notes, note)
			add("\n> " + note + "\n")
			continue
		}
		sample := Sample{
			Path:      c.entry.RelPath,
			Rule:      c.rule.Name,
			Kind:      c.rule.Kind,
			Content:   content,
			Truncated: truncated,
		}
		if !add(renderSample(sample)) {
			sum.Truncated = true
			break
		}
		if truncated {
			sum.Truncated = true
		}
		sum.Samples = append(sum.Samples, sample)
	}
	return b.String()
}

func writeStatistics(b *strings.Builder, res *scan.ScanResult) {
	b.WriteString("# Project Statistics\n")
	fmt.Fprintf(b, "- Repository: %s\n", filepath.Base(res.Root))
	fmt.Fprintf(b, "- Total files: %d\n", res.Considered)
	fmt.Fprintf(b, "- Total size: %s\n", humanize.Bytes(uint64(res.TotalBytes)))
	if res.Skipped > 0 {
		reasons := make([]string, 0, len(res.SkipCounts))
		for r, n := range res.SkipCounts {
			if n > 0 {
				reasons = append(reasons, fmt.Sprintf("%s: %d", r, n))
			}
		}
		sort.Strings(reasons)
		fmt.Fprintf(b, "- Skipped files: %d (%s)\n", res.Skipped, strings.Join(reasons, ", "))
	}
	if res.PrunedDirs > 0 {
		fmt.Fprintf(b, "- Excluded directories: %d\n", res.PrunedDirs)
	}
}

func writeLayout(b *strings.Builder, layout string) {
	b.WriteString("\n# Directory Layout\n```\n")
	b.WriteString(layout)
	b.WriteString("```\n")
}

func writeHistogram(b *strings.Builder, hist []ExtCount) {
	b.WriteString("\n# File Types\n")
	for _, h := range hist {
		fmt.Fprintf(b, "- %s files: %d\n", h.Ext, h.Count)
	}
}

func writeEntryPoints(b *strings.Builder, groups []EntryPointGroup) {
	if len(groups) == 0 {
		return
	}
	b.WriteString("\n# Entry Points\n")
	for _, g := range groups {
		fmt.Fprintf(b, "\n## %s\n", capitalize(g.Category))
		for _, p := range g.Paths {
			fmt.Fprintf(b, "- %s\n", p)
		}
	}
}

func writeDependencies(b *strings.Builder, groups []DependencyGroup) {
	if len(groups) == 0 {
		return
	}
	b.WriteString("\n# Dependencies\n")
	for _, g := range groups {
		fmt.Fprintf(b, "\n## %s\n", capitalize(g.Ecosystem))
		for _, d := range g.Deps {
			fmt.Fprintf(b, "- %s: %s\n", d.Name, plural(d.Count, "occurrence"))
		}
	}
}

func writePatterns(b *strings.Builder, patterns []LanguagePatterns) {
	if len(patterns) == 0 {
		return
	}
	b.WriteString("\n# Code Patterns\n")
	for _, p := range patterns {
		fmt.Fprintf(b, "\n## %s Files\n", strings.ToUpper(p.Ext))
		writeList(b, "Common Imports", p.Imports)
		writeList(b, "Exports", p.Exports)
		writeList(b, "Components", p.Components)
		writeList(b, "Classes", p.Classes)
		writeList(b, "Functions", p.Functions)
	}
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}

func renderSample(s Sample) string {
	var b strings.Builder
	label := s.Kind
	if s.Truncated {
		label += ", truncated"
	}
	fence := fenceFor(s.Content)
	fmt.Fprintf(&b, "\n## %s (%s)\n", s.Path, label)
	fmt.Fprintf(&b, "%s%s\n", fence, scan.DetectFileType(path.Base(s.Path)))
	b.WriteString(s.Content)
	if !strings.HasSuffix(s.Content, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(fence)
	b.WriteByte('\n')
	return b.String()
}

// fenceFor returns a backtick fence longer than any run inside content.
func fenceFor(content string) string {
	longest, run := 0, 0
	for i := 0; i < len(content); i++ {
		if content[i] == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + s[size:]
}

// truncateRunes cuts s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// cutWithMarker shortens s to at most max bytes, ending in TruncationMarker
// when there is room for it.
func cutWithMarker(s string, max int) string {
	if max <= len(TruncationMarker) {
		return truncateRunes(s, max)
	}
	return truncateRunes(s, max-len(TruncationMarker)) + TruncationMarker
}
