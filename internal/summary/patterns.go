package summary

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/tara-vision/codedoctor/internal/scan"
)

// patternReadLimit caps how much of each file the extractors see.
const patternReadLimit = 100_000

// names holds what the extractors found in one file.
type names struct {
	imports    []string
	exports    []string
	components []string
	classes    []string
	functions  []string
}

type extractor func(content string) names

var (
	jsImportRe  = regexp.MustCompile(`(?:import|require)\s*\(?\s*['"]([^'"]+)['"]\s*\)?`)
	jsFromRe    = regexp.MustCompile(`from\s+['"]([^'"]+)['"]`)
	jsExportRes = []*regexp.Regexp{
		regexp.MustCompile(`export\s+(?:default\s+)?(?:async\s+)?(?:class|function|const|let|var|interface|type)\s+([A-Za-z0-9_$]+)`),
		regexp.MustCompile(`export\s+default\s+([A-Za-z0-9_$]+)`),
	}
	jsComponentRes = []*regexp.Regexp{
		regexp.MustCompile(`class\s+([A-Z][A-Za-z0-9_$]*)\s+extends\s+(?:React\.)?(?:Pure)?Component`),
		regexp.MustCompile(`(?:const|let|var)\s+([A-Z][A-Za-z0-9_$]*)\s*=\s*(?:\([^)]*\)|[A-Za-z0-9_$]+)\s*=>`),
		regexp.MustCompile(`function\s+([A-Z][A-Za-z0-9_$]*)\s*\(`),
	}

	pyImportRe   = regexp.MustCompile(`(?m)^\s*import\s+([A-Za-z0-9_.]+)`)
	pyFromRe     = regexp.MustCompile(`(?m)^\s*from\s+([A-Za-z0-9_.]+)\s+import`)
	pyClassRe    = regexp.MustCompile(`(?m)^\s*class\s+([A-Za-z0-9_]+)\s*(?:\([^)]*\))?\s*:`)
	pyFunctionRe = regexp.MustCompile(`(?m)^\s*(?:async\s+)?def\s+([A-Za-z0-9_]+)\s*\(`)

	javaImportRe = regexp.MustCompile(`(?m)^\s*import\s+(?:static\s+)?([A-Za-z0-9_.]+)`)
	javaClassRe  = regexp.MustCompile(`(?:class|interface|enum|object)\s+([A-Z][A-Za-z0-9_]*)`)

	goImportBlockRe = regexp.MustCompile(`(?s)import\s*\((.*?)\)`)
	goImportLineRe  = regexp.MustCompile(`import\s+(?:[A-Za-z0-9_.]+\s+)?"([^"]+)"`)
	goQuotedRe      = regexp.MustCompile(`"([^"]+)"`)
	goFunctionRe    = regexp.MustCompile(`(?m)^func\s+(?:\([^)]+\)\s+)?([A-Za-z0-9_]+)\s*[\[(]`)
	goTypeRe        = regexp.MustCompile(`(?m)^type\s+([A-Za-z0-9_]+)\s+(?:struct|interface)`)

	rsUseRe    = regexp.MustCompile(`(?m)^\s*use\s+([A-Za-z0-9_]+)`)
	rsFnRe     = regexp.MustCompile(`(?m)^\s*pub(?:\([^)]*\))?\s+(?:async\s+)?fn\s+([A-Za-z0-9_]+)`)
	rsTypeRe   = regexp.MustCompile(`(?m)^\s*pub(?:\([^)]*\))?\s+(?:struct|enum|trait)\s+([A-Za-z0-9_]+)`)
	rsExportRe = regexp.MustCompile(`(?m)^\s*pub\s+(?:mod|use)\s+([A-Za-z0-9_:]+)`)
)

// jsKeywords are captured by the bare "export default X" form.
var jsKeywords = map[string]bool{
	"async": true, "class": true, "function": true, "const": true, "let": true, "var": true,
}

var extractors = map[string]extractor{
	"js":   extractJS,
	"jsx":  extractJS,
	"ts":   extractJS,
	"tsx":  extractJS,
	"mjs":  extractJS,
	"py":   extractPython,
	"java": extractJava,
	"kt":   extractJava,
	"go":   extractGo,
	"rs":   extractRust,
}

func submatches(re *regexp.Regexp, content string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		out = append(out, m[1])
	}
	return out
}

func extractJS(content string) names {
	var n names
	n.imports = append(submatches(jsImportRe, content), submatches(jsFromRe, content)...)
	for _, re := range jsExportRes {
		for _, name := range submatches(re, content) {
			if !jsKeywords[name] {
				n.exports = append(n.exports, name)
			}
		}
	}
	for _, re := range jsComponentRes {
		n.components = append(n.components, submatches(re, content)...)
	}
	return n
}

func extractPython(content string) names {
	return names{
		imports:   append(submatches(pyImportRe, content), submatches(pyFromRe, content)...),
		classes:   submatches(pyClassRe, content),
		functions: submatches(pyFunctionRe, content),
	}
}

func extractJava(content string) names {
	return names{
		imports: submatches(javaImportRe, content),
		classes: submatches(javaClassRe, content),
	}
}

func extractGo(content string) names {
	var n names
	for _, block := range submatches(goImportBlockRe, content) {
		n.imports = append(n.imports, submatches(goQuotedRe, block)...)
	}
	n.imports = append(n.imports, submatches(goImportLineRe, content)...)
	n.functions = submatches(goFunctionRe, content)
	n.classes = submatches(goTypeRe, content)
	for _, name := range append(append([]string(nil), n.functions...), n.classes...) {
		if name != "" && name[0] >= 'A' && name[0] <= 'Z' {
			n.exports = append(n.exports, name)
		}
	}
	return n
}

func extractRust(content string) names {
	return names{
		imports:   submatches(rsUseRe, content),
		exports:   submatches(rsExportRe, content),
		classes:   submatches(rsTypeRe, content),
		functions: submatches(rsFnRe, content),
	}
}

// sourceFile is a file the pattern pass read, kept for import counting.
type sourceFile struct {
	path    string
	ext     string
	imports []string
}

// collectPatterns runs the extractors over up to perExt files of each
// supported extension. Results are sorted by extension; every list is
// deduplicated, sorted and capped at top.
func collectPatterns(root string, entries []scan.FileEntry, perExt, top int) ([]LanguagePatterns, []sourceFile, []string) {
	byExt := make(map[string][]scan.FileEntry)
	for _, e := range entries {
		if _, ok := extractors[e.Ext]; !ok {
			continue
		}
		if len(byExt[e.Ext]) < perExt {
			byExt[e.Ext] = append(byExt[e.Ext], e)
		}
	}

	exts := make([]string, 0, len(byExt))
	for ext := range byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	var (
		out     []LanguagePatterns
		sources []sourceFile
		notes   []string
	)
	for _, ext := range exts {
		var all names
		read := 0
		for _, e := range byExt[ext] {
			content, _, err := readPrefix(filepath.Join(root, filepath.FromSlash(e.RelPath)), patternReadLimit)
			if err != nil {
				notes = append(notes, "could not read "+e.RelPath+": "+err.Error())
				continue
			}
			read++
			n := extractors[ext](content)
			sources = append(sources, sourceFile{path: e.RelPath, ext: ext, imports: dedupe(n.imports)})
			all.imports = append(all.imports, n.imports...)
			all.exports = append(all.exports, n.exports...)
			all.components = append(all.components, n.components...)
			all.classes = append(all.classes, n.classes...)
			all.functions = append(all.functions, n.functions...)
		}
		lp := LanguagePatterns{
			Ext:        ext,
			Files:      read,
			Imports:    topSorted(all.imports, top),
			Exports:    topSorted(all.exports, top),
			Components: topSorted(all.components, top),
			Classes:    topSorted(all.classes, top),
			Functions:  topSorted(all.functions, top),
		}
		if !lp.empty() {
			out = append(out, lp)
		}
	}
	return out, sources, notes
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

func topSorted(items []string, limit int) []string {
	out := dedupe(items)
	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// readPrefix reads at most limit bytes of the file, cut back to a rune
// boundary. truncated reports whether the file was longer.
func readPrefix(path string, limit int) (content string, truncated bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(limit)+1))
	if err != nil {
		return "", false, err
	}
	if len(data) <= limit {
		return string(data), false, nil
	}
	return truncateRunes(string(data), limit), true, nil
}
