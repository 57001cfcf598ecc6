package scan

import (
	"path/filepath"
	"strings"
)

// Extension returns the lower-case extension of name without the dot.
// Dot-files such as ".env" have no extension.
func Extension(name string) string {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") && strings.Count(base, ".") == 1 {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(base)), ".")
}

// DetectFileType returns a language identifier for a file name.
func DetectFileType(filename string) string {
	switch strings.ToLower(filepath.Base(filename)) {
	case "makefile", "gnumakefile":
		return "makefile"
	case "dockerfile":
		return "dockerfile"
	case "vagrantfile", "rakefile", "gemfile":
		return "ruby"
	case "procfile":
		return "procfile"
	case "cmakelists.txt":
		return "cmake"
	}

	ext := Extension(filename)
	if lang, ok := languages[ext]; ok {
		return lang
	}
	return ext
}

var languages = map[string]string{
	"go":       "go",
	"js":       "javascript",
	"jsx":      "javascript",
	"mjs":      "javascript",
	"cjs":      "javascript",
	"ts":       "typescript",
	"tsx":      "typescript",
	"mts":      "typescript",
	"cts":      "typescript",
	"py":       "python",
	"pyw":      "python",
	"pyi":      "python",
	"rs":       "rust",
	"rb":       "ruby",
	"rake":     "ruby",
	"java":     "java",
	"kt":       "kotlin",
	"kts":      "kotlin",
	"scala":    "scala",
	"c":        "c",
	"cpp":      "cpp",
	"cc":       "cpp",
	"cxx":      "cpp",
	"h":        "header",
	"hpp":      "header",
	"cs":       "csharp",
	"swift":    "swift",
	"php":      "php",
	"lua":      "lua",
	"sh":       "shell",
	"bash":     "shell",
	"zsh":      "shell",
	"sql":      "sql",
	"md":       "markdown",
	"markdown": "markdown",
	"rst":      "rst",
	"txt":      "text",
	"yaml":     "yaml",
	"yml":      "yaml",
	"json":     "json",
	"toml":     "toml",
	"xml":      "xml",
	"html":     "html",
	"htm":      "html",
	"css":      "css",
	"scss":     "css",
	"less":     "css",
	"vue":      "vue",
	"svelte":   "svelte",
	"proto":    "protobuf",
	"graphql":  "graphql",
	"tf":       "terraform",
	"hcl":      "hcl",
	"ex":       "elixir",
	"exs":      "elixir",
	"hs":       "haskell",
}
