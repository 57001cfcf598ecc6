package scan

// DefaultExcludeDirs are directory names pruned during a walk. Entries may
// be doublestar globs.
var DefaultExcludeDirs = []string{
	".git",
	".hg",
	".svn",
	".codedoctor",
	"node_modules",
	"bower_components",
	"vendor",
	"__pycache__",
	".venv",
	"venv",
	"env",
	".idea",
	".vscode",
	"dist",
	"build",
	"target", // Rust, Maven
	".next",  // Next.js
	"coverage",
	".cache",
	".pytest_cache",
	".mypy_cache",
	".tox",
	".eggs",
	"*.egg-info",
	".bundle",
	".sass-cache",
	".terraform",
	".serverless",
}

// DefaultExcludePatterns are file globs skipped during a walk.
var DefaultExcludePatterns = []string{
	"*.lock",
	"*.sum",
	".DS_Store",
	"*.log",
	"*.min.js",
	"*.min.css",
	"*.map",
	"*.pyc",
	"*.pyo",
	"*.class",
	"*.o",
	"*.obj",
	"*.exe",
	"*.dll",
	"*.so",
	"*.dylib",
	"*.a",
	"*.lib",
	"*.bin",
	"*.out",
}

// Options configures Walk.
type Options struct {
	MaxFiles         int   // entries kept, later files count as SkipLimit; <= 0 means the default
	MaxFileSize      int64 // bytes; 0 disables the check
	ExcludeDirs      []string
	ExcludePatterns  []string
	IncludeHidden    bool
	RespectGitignore bool
}

// DefaultOptions returns the defaults used by the analyze command.
func DefaultOptions() Options {
	return Options{
		MaxFiles:         5000,
		MaxFileSize:      1_000_000,
		ExcludeDirs:      append([]string(nil), DefaultExcludeDirs...),
		ExcludePatterns:  append([]string(nil), DefaultExcludePatterns...),
		IncludeHidden:    false,
		RespectGitignore: true,
	}
}
