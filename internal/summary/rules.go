package summary

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Rule selects files to sample. Pattern is a doublestar glob; patterns
// without a slash match the base name, others match the relative path.
type Rule struct {
	Name     string
	Kind     string
	Pattern  string
	Priority int
}

// Match reports whether relPath satisfies the rule.
func (r Rule) Match(relPath string) bool {
	target := relPath
	if !strings.Contains(r.Pattern, "/") {
		target = path.Base(relPath)
	}
	ok, err := doublestar.Match(r.Pattern, target)
	return err == nil && ok
}

// DefaultRules is evaluated in order; the first matching rule wins.
var DefaultRules = []Rule{
	// Manifests
	{Name: "go-module", Kind: "config", Pattern: "go.mod", Priority: 10},
	{Name: "npm-package", Kind: "config", Pattern: "package.json", Priority: 10},
	{Name: "cargo-manifest", Kind: "config", Pattern: "Cargo.toml", Priority: 10},
	{Name: "pyproject", Kind: "config", Pattern: "pyproject.toml", Priority: 10},
	{Name: "requirements", Kind: "config", Pattern: "requirements.txt", Priority: 9},
	{Name: "setup-py", Kind: "config", Pattern: "setup.py", Priority: 8},
	{Name: "maven-pom", Kind: "config", Pattern: "pom.xml", Priority: 8},
	{Name: "gradle-build", Kind: "config", Pattern: "build.gradle*", Priority: 8},

	// Documentation
	{Name: "readme", Kind: "documentation", Pattern: "README*", Priority: 9},
	{Name: "contributing", Kind: "documentation", Pattern: "CONTRIBUTING.md", Priority: 5},

	// Entry points
	{Name: "go-main", Kind: "entry_point", Pattern: "main.go", Priority: 8},
	{Name: "rust-main", Kind: "entry_point", Pattern: "main.rs", Priority: 8},
	{Name: "rust-lib", Kind: "entry_point", Pattern: "lib.rs", Priority: 7},
	{Name: "python-main", Kind: "entry_point", Pattern: "{main,app,__main__,manage,server}.py", Priority: 8},
	{Name: "js-main", Kind: "entry_point", Pattern: "{main,index,app,server}.{js,ts,mjs}", Priority: 7},
	{Name: "react-root", Kind: "entry_point", Pattern: "{index,App,main}.{jsx,tsx}", Priority: 7},
	{Name: "dotnet-main", Kind: "entry_point", Pattern: "{Program,Startup}.cs", Priority: 7},
	{Name: "java-main", Kind: "entry_point", Pattern: "{Main,Application}.java", Priority: 7},

	// Build and tooling
	{Name: "makefile", Kind: "build", Pattern: "Makefile", Priority: 7},
	{Name: "dockerfile", Kind: "build", Pattern: "Dockerfile", Priority: 6},
	{Name: "compose", Kind: "build", Pattern: "docker-compose.{yml,yaml}", Priority: 6},
	{Name: "tsconfig", Kind: "config", Pattern: "tsconfig.json", Priority: 6},
	{Name: "bundler-config", Kind: "config", Pattern: "{webpack,vite,rollup}.config.{js,ts}", Priority: 5},
	{Name: "ci-workflow", Kind: "ci", Pattern: ".github/workflows/*.{yml,yaml}", Priority: 4},
	{Name: "gitlab-ci", Kind: "ci", Pattern: ".gitlab-ci.yml", Priority: 4},

	// Module roots
	{Name: "python-package", Kind: "module", Pattern: "__init__.py", Priority: 3},
	{Name: "rust-module", Kind: "module", Pattern: "mod.rs", Priority: 3},
}

// matchRule returns the first rule in rules that matches relPath.
func matchRule(rules []Rule, relPath string) (Rule, bool) {
	for _, r := range rules {
		if r.Match(relPath) {
			return r, true
		}
	}
	return Rule{}, false
}
