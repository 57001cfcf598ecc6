package summary

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/modfile"

	"github.com/tara-vision/codedoctor/internal/scan"
)

// Ecosystem names used in DependencyGroup.
const (
	EcosystemGo         = "go"
	EcosystemJavaScript = "javascript"
	EcosystemPython     = "python"
	EcosystemRust       = "rust"
)

var ecosystemOrder = []string{EcosystemJavaScript, EcosystemPython, EcosystemGo, EcosystemRust}

type manifestParser func(data []byte, deps depCounter) error

// manifests are read from the scan root only.
var manifests = map[string]struct {
	ecosystem string
	parse     manifestParser
}{
	"go.mod":           {EcosystemGo, parseGoMod},
	"package.json":     {EcosystemJavaScript, parsePackageJSON},
	"requirements.txt": {EcosystemPython, parseRequirements},
	"pyproject.toml":   {EcosystemPython, parsePyproject},
	"Cargo.toml":       {EcosystemRust, parseCargo},
}

type depCounter map[string]int

func (d depCounter) add(name string) {
	name = strings.TrimSpace(name)
	if name != "" {
		d[name]++
	}
}

// dependencies combines root manifests with import counts from the
// pattern pass. Each ecosystem keeps its top limit names by count, then
// name.
func dependencies(root string, entries []scan.FileEntry, sources []sourceFile, limit int) ([]DependencyGroup, []string) {
	counters := make(map[string]depCounter)
	counter := func(eco string) depCounter {
		c, ok := counters[eco]
		if !ok {
			c = make(depCounter)
			counters[eco] = c
		}
		return c
	}

	var notes []string
	var goModules []string
	for _, e := range entries {
		m, ok := manifests[e.RelPath]
		if !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, e.RelPath))
		if err == nil {
			err = m.parse(data, counter(m.ecosystem))
		}
		if err != nil {
			notes = append(notes, fmt.Sprintf("could not parse %s: %v", e.RelPath, err))
			continue
		}
		if e.RelPath == "go.mod" {
			for name := range counters[EcosystemGo] {
				goModules = append(goModules, name)
			}
		}
	}

	for _, src := range sources {
		switch src.ext {
		case "js", "jsx", "ts", "tsx", "mjs":
			for _, imp := range src.imports {
				if pkg := jsPackage(imp); pkg != "" {
					counter(EcosystemJavaScript).add(pkg)
				}
			}
		case "py":
			for _, imp := range src.imports {
				counter(EcosystemPython).add(strings.SplitN(imp, ".", 2)[0])
			}
		case "go":
			for _, imp := range src.imports {
				if mod := owningModule(goModules, imp); mod != "" {
					counter(EcosystemGo).add(mod)
				}
			}
		}
	}

	var groups []DependencyGroup
	for _, eco := range ecosystemOrder {
		c := counters[eco]
		if len(c) == 0 {
			continue
		}
		deps := make([]DepCount, 0, len(c))
		for name, n := range c {
			deps = append(deps, DepCount{Name: name, Count: n})
		}
		sort.Slice(deps, func(i, j int) bool {
			if deps[i].Count != deps[j].Count {
				return deps[i].Count > deps[j].Count
			}
			return deps[i].Name < deps[j].Name
		})
		if len(deps) > limit {
			deps = deps[:limit]
		}
		groups = append(groups, DependencyGroup{Ecosystem: eco, Deps: deps})
	}
	return groups, notes
}

// jsPackage maps an import specifier to its package name. Relative and
// absolute specifiers return "".
func jsPackage(spec string) string {
	if spec == "" || strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "/") {
		return ""
	}
	parts := strings.Split(spec, "/")
	if strings.HasPrefix(spec, "@") && len(parts) > 1 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

// owningModule returns the required module that provides importPath.
func owningModule(modules []string, importPath string) string {
	best := ""
	for _, m := range modules {
		if (importPath == m || strings.HasPrefix(importPath, m+"/")) && len(m) > len(best) {
			best = m
		}
	}
	return best
}

func parseGoMod(data []byte, deps depCounter) error {
	f, err := modfile.Parse("go.mod", data, nil)
	if err != nil {
		return err
	}
	for _, r := range f.Require {
		deps.add(r.Mod.Path)
	}
	return nil
}

func parsePackageJSON(data []byte, deps depCounter) error {
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return err
	}
	for name := range pkg.Dependencies {
		deps.add(name)
	}
	for name := range pkg.DevDependencies {
		if _, dup := pkg.Dependencies[name]; !dup {
			deps.add(name)
		}
	}
	return nil
}

func parseRequirements(data []byte, deps depCounter) error {
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}
		deps.add(requirementName(line))
	}
	return sc.Err()
}

// requirementName strips version specifiers, extras and markers from a
// PEP 508 requirement.
func requirementName(req string) string {
	if i := strings.IndexAny(req, "=<>!~[;@ \t"); i >= 0 {
		req = req[:i]
	}
	return strings.TrimSpace(req)
}

func parsePyproject(data []byte, deps depCounter) error {
	var doc struct {
		Project struct {
			Dependencies []string `toml:"dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Dependencies    map[string]any `toml:"dependencies"`
				DevDependencies map[string]any `toml:"dev-dependencies"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return err
	}
	for _, req := range doc.Project.Dependencies {
		deps.add(requirementName(req))
	}
	for name := range doc.Tool.Poetry.Dependencies {
		if name != "python" {
			deps.add(name)
		}
	}
	for name := range doc.Tool.Poetry.DevDependencies {
		deps.add(name)
	}
	return nil
}

func parseCargo(data []byte, deps depCounter) error {
	var doc struct {
		Dependencies      map[string]any `toml:"dependencies"`
		DevDependencies   map[string]any `toml:"dev-dependencies"`
		BuildDependencies map[string]any `toml:"build-dependencies"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return err
	}
	for _, table := range []map[string]any{doc.Dependencies, doc.DevDependencies, doc.BuildDependencies} {
		for name := range table {
			deps.add(name)
		}
	}
	return nil
}
