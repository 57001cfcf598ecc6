package summary

import (
	"regexp"

	"github.com/tara-vision/codedoctor/internal/scan"
)

type entryCategory struct {
	name     string
	patterns []*regexp.Regexp
}

func mustPatterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

// entryCategories are checked in order for every file. A file may appear
// in several categories.
var entryCategories = []entryCategory{
	{
		name: "backend",
		patterns: mustPatterns(
			`(^|/)(app|server|main|index|application)\.py$`,
			`(^|/)(app|server|index|main)\.js$`,
			`(^|/)(app|server|index|main)\.ts$`,
			`(^|/)(Program|Startup)\.cs$`,
			`(^|/)main\.(go|rs)$`,
		),
	},
	{
		name: "frontend",
		patterns: mustPatterns(
			`(^|/)index\.html$`,
			`(^|/)(index|App|main)\.jsx?$`,
			`(^|/)(index|App|main)\.tsx?$`,
		),
	},
	{
		name: "cli",
		patterns: mustPatterns(
			`(^|/)(cli|__main__)\.py$`,
			`(^|/)bin/.+$`,
			`(^|/)cli\.js$`,
			`(^|/)cmd/[^/]+/main\.go$`,
		),
	},
	{
		name: "config",
		patterns: mustPatterns(
			`(^|/)(config\.[^/]+|[^/]+\.config\.[^/]+)$`,
			`(^|/)(package\.json|tsconfig\.json|poetry\.toml|pyproject\.toml|go\.mod|Cargo\.toml)$`,
			`(^|/)(Dockerfile|docker-compose\.ya?ml)$`,
			`\.ya?ml$`,
		),
	},
}

// EntryPoints groups entries that look like entry points, in walk order.
// Empty categories are omitted and each list holds at most limit paths.
func EntryPoints(entries []scan.FileEntry, limit int) []EntryPointGroup {
	var groups []EntryPointGroup
	for _, cat := range entryCategories {
		var paths []string
		for _, e := range entries {
			if len(paths) == limit {
				break
			}
			for _, re := range cat.patterns {
				if re.MatchString(e.RelPath) {
					paths = append(paths, e.RelPath)
					break
				}
			}
		}
		if len(paths) > 0 {
			groups = append(groups, EntryPointGroup{Category: cat.name, Paths: paths})
		}
	}
	return groups
}
