package summary

import (
	"sort"

	"github.com/tara-vision/codedoctor/internal/scan"
)

// NoExtension labels files without an extension in the histogram.
const NoExtension = "no_extension"

// Histogram counts entries per extension, ordered by descending count and
// then alphabetically.
func Histogram(entries []scan.FileEntry) []ExtCount {
	counts := make(map[string]int)
	for _, e := range entries {
		ext := e.Ext
		if ext == "" {
			ext = NoExtension
		}
		counts[ext]++
	}

	out := make([]ExtCount, 0, len(counts))
	for ext, n := range counts {
		out = append(out, ExtCount{Ext: ext, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Ext < out[j].Ext
	})
	return out
}
