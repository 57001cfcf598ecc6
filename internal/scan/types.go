package scan

import "errors"

// ErrNotFound is returned when the scan root does not exist.
var ErrNotFound = errors.New("path not found")

// FileEntry is one file admitted by a scan.
type FileEntry struct {
	RelPath string `json:"rel_path"` // slash-separated, relative to the scan root
	Size    int64  `json:"size"`
	Ext     string `json:"ext"` // lower-case, no dot; empty when the name has none
}

// SkipReason explains why a file did not become an entry.
type SkipReason string

const (
	SkipLimit      SkipReason = "limit"      // MaxFiles already reached
	SkipExcluded   SkipReason = "excluded"   // denylist name or exclude pattern
	SkipHidden     SkipReason = "hidden"     // dot-file while hidden files are off
	SkipIgnored    SkipReason = "ignored"    // matched the root .gitignore
	SkipTooLarge   SkipReason = "too_large"  // above MaxFileSize
	SkipBinary     SkipReason = "binary"     // NUL bytes or invalid UTF-8 in the first block
	SkipIrregular  SkipReason = "irregular"  // symlink, device, socket, ...
	SkipPermission SkipReason = "permission" // could not be read
)

// Skip records an unreadable path. Other skip reasons are only counted.
type Skip struct {
	Path   string     `json:"path"`
	Reason SkipReason `json:"reason"`
	Err    error      `json:"-"`
}

// ScanResult is the ordered outcome of Walk.
//
// Considered always equals len(Entries) and never exceeds Options.MaxFiles.
// Considered+Skipped accounts for every file encountered, plus every
// directory that could not be read.
type ScanResult struct {
	Root       string             `json:"root"`
	Entries    []FileEntry        `json:"entries"`
	Considered int                `json:"considered"`
	Skipped    int                `json:"skipped"`
	TotalBytes int64              `json:"total_bytes"`
	PrunedDirs int                `json:"pruned_dirs"`
	SkipCounts map[SkipReason]int `json:"skip_counts"`
	Skips      []Skip             `json:"skips,omitempty"`
}

func (r *ScanResult) skip(reason SkipReason) {
	r.Skipped++
	r.SkipCounts[reason]++
}

func (r *ScanResult) add(e FileEntry) {
	r.Entries = append(r.Entries, e)
	r.Considered++
	r.TotalBytes += e.Size
}
