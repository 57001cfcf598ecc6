package scan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/monochromegane/go-gitignore"

	"github.com/tara-vision/codedoctor/internal/log"
)

// binarySniffLen is how much of a file is inspected for binary content.
const binarySniffLen = 1024

// Walk traverses root and returns the files admitted by opts.
//
// Directories are visited in lexical order so an unchanged tree always
// produces the same result. Excluded and hidden directories are pruned
// without being read. Unreadable paths are recorded as skips and do not
// abort the walk.
func Walk(root string, opts Options) (*ScanResult, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, root)
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	// WalkDir does not follow a symlinked root.
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}

	w := newWalker(absRoot, opts)
	if err := filepath.WalkDir(absRoot, w.visit); err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	w.logger.Debug("scan complete",
		"root", absRoot,
		"considered", w.res.Considered,
		"skipped", w.res.Skipped,
		"pruned_dirs", w.res.PrunedDirs,
		"bytes", w.res.TotalBytes)
	return w.res, nil
}

type walker struct {
	root   string
	opts   Options
	res    *ScanResult
	ignore gitignore.IgnoreMatcher
	logger *slog.Logger
}

func newWalker(absRoot string, opts Options) *walker {
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = DefaultOptions().MaxFiles
	}
	w := &walker{
		root: absRoot,
		opts: opts,
		res: &ScanResult{
			Root:       absRoot,
			SkipCounts: make(map[SkipReason]int),
		},
		logger: log.Component("scan"),
	}
	if opts.RespectGitignore {
		w.ignore = loadGitignore(absRoot)
	}
	return w
}

func (w *walker) visit(path string, d fs.DirEntry, err error) error {
	rel, relErr := filepath.Rel(w.root, path)
	if relErr != nil {
		return relErr
	}
	rel = filepath.ToSlash(rel)

	if err != nil {
		// Unreadable directory (second callback after ReadDir failed) or
		// an entry that vanished between listing and stat.
		w.recordUnreadable(rel, err)
		if d != nil && d.IsDir() {
			return fs.SkipDir
		}
		return nil
	}

	if rel == "." {
		return nil
	}
	name := d.Name()

	if d.IsDir() {
		if w.pruneDir(name, path) {
			w.res.PrunedDirs++
			w.logger.Debug("pruned directory", "path", rel)
			return fs.SkipDir
		}
		return nil
	}

	if reason, skip := w.filter(rel, name, path, d); skip {
		w.res.skip(reason)
		return nil
	}

	if w.res.Considered >= w.opts.MaxFiles {
		w.res.skip(SkipLimit)
		return nil
	}

	info, err := d.Info()
	if err != nil {
		w.recordUnreadable(rel, err)
		return nil
	}
	if w.opts.MaxFileSize > 0 && info.Size() > w.opts.MaxFileSize {
		w.res.skip(SkipTooLarge)
		return nil
	}

	binary, err := isBinary(path)
	if err != nil {
		w.recordUnreadable(rel, err)
		return nil
	}
	if binary {
		w.res.skip(SkipBinary)
		return nil
	}

	w.res.add(FileEntry{
		RelPath: rel,
		Size:    info.Size(),
		Ext:     Extension(name),
	})
	return nil
}

func (w *walker) pruneDir(name, path string) bool {
	if !w.opts.IncludeHidden && isHidden(name) {
		return true
	}
	if matchesAny(w.opts.ExcludeDirs, name) {
		return true
	}
	return w.ignored(path, true)
}

func (w *walker) filter(rel, name, path string, d fs.DirEntry) (SkipReason, bool) {
	if !w.opts.IncludeHidden && isHidden(name) {
		return SkipHidden, true
	}
	if matchesAny(w.opts.ExcludeDirs, name) {
		return SkipExcluded, true
	}
	if matchesAny(w.opts.ExcludePatterns, name) || matchesAny(w.opts.ExcludePatterns, rel) {
		return SkipExcluded, true
	}
	if w.ignored(path, false) {
		return SkipIgnored, true
	}
	if !d.Type().IsRegular() {
		return SkipIrregular, true
	}
	return "", false
}

func (w *walker) ignored(path string, isDir bool) bool {
	if w.ignore == nil {
		return false
	}
	return w.ignore.Match(path, isDir)
}

func (w *walker) recordUnreadable(rel string, err error) {
	w.res.skip(SkipPermission)
	w.res.Skips = append(w.res.Skips, Skip{Path: rel, Reason: SkipPermission, Err: err})
	w.logger.Warn("skipping unreadable path", "path", rel, "error", err)
}

// loadGitignore reads the .gitignore at root, if any.
func loadGitignore(root string) gitignore.IgnoreMatcher {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	m, err := gitignore.NewGitIgnore(path, root)
	if err != nil {
		log.Component("scan").Warn("ignoring unreadable .gitignore", "error", err)
		return nil
	}
	return m
}

// visibleDotNames are dot-prefixed names walked even when hidden entries
// are skipped; they hold CI configuration worth sampling.
var visibleDotNames = map[string]bool{
	".github":        true,
	".gitlab-ci.yml": true,
}

func isHidden(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".") && !visibleDotNames[name]
}

// matchesAny reports whether name equals or glob-matches any pattern.
func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if p == name {
			return true
		}
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// isBinary reports whether the first block of the file contains a NUL
// byte or is not valid UTF-8.
func isBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, binarySniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false, err
	}
	buf = buf[:n]
	if bytes.IndexByte(buf, 0) >= 0 {
		return true, nil
	}
	return !validUTF8Prefix(buf, n == binarySniffLen), nil
}

// validUTF8Prefix tolerates a rune cut off by the sniff window.
func validUTF8Prefix(buf []byte, cut bool) bool {
	if utf8.Valid(buf) {
		return true
	}
	if !cut {
		return false
	}
	for i := 1; i < utf8.UTFMax && i <= len(buf); i++ {
		if utf8.Valid(buf[:len(buf)-i]) {
			return true
		}
	}
	return false
}
