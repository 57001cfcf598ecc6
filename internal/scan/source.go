package scan

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/tara-vision/codedoctor/internal/log"
)

// IsRemote reports whether input looks like a git URL rather than a path.
func IsRemote(input string) bool {
	switch {
	case strings.HasPrefix(input, "git@"):
		return true
	case strings.HasPrefix(input, "https://"), strings.HasPrefix(input, "http://"), strings.HasPrefix(input, "ssh://"):
		return true
	}
	return false
}

// Resolve turns input into a local directory. Remote repositories are
// shallow-cloned into a temporary directory that cleanup removes. Local
// paths are returned unchanged with a no-op cleanup.
func Resolve(ctx context.Context, input string, progress io.Writer) (dir string, cleanup func(), err error) {
	if !IsRemote(input) {
		return input, func() {}, nil
	}

	tmp, err := os.MkdirTemp("", "codedoctor-clone-*")
	if err != nil {
		return "", nil, fmt.Errorf("create clone dir: %w", err)
	}
	cleanup = func() { _ = os.RemoveAll(tmp) }

	log.Component("scan").Info("cloning repository", "url", input, "dir", tmp)
	_, err = git.PlainCloneContext(ctx, tmp, false, &git.CloneOptions{
		URL:           input,
		Progress:      progress,
		ReferenceName: plumbing.HEAD,
		SingleBranch:  true,
		Depth:         1,
	})
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("clone %s: %w", input, err)
	}
	return tmp, cleanup, nil
}
