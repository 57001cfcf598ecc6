package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tara-vision/codedoctor/internal/scan"
)

type dirNode struct {
	name  string
	dirs  map[string]*dirNode
	files []string
	total int // files in this subtree
}

func newDirNode(name string) *dirNode {
	return &dirNode{name: name, dirs: make(map[string]*dirNode)}
}

func buildTree(entries []scan.FileEntry) *dirNode {
	root := newDirNode(".")
	for _, e := range entries {
		parts := strings.Split(e.RelPath, "/")
		n := root
		n.total++
		for _, dir := range parts[:len(parts)-1] {
			child, ok := n.dirs[dir]
			if !ok {
				child = newDirNode(dir)
				n.dirs[dir] = child
			}
			child.total++
			n = child
		}
		n.files = append(n.files, parts[len(parts)-1])
	}
	return root
}

// Layout renders the top depth levels of the tree as an indented outline.
// Directories come before files, each group sorted by name. A directory
// with more than maxChildren children lists the first maxChildren and a
// "… k more" line; directories at the depth limit show their file count.
func Layout(entries []scan.FileEntry, depth, maxChildren int) string {
	var b strings.Builder
	b.WriteString(".\n")
	renderDir(&b, buildTree(entries), 1, depth, maxChildren)
	return b.String()
}

func renderDir(b *strings.Builder, n *dirNode, level, depth, maxChildren int) {
	indent := strings.Repeat("  ", level)

	dirNames := make([]string, 0, len(n.dirs))
	for name := range n.dirs {
		dirNames = append(dirNames, name)
	}
	sort.Strings(dirNames)
	files := append([]string(nil), n.files...)
	sort.Strings(files)

	shown := 0
	for _, name := range dirNames {
		if shown == maxChildren {
			break
		}
		shown++
		child := n.dirs[name]
		if level >= depth {
			fmt.Fprintf(b, "%s%s/ (%s)\n", indent, name, plural(child.total, "file"))
			continue
		}
		fmt.Fprintf(b, "%s%s/\n", indent, name)
		renderDir(b, child, level+1, depth, maxChildren)
	}
	for _, name := range files {
		if shown == maxChildren {
			break
		}
		shown++
		fmt.Fprintf(b, "%s%s\n", indent, name)
	}

	remaining := len(dirNames) + len(files) - shown
	if remaining <= 0 {
		return
	}
	fmt.Fprintf(b, "%s… %d more files\n", indent, remaining)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
