package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/manifoldco/promptui"
)

// listDocuments returns the Markdown files directly inside dir, sorted.
func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	var docs []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if strings.EqualFold(filepath.Ext(name), ".md") {
			docs = append(docs, name)
		}
	}
	sort.Strings(docs)
	return docs, nil
}

// selectDocument shows an interactive picker of the Markdown files in dir.
// The analyze default output is preselected when present.
func selectDocument(dir string, defaultDoc string) (string, error) {
	docs, err := listDocuments(dir)
	if err != nil {
		return "", err
	}
	switch len(docs) {
	case 0:
		return "", fmt.Errorf("no Markdown documents in %s; run 'codedoctor analyze' first", dir)
	case 1:
		return filepath.Join(dir, docs[0]), nil
	}

	cursor := 0
	for i, d := range docs {
		if d == defaultDoc {
			cursor = i
		}
	}

	searcher := func(input string, index int) bool {
		doc := strings.ToLower(docs[index])
		return strings.Contains(doc, strings.ToLower(input))
	}

	prompt := promptui.Select{
		Label:        "Select an analysis document",
		Items:        docs,
		Size:         15,
		CursorPos:    cursor,
		Searcher:     searcher,
		HideSelected: true,
	}

	_, result, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("document selection cancelled: %w", err)
	}
	return filepath.Join(dir, result), nil
}

// slashCompleter completes interactive commands after "/".
func slashCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("/help"),
		readline.PcItem("/history"),
		readline.PcItem("/usage"),
		readline.PcItem("exit"),
	)
}
