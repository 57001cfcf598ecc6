package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewManagerCreatesLayout(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if m.GetRootDir() != filepath.Join(dir, DirName) {
		t.Errorf("root dir = %q", m.GetRootDir())
	}
	for _, sub := range []string{"history", "context"} {
		if info, err := os.Stat(filepath.Join(dir, DirName, sub)); err != nil || !info.IsDir() {
			t.Errorf("missing %s directory: %v", sub, err)
		}
	}
}

func TestSessionLifecycle(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	if s, err := m.GetActiveSession(); err != nil || s != nil {
		t.Fatalf("expected no active session, got %v, %v", s, err)
	}

	s, err := m.CreateSession("codebase_analysis.md")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	usage := &TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}
	if err := m.AddMessage(s.ID, ConversationMessage{Role: "user", Content: "what is this?"}); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if err := m.AddMessage(s.ID, ConversationMessage{Role: "assistant", Content: "a CLI", Usage: usage}); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if err := m.AddMessage(s.ID, ConversationMessage{Role: "assistant", Content: "again", Usage: usage}); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}

	// A fresh manager must see the persisted state.
	m2, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	active, err := m2.GetActiveSession()
	if err != nil || active == nil {
		t.Fatalf("GetActiveSession: %v, %v", active, err)
	}
	if active.ID != s.ID || active.Document != "codebase_analysis.md" {
		t.Errorf("active session = %+v", active)
	}
	if len(active.Messages) != 3 {
		t.Errorf("messages = %d, want 3", len(active.Messages))
	}
	if active.Messages[0].Timestamp.IsZero() {
		t.Error("timestamp not filled in")
	}
	if active.TotalUsage == nil || active.TotalUsage.TotalTokens != 30 {
		t.Errorf("total usage = %+v", active.TotalUsage)
	}

	list, _ := m2.ListSessions()
	if len(list) != 1 || list[0].MessageCount != 3 {
		t.Errorf("ListSessions = %+v", list)
	}
}

func TestAddMessageTrimsHistory(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s, _ := m.CreateSession("doc.md")
	for i := 0; i < MaxHistoryLength+5; i++ {
		msg := ConversationMessage{Role: "user", Content: string(rune('a' + i%26)), Timestamp: time.Unix(int64(i), 0)}
		if err := m.AddMessage(s.ID, msg); err != nil {
			t.Fatal(err)
		}
	}
	got, err := m.GetSession(s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Messages) != MaxHistoryLength {
		t.Fatalf("messages = %d, want %d", len(got.Messages), MaxHistoryLength)
	}
	if got.Messages[0].Timestamp.Unix() != 5 {
		t.Errorf("oldest kept message = %v, want the sixth", got.Messages[0].Timestamp.Unix())
	}
}

func TestGetSessionNotFound(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.GetSession("00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
	if _, err := m.GetSession("../../etc/passwd"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound for malformed id", err)
	}
	if err := m.SetActiveSession("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("SetActiveSession err = %v", err)
	}
}

func TestSetActiveSession(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	first, _ := m.CreateSession("a.md")
	if _, err := m.CreateSession("b.md"); err != nil {
		t.Fatal(err)
	}
	if err := m.SetActiveSession(first.ID); err != nil {
		t.Fatal(err)
	}
	active, _ := m.GetActiveSession()
	if active.Document != "a.md" {
		t.Errorf("active document = %q", active.Document)
	}
}

func TestAnalysisRecordRoundTrip(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	rec, err := m.LoadAnalysis()
	if err != nil || rec != nil {
		t.Fatalf("LoadAnalysis before save = %v, %v", rec, err)
	}

	want := &AnalysisRecord{
		Root:          "/src/app",
		Document:      "codebase_analysis.md",
		Model:         "gpt-4o",
		Fingerprint:   "9a3f00c1d2e4b5a6",
		CreatedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Files:         2,
		Skipped:       1,
		TotalBytes:    150,
		PromptContext: "# Project Statistics\n",
	}
	if err := m.SaveAnalysis(want); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}
	got, err := m.LoadAnalysis()
	if err != nil {
		t.Fatal(err)
	}
	if *got != *want {
		t.Errorf("LoadAnalysis = %+v, want %+v", got, want)
	}

	entries, _ := os.ReadDir(filepath.Join(m.GetRootDir(), "context"))
	if len(entries) != 1 {
		t.Errorf("expected only analysis.json in context dir, got %d entries", len(entries))
	}
}

func TestNewManagerCorruptIndex(t *testing.T) {
	dir := t.TempDir()
	hist := filepath.Join(dir, DirName, "history")
	if err := os.MkdirAll(hist, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(hist, "sessions.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewManager(dir); err == nil {
		t.Error("expected error for corrupt session index")
	}
}
