package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DirName is the per-project state directory
const DirName = ".codedoctor"

// ErrSessionNotFound is returned when a session file does not exist
var ErrSessionNotFound = errors.New("session not found")

// Manager handles all persistence operations for the .codedoctor directory
type Manager struct {
	rootDir      string // .codedoctor directory path
	mu           sync.RWMutex
	sessionIndex *SessionIndex
}

// NewManager creates a storage manager rooted next to the given directory
func NewManager(dir string) (*Manager, error) {
	m := &Manager{
		rootDir: filepath.Join(dir, DirName),
	}

	if err := m.ensureDirectories(); err != nil {
		return nil, err
	}

	if err := m.loadIndex(); err != nil {
		return nil, err
	}

	return m, nil
}

// GetRootDir returns the .codedoctor directory path
func (m *Manager) GetRootDir() string {
	return m.rootDir
}

func (m *Manager) ensureDirectories() error {
	dirs := []string{
		m.rootDir,
		filepath.Join(m.rootDir, "context"),
		filepath.Join(m.rootDir, "history"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

func (m *Manager) loadIndex() error {
	m.sessionIndex = &SessionIndex{}
	data, err := os.ReadFile(m.indexPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session index: %w", err)
	}
	if err := json.Unmarshal(data, m.sessionIndex); err != nil {
		return fmt.Errorf("failed to parse session index: %w", err)
	}
	return nil
}

// ============= Session Management =============

// CreateSession creates a new session for a document and makes it active
func (m *Manager) CreateSession(document string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	session := &Session{
		ID:        uuid.New().String(),
		Document:  document,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []ConversationMessage{},
	}

	if err := m.saveSession(session); err != nil {
		return nil, err
	}

	m.sessionIndex.Sessions = append(m.sessionIndex.Sessions, SessionMetadata{
		ID:        session.ID,
		Document:  document,
		CreatedAt: now,
		UpdatedAt: now,
	})
	m.sessionIndex.ActiveSessionID = session.ID

	if err := m.saveSessionIndex(); err != nil {
		return nil, err
	}

	return session, nil
}

// GetSession retrieves a session by ID
func (m *Manager) GetSession(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getSessionUnsafe(id)
}

// GetActiveSession returns the currently active session, or nil if none
func (m *Manager) GetActiveSession() (*Session, error) {
	m.mu.RLock()
	activeID := m.sessionIndex.ActiveSessionID
	m.mu.RUnlock()

	if activeID == "" {
		return nil, nil
	}

	return m.GetSession(activeID)
}

// SetActiveSession sets the active session by ID
func (m *Manager) SetActiveSession(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.getSessionUnsafe(id); err != nil {
		return err
	}
	m.sessionIndex.ActiveSessionID = id
	return m.saveSessionIndex()
}

// AddMessage appends a message to a session, trimming the oldest messages
// beyond MaxHistoryLength
func (m *Manager) AddMessage(sessionID string, msg ConversationMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.getSessionUnsafe(sessionID)
	if err != nil {
		return err
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	session.Messages = append(session.Messages, msg)
	session.UpdatedAt = msg.Timestamp

	if msg.Usage != nil {
		if session.TotalUsage == nil {
			session.TotalUsage = &TokenUsage{}
		}
		session.TotalUsage.Add(msg.Usage)
	}

	if len(session.Messages) > MaxHistoryLength {
		session.Messages = session.Messages[len(session.Messages)-MaxHistoryLength:]
	}

	if err := m.saveSession(session); err != nil {
		return err
	}

	for i := range m.sessionIndex.Sessions {
		if m.sessionIndex.Sessions[i].ID == sessionID {
			m.sessionIndex.Sessions[i].UpdatedAt = session.UpdatedAt
			m.sessionIndex.Sessions[i].MessageCount = len(session.Messages)
			break
		}
	}

	return m.saveSessionIndex()
}

// ListSessions returns metadata for all sessions
func (m *Manager) ListSessions() ([]SessionMetadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]SessionMetadata, len(m.sessionIndex.Sessions))
	copy(result, m.sessionIndex.Sessions)
	return result, nil
}

func (m *Manager) sessionPath(id string) string {
	return filepath.Join(m.rootDir, "history", fmt.Sprintf("session_%s.json", id))
}

func (m *Manager) indexPath() string {
	return filepath.Join(m.rootDir, "history", "sessions.json")
}

func (m *Manager) getSessionUnsafe(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	data, err := os.ReadFile(m.sessionPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}

	return &session, nil
}

func (m *Manager) saveSession(session *Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return WriteFileAtomic(m.sessionPath(session.ID), data)
}

func (m *Manager) saveSessionIndex() error {
	data, err := json.MarshalIndent(m.sessionIndex, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session index: %w", err)
	}
	return WriteFileAtomic(m.indexPath(), data)
}

// ============= Analysis Records =============

// SaveAnalysis persists the record of the latest analyze run
func (m *Manager) SaveAnalysis(rec *AnalysisRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal analysis record: %w", err)
	}
	return WriteFileAtomic(m.analysisPath(), data)
}

// LoadAnalysis loads the latest analysis record, or nil if none was saved
func (m *Manager) LoadAnalysis() (*AnalysisRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := os.ReadFile(m.analysisPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis record: %w", err)
	}

	var rec AnalysisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse analysis record: %w", err)
	}
	return &rec, nil
}

func (m *Manager) analysisPath() string {
	return filepath.Join(m.rootDir, "context", "analysis.json")
}

// WriteFileAtomic writes data to a sibling temp file and renames it into
// place, so readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
