package storage

import "time"

// MaxHistoryLength bounds the number of messages kept per session
const MaxHistoryLength = 100

// Session represents a question-and-answer session against one document
type Session struct {
	ID         string                `json:"id"`
	Document   string                `json:"document"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
	Messages   []ConversationMessage `json:"messages"`
	TotalUsage *TokenUsage           `json:"total_usage,omitempty"`
}

// ConversationMessage represents a single message in a session
type ConversationMessage struct {
	Role      string      `json:"role"` // user, assistant
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	Usage     *TokenUsage `json:"usage,omitempty"`
}

// TokenUsage tracks token consumption for an LLM call
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates another usage record into u.
func (u *TokenUsage) Add(other *TokenUsage) {
	if other == nil {
		return
	}
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// SessionIndex tracks all sessions
type SessionIndex struct {
	ActiveSessionID string            `json:"active_session_id"`
	Sessions        []SessionMetadata `json:"sessions"`
}

// SessionMetadata contains summary information about a session
type SessionMetadata struct {
	ID           string    `json:"id"`
	Document     string    `json:"document"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// AnalysisRecord is the persisted outcome of one analyze run. PromptContext
// holds the exact text sent to the model.
type AnalysisRecord struct {
	Root          string    `json:"root"`
	Document      string    `json:"document"`
	Model         string    `json:"model"`
	Fingerprint   string    `json:"fingerprint"`
	CreatedAt     time.Time `json:"created_at"`
	Files         int       `json:"files"`
	Skipped       int       `json:"skipped"`
	TotalBytes    int64     `json:"total_bytes"`
	PromptContext string    `json:"prompt_context"`
}
