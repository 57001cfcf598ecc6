package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary = lipgloss.Color("#0EA5E9") // Sky
	Success = lipgloss.Color("#10B981") // Green
	Error   = lipgloss.Color("#EF4444") // Red
	Warning = lipgloss.Color("#F59E0B") // Amber
	Muted   = lipgloss.Color("#6B7280") // Gray
	Info    = lipgloss.Color("#3B82F6") // Blue
)

// Text styles
var (
	Bold   = lipgloss.NewStyle().Bold(true)
	Italic = lipgloss.NewStyle().Italic(true)
	Subtle = lipgloss.NewStyle().Foreground(Muted)
)

// UI element styles
var (
	PromptStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	// Title style for the interactive banner
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Primary)

	SpinnerStyle = lipgloss.NewStyle().Foreground(Primary)

	SessionStyle = lipgloss.NewStyle().Foreground(Info)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
)

// Icon constants
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconArrow   = "→"
	IconWarning = "⚠"
	IconInfo    = "ℹ"
	IconFolder  = "📁"
	IconSession = "📝"
	IconTip     = "💡"
	IconStar    = "🩺"
)
