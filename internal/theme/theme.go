// Package theme provides the Lip Gloss color palette and reusable styles
// for the Relay console. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/relaybot/console/internal/realtime"
)

// Connection state colors.
var (
	ColorIdle       = lipgloss.Color("#6b7280")
	ColorConnecting = lipgloss.Color("#d97706")
	ColorOpen       = lipgloss.Color("#22c55e")
	ColorClosed     = lipgloss.Color("#d97706")
	ColorFailed     = lipgloss.Color("#dc2626")
)

// Notification level colors.
var (
	ColorInfo    = lipgloss.Color("#3b82f6")
	ColorWarning = lipgloss.Color("#d97706")
	ColorError   = lipgloss.Color("#dc2626")
)

// UI chrome colors.
var (
	ColorBorder   = lipgloss.Color("#4b5563")
	ColorDimmed   = lipgloss.Color("#6b7280")
	ColorBright   = lipgloss.Color("#f9fafb")
	ColorAccent   = lipgloss.Color("#a855f7")
	ColorSelected = lipgloss.Color("#06b6d4")
)

// Reusable styles.
var (
	StyleHeader   = lipgloss.NewStyle().Bold(true).Foreground(ColorBright)
	StyleDimmed   = lipgloss.NewStyle().Foreground(ColorDimmed)
	StyleSelected = lipgloss.NewStyle().Bold(true).Foreground(ColorSelected)
	StyleAccent   = lipgloss.NewStyle().Foreground(ColorAccent)
	StyleError    = lipgloss.NewStyle().Foreground(ColorError)
	StyleBox      = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)

// StateColor maps a connection state to its indicator color.
func StateColor(s realtime.ConnState) lipgloss.Color {
	switch s {
	case realtime.StateOpen:
		return ColorOpen
	case realtime.StateConnecting:
		return ColorConnecting
	case realtime.StateClosed:
		return ColorClosed
	case realtime.StateFailed:
		return ColorFailed
	default:
		return ColorIdle
	}
}

// LevelColor maps a notification level to its color.
func LevelColor(level string) lipgloss.Color {
	switch level {
	case "warning":
		return ColorWarning
	case "error":
		return ColorError
	default:
		return ColorInfo
	}
}
