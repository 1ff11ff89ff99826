// Package status renders the console's top bar: the realtime connection
// indicator and the bot's polled health.
package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/relaybot/console/internal/bot"
	"github.com/relaybot/console/internal/realtime"
	"github.com/relaybot/console/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Width int

	ConnState realtime.ConnState
	// Attempts/Budget mirror the realtime client's reconnect counter.
	Attempts int
	Budget   int
	Bot      *bot.Status
	BotErr   error
}

func New() Model {
	return Model{ConnState: realtime.StateIdle}
}

func (m Model) connIndicator() string {
	var label string
	switch m.ConnState {
	case realtime.StateOpen:
		label = "● connected"
	case realtime.StateConnecting:
		label = "◌ connecting..."
	case realtime.StateClosed:
		label = "○ reconnecting..."
		if m.Budget > 0 {
			label = fmt.Sprintf("○ reconnecting (%d/%d)...", m.Attempts, m.Budget)
		}
	case realtime.StateFailed:
		label = "✗ offline (r to retry)"
	default:
		label = "○ idle"
	}
	return lipgloss.NewStyle().Foreground(theme.StateColor(m.ConnState)).Render(label)
}

func (m Model) botSummary() string {
	if m.BotErr != nil {
		return theme.StyleError.Render("bot unreachable")
	}
	if m.Bot == nil {
		return theme.StyleDimmed.Render("bot: ...")
	}
	return fmt.Sprintf("bot %s  up %s  %.0f MB  %d chats",
		m.Bot.Version, formatUptime(m.Bot.UptimeSeconds), m.Bot.MemoryMB, m.Bot.ActiveChats)
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := m.connIndicator() + sep + m.botSummary()

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}

func formatUptime(seconds int64) string {
	switch {
	case seconds >= 3600:
		return fmt.Sprintf("%dh%dm", seconds/3600, (seconds%3600)/60)
	case seconds >= 60:
		return fmt.Sprintf("%dm%ds", seconds/60, seconds%60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
