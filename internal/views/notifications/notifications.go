// Package notifications renders the live notification panel. New
// entries arriving over the realtime feed slide in as a toast animated
// with a harmonica spring.
package notifications

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/relaybot/console/internal/api"
	"github.com/relaybot/console/internal/bot"
	"github.com/relaybot/console/internal/theme"
)

const animFPS = 30

// LoadedMsg delivers the notification backlog.
type LoadedMsg struct {
	Notifications []bot.Notification
	Err           error
}

// MarkedMsg reports a mark-read outcome.
type MarkedMsg struct{ Err error }

// frameTickMsg drives the toast animation.
type frameTickMsg time.Time

// Model is the notifications panel.
type Model struct {
	api    *api.Client
	Width  int
	Height int

	items    []bot.Notification
	selected int
	status   string

	// Toast animation state: offset slides from toastStart to 0.
	spring    harmonica.Spring
	offset    float64
	velocity  float64
	animating bool
}

func New(client *api.Client) Model {
	return Model{
		api:    client,
		spring: harmonica.NewSpring(harmonica.FPS(animFPS), 8.0, 0.6),
	}
}

// Load fetches the backlog, newest first.
func (m Model) Load() tea.Cmd {
	client := m.api
	return func() tea.Msg {
		ns, err := client.ListNotifications()
		return LoadedMsg{Notifications: ns, Err: err}
	}
}

// Push prepends a live notification and starts the toast animation.
func (m Model) Push(n bot.Notification) (Model, tea.Cmd) {
	m.items = append([]bot.Notification{n}, m.items...)
	if m.selected > 0 {
		m.selected++
	}
	m.offset = 40
	m.velocity = 0
	m.animating = true
	return m, frameTick()
}

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/animFPS, func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}

func (m Model) markRead() tea.Cmd {
	if m.selected >= len(m.items) {
		return nil
	}
	client := m.api
	id := m.items[m.selected].ID
	return func() tea.Msg {
		return MarkedMsg{Err: client.MarkNotificationRead(id)}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Err != nil {
			m.status = "load failed: " + msg.Err.Error()
			return m, nil
		}
		m.items = msg.Notifications
		m.status = ""
		return m, nil

	case MarkedMsg:
		if msg.Err != nil {
			m.status = "mark failed: " + msg.Err.Error()
			return m, nil
		}
		return m, m.Load()

	case frameTickMsg:
		if !m.animating {
			return m, nil
		}
		m.offset, m.velocity = m.spring.Update(m.offset, m.velocity, 0)
		if math.Abs(m.offset) < 0.5 && math.Abs(m.velocity) < 0.5 {
			m.offset = 0
			m.animating = false
			return m, nil
		}
		return m, frameTick()

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if len(m.items) > 0 {
				m.selected = (m.selected + 1) % len(m.items)
			}
		case "k", "up":
			if len(m.items) > 0 {
				m.selected = (m.selected - 1 + len(m.items)) % len(m.items)
			}
		case "enter", "m":
			return m, m.markRead()
		}
	}
	return m, nil
}

func (m Model) View() string {
	lines := []string{theme.StyleHeader.Render("NOTIFICATIONS")}

	if len(m.items) == 0 {
		lines = append(lines, theme.StyleDimmed.Render("  nothing yet"))
	}
	for i, n := range m.items {
		line := m.renderLine(i, n)
		if i == 0 && m.animating {
			// Toast: the newest entry slides in from the right.
			line = strings.Repeat(" ", max(0, int(m.offset))) + line
		}
		lines = append(lines, line)
		if i > 20 {
			lines = append(lines, theme.StyleDimmed.Render(fmt.Sprintf("  ... %d more", len(m.items)-i-1)))
			break
		}
	}
	if m.status != "" {
		lines = append(lines, theme.StyleDimmed.Render("  "+m.status))
	}
	lines = append(lines, theme.StyleDimmed.Render("  j/k:move  m:mark read"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderLine(i int, n bot.Notification) string {
	marker := "•"
	if n.Read {
		marker = " "
	}
	level := lipgloss.NewStyle().Foreground(theme.LevelColor(n.Level)).Render(fmt.Sprintf("%-7s", n.Level))
	title := n.Title
	if i == m.selected {
		title = theme.StyleSelected.Render(title)
	}
	ts := theme.StyleDimmed.Render(n.CreatedAt.Local().Format("15:04:05"))
	return fmt.Sprintf("  %s %s %s  %s", marker, level, ts, title)
}

// Unread counts notifications not yet marked read.
func (m Model) Unread() int {
	count := 0
	for _, n := range m.items {
		if !n.Read {
			count++
		}
	}
	return count
}
