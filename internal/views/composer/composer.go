// Package composer is the test-broadcast screen: a single input whose
// contents are pushed to every connected client through the realtime
// channel.
package composer

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/relaybot/console/internal/realtime"
	"github.com/relaybot/console/internal/theme"
)

// SentMsg reports that a broadcast was handed to the realtime client.
type SentMsg struct{ Text string }

// Model is the composer screen.
type Model struct {
	rt    *realtime.Client
	Width int

	input textinput.Model
	last  string
}

func New(rt *realtime.Client) Model {
	in := textinput.New()
	in.Placeholder = "message to broadcast"
	in.CharLimit = 200
	return Model{rt: rt, input: in}
}

// Focus gives the input keyboard focus.
func (m Model) Focus() (Model, tea.Cmd) {
	return m, m.input.Focus()
}

// Blur removes keyboard focus.
func (m Model) Blur() Model {
	m.input.Blur()
	return m
}

// Focused reports whether the input owns the keyboard.
func (m Model) Focused() bool {
	return m.input.Focused()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SentMsg:
		m.last = msg.Text
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "enter" {
			text := m.input.Value()
			if text == "" {
				return m, nil
			}
			m.input.SetValue("")
			rt := m.rt
			return m, func() tea.Msg {
				// Dropped silently if the session is not open; the
				// status bar already shows the connection state.
				rt.Send(realtime.Message{
					Type:  "broadcast",
					Extra: map[string]any{"text": text},
				})
				return SentMsg{Text: text}
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	lines := []string{
		theme.StyleHeader.Render("BROADCAST"),
		m.input.View(),
	}
	if m.last != "" {
		lines = append(lines, theme.StyleDimmed.Render("  sent: "+m.last))
	}
	lines = append(lines, theme.StyleDimmed.Render("  enter:send"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
