// Package app wires the console together: it bridges the realtime
// client's callbacks into Bubble Tea messages and routes them to the
// screens.
package app

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/relaybot/console/internal/api"
	"github.com/relaybot/console/internal/bot"
	"github.com/relaybot/console/internal/realtime"
	"github.com/relaybot/console/internal/theme"
	"github.com/relaybot/console/internal/views/composer"
	"github.com/relaybot/console/internal/views/notifications"
	"github.com/relaybot/console/internal/views/status"
	"github.com/relaybot/console/internal/views/templates"
)

// Tab identifies the active screen.
type Tab int

const (
	TabTemplates Tab = iota
	TabNotifications
	TabComposer
	tabCount
)

// Messages bridged from the realtime client. Each arrives through the
// single event channel, so the UI observes connection changes and frames
// in the order they happened.
type (
	ConnectedMsg    struct{}
	DisconnectedMsg struct{}
	FrameMsg        struct{ Msg realtime.Message }
)

type statusTickMsg time.Time

type statusMsg struct {
	status *bot.Status
	err    error
}

// Model is the root Bubble Tea model.
type Model struct {
	rt   *realtime.Client
	api  *api.Client
	poll time.Duration

	events chan tea.Msg
	keys   KeyMap
	width  int
	height int
	tab    Tab

	statusBar     status.Model
	templates     templates.Model
	notifications notifications.Model
	composer      composer.Model
}

// New creates the root model and registers the realtime callbacks.
func New(rt *realtime.Client, apiClient *api.Client, pollInterval time.Duration) Model {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	events := make(chan tea.Msg, 64)
	rt.OnConnect(func() { events <- ConnectedMsg{} })
	rt.OnDisconnect(func() { events <- DisconnectedMsg{} })
	rt.OnMessage(func(m realtime.Message) { events <- FrameMsg{Msg: m} })

	return Model{
		rt:            rt,
		api:           apiClient,
		poll:          pollInterval,
		events:        events,
		keys:          DefaultKeyMap(),
		statusBar:     status.New(),
		templates:     templates.New(apiClient),
		notifications: notifications.New(apiClient),
		composer:      composer.New(rt),
	}
}

// Init activates the realtime session and kicks off the initial loads.
func (m Model) Init() tea.Cmd {
	rt := m.rt
	return tea.Batch(
		func() tea.Msg { rt.Activate(); return nil },
		m.waitEvent(),
		m.fetchStatus(),
		m.statusTick(),
		m.templates.Load(),
		m.notifications.Load(),
	)
}

// waitEvent re-arms the bridge: one realtime event per command.
func (m Model) waitEvent() tea.Cmd {
	ch := m.events
	return func() tea.Msg { return <-ch }
}

func (m Model) fetchStatus() tea.Cmd {
	client := m.api
	return func() tea.Msg {
		st, err := client.Status()
		return statusMsg{status: st, err: err}
	}
}

func (m Model) statusTick() tea.Cmd {
	return tea.Tick(m.poll, func(t time.Time) tea.Msg { return statusTickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.templates.Width = msg.Width
		m.templates.Height = msg.Height
		m.notifications.Width = msg.Width
		m.notifications.Height = msg.Height
		m.composer.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ConnectedMsg, DisconnectedMsg:
		m.statusBar.ConnState = m.rt.State()
		m.statusBar.Attempts, m.statusBar.Budget = m.rt.Attempts()
		return m, m.waitEvent()

	case FrameMsg:
		return m.handleFrame(msg.Msg)

	case statusTickMsg:
		return m, tea.Batch(m.fetchStatus(), m.statusTick())

	case statusMsg:
		m.statusBar.Bot = msg.status
		m.statusBar.BotErr = msg.err
		return m, nil
	}

	// Everything else is view data (load results, animation ticks) and
	// must reach its owner even while another tab is on screen.
	return m.broadcast(msg)
}

// handleFrame routes one realtime message by its type.
func (m Model) handleFrame(f realtime.Message) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch f.Type {
	case "notification":
		m.notifications, cmd = m.notifications.Push(notificationFromFrame(f))
	case "broadcast":
		n := bot.Notification{
			Title:     "broadcast: " + f.StringField("text"),
			Level:     bot.LevelInfo,
			CreatedAt: time.Now(),
		}
		m.notifications, cmd = m.notifications.Push(n)
	case "template_updated":
		cmd = m.templates.Load()
	}
	return m, tea.Batch(cmd, m.waitEvent())
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While a screen is capturing text input, only a few chords stay
	// global; everything else belongs to the screen.
	if m.capturingInput() {
		switch msg.String() {
		case "ctrl+c":
			return m.quit()
		default:
			return m.delegate(msg)
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab((m.tab + 1) % tabCount)

	case key.Matches(msg, m.keys.Templates):
		return m.switchTab(TabTemplates)

	case key.Matches(msg, m.keys.Notifications):
		return m.switchTab(TabNotifications)

	case key.Matches(msg, m.keys.Composer):
		return m.switchTab(TabComposer)

	case key.Matches(msg, m.keys.Reconnect):
		rt := m.rt
		return m, func() tea.Msg { rt.ForceReconnect(); return nil }
	}

	return m.delegate(msg)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.rt.Shutdown()
	return m, tea.Quit
}

func (m Model) switchTab(tab Tab) (tea.Model, tea.Cmd) {
	m.composer = m.composer.Blur()
	m.tab = tab
	if tab == TabComposer {
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Focus()
		return m, cmd
	}
	return m, nil
}

func (m Model) capturingInput() bool {
	switch m.tab {
	case TabTemplates:
		return m.templates.Editing()
	case TabComposer:
		return m.composer.Focused()
	default:
		return false
	}
}

// delegate forwards a message to the active screen only. Used for keys.
func (m Model) delegate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.tab {
	case TabTemplates:
		m.templates, cmd = m.templates.Update(msg)
	case TabNotifications:
		m.notifications, cmd = m.notifications.Update(msg)
	case TabComposer:
		m.composer, cmd = m.composer.Update(msg)
	}
	return m, cmd
}

// broadcast forwards a message to every screen.
func (m Model) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.templates, cmd = m.templates.Update(msg)
	cmds = append(cmds, cmd)
	m.notifications, cmd = m.notifications.Update(msg)
	cmds = append(cmds, cmd)
	m.composer, cmd = m.composer.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View renders the full console.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var body string
	switch m.tab {
	case TabNotifications:
		body = m.notifications.View()
	case TabComposer:
		body = m.composer.View()
	default:
		body = m.templates.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusBar.View(),
		m.tabBar(),
		body,
		theme.StyleDimmed.Render("  1:templates  2:notifications  3:broadcast  tab:next  r:reconnect  q:quit"),
	)
}

func (m Model) tabBar() string {
	labels := []string{"templates", "notifications", "broadcast"}
	if unread := m.notifications.Unread(); unread > 0 {
		labels[1] += lipgloss.NewStyle().Foreground(theme.ColorWarning).Render(" (" + strconv.Itoa(unread) + ")")
	}
	parts := make([]string, len(labels))
	for i, l := range labels {
		if Tab(i) == m.tab {
			parts[i] = theme.StyleSelected.Render("[" + l + "]")
		} else {
			parts[i] = theme.StyleDimmed.Render(" " + l + " ")
		}
	}
	return " " + parts[0] + " " + parts[1] + " " + parts[2]
}

// notificationFromFrame maps an open frame onto a notification record.
func notificationFromFrame(f realtime.Message) bot.Notification {
	n := bot.Notification{
		ID:    f.StringField("id"),
		Title: f.StringField("title"),
		Body:  f.StringField("body"),
		Level: f.StringField("level"),
	}
	if n.Level == "" {
		n.Level = bot.LevelInfo
	}
	if ts, err := time.Parse(time.RFC3339, f.Timestamp); err == nil {
		n.CreatedAt = ts
	} else {
		n.CreatedAt = time.Now()
	}
	return n
}
