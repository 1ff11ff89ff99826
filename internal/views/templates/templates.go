// Package templates is the CRUD screen for the bot's message templates:
// a list, an edit form, and a rendered markdown preview.
package templates

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/relaybot/console/internal/api"
	"github.com/relaybot/console/internal/bot"
	"github.com/relaybot/console/internal/theme"
)

type mode int

const (
	modeList mode = iota
	modeEdit
	modePreview
)

// LoadedMsg delivers the template list.
type LoadedMsg struct {
	Templates []bot.Template
	Err       error
}

// SavedMsg reports the outcome of a create or update.
type SavedMsg struct {
	Template *bot.Template
	Err      error
}

// DeletedMsg reports the outcome of a delete.
type DeletedMsg struct{ Err error }

// Model is the templates screen.
type Model struct {
	api    *api.Client
	Width  int
	Height int

	mode     mode
	items    []bot.Template
	selected int
	status   string

	editID    string // empty while creating
	nameInput textinput.Model
	bodyInput textarea.Model
	preview   string
}

func New(client *api.Client) Model {
	name := textinput.New()
	name.Placeholder = "template name"
	name.CharLimit = 80

	body := textarea.New()
	body.Placeholder = "message body (markdown)"

	return Model{api: client, nameInput: name, bodyInput: body}
}

// Editing reports whether the edit form currently owns the keyboard.
func (m Model) Editing() bool {
	return m.mode == modeEdit
}

// Load fetches the template list.
func (m Model) Load() tea.Cmd {
	client := m.api
	return func() tea.Msg {
		ts, err := client.ListTemplates()
		return LoadedMsg{Templates: ts, Err: err}
	}
}

func (m Model) save() tea.Cmd {
	client := m.api
	id := m.editID
	name := m.nameInput.Value()
	body := m.bodyInput.Value()
	return func() tea.Msg {
		var (
			t   *bot.Template
			err error
		)
		if id == "" {
			t, err = client.CreateTemplate(name, body)
		} else {
			t, err = client.UpdateTemplate(id, name, body)
		}
		return SavedMsg{Template: t, Err: err}
	}
}

func (m Model) deleteSelected() tea.Cmd {
	if m.selected >= len(m.items) {
		return nil
	}
	client := m.api
	id := m.items[m.selected].ID
	return func() tea.Msg {
		return DeletedMsg{Err: client.DeleteTemplate(id)}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Err != nil {
			m.status = "load failed: " + msg.Err.Error()
			return m, nil
		}
		m.items = msg.Templates
		if m.selected >= len(m.items) {
			m.selected = 0
		}
		m.status = ""
		return m, nil

	case SavedMsg:
		if msg.Err != nil {
			m.status = "save failed: " + msg.Err.Error()
			return m, nil
		}
		m.mode = modeList
		m.status = "saved " + msg.Template.Name
		return m, m.Load()

	case DeletedMsg:
		if msg.Err != nil {
			m.status = "delete failed: " + msg.Err.Error()
			return m, nil
		}
		m.status = "deleted"
		return m, m.Load()

	case tea.KeyMsg:
		switch m.mode {
		case modeEdit:
			return m.updateEdit(msg)
		case modePreview:
			m.mode = modeList
			return m, nil
		default:
			return m.updateList(msg)
		}
	}

	if m.mode == modeEdit {
		var cmd tea.Cmd
		if m.nameInput.Focused() {
			m.nameInput, cmd = m.nameInput.Update(msg)
		} else {
			m.bodyInput, cmd = m.bodyInput.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if len(m.items) > 0 {
			m.selected = (m.selected + 1) % len(m.items)
		}
	case "k", "up":
		if len(m.items) > 0 {
			m.selected = (m.selected - 1 + len(m.items)) % len(m.items)
		}
	case "n":
		m.editID = ""
		m.nameInput.SetValue("")
		m.bodyInput.SetValue("")
		m.mode = modeEdit
		m.nameInput.Focus()
		m.bodyInput.Blur()
		return m, textinput.Blink
	case "e", "enter":
		if m.selected < len(m.items) {
			t := m.items[m.selected]
			m.editID = t.ID
			m.nameInput.SetValue(t.Name)
			m.bodyInput.SetValue(t.Body)
			m.mode = modeEdit
			m.nameInput.Focus()
			m.bodyInput.Blur()
			return m, textinput.Blink
		}
	case "p":
		if m.selected < len(m.items) {
			m.preview = renderMarkdown(m.items[m.selected].Body, m.Width)
			m.mode = modePreview
		}
	case "x":
		return m, m.deleteSelected()
	}
	return m, nil
}

func (m Model) updateEdit(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		return m, nil
	case "tab":
		if m.nameInput.Focused() {
			m.nameInput.Blur()
			return m, m.bodyInput.Focus()
		}
		m.bodyInput.Blur()
		return m, m.nameInput.Focus()
	case "ctrl+s":
		if m.nameInput.Value() == "" {
			m.status = "name is required"
			return m, nil
		}
		return m, m.save()
	}

	var cmd tea.Cmd
	if m.nameInput.Focused() {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		m.bodyInput, cmd = m.bodyInput.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	switch m.mode {
	case modeEdit:
		return m.viewEdit()
	case modePreview:
		return m.viewPreview()
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	lines := []string{theme.StyleHeader.Render("TEMPLATES")}
	if len(m.items) == 0 {
		lines = append(lines, theme.StyleDimmed.Render("  no templates -- n to create one"))
	}
	for i, t := range m.items {
		prefix := "  "
		name := t.Name
		line := fmt.Sprintf("%s%-24s %s", prefix, truncate(name, 24),
			theme.StyleDimmed.Render(t.UpdatedAt.Format("2006-01-02 15:04")))
		if i == m.selected {
			line = theme.StyleSelected.Render("> " + truncate(name, 24))
		}
		lines = append(lines, line)
	}
	if m.status != "" {
		lines = append(lines, theme.StyleDimmed.Render("  "+m.status))
	}
	lines = append(lines, theme.StyleDimmed.Render("  j/k:move  n:new  e:edit  p:preview  x:delete"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) viewEdit() string {
	title := "NEW TEMPLATE"
	if m.editID != "" {
		title = "EDIT TEMPLATE"
	}
	sections := []string{
		theme.StyleHeader.Render(title),
		"Name: " + m.nameInput.View(),
		m.bodyInput.View(),
	}
	if m.status != "" {
		sections = append(sections, theme.StyleError.Render(m.status))
	}
	sections = append(sections, theme.StyleDimmed.Render("tab:switch field  ctrl+s:save  esc:cancel"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewPreview() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleHeader.Render("PREVIEW"),
		m.preview,
		theme.StyleDimmed.Render("any key to go back"),
	)
}

// renderMarkdown renders the template body the way the bot would show
// it. Falls back to the raw text if rendering fails.
func renderMarkdown(body string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(width-4, 100)),
	)
	if err != nil {
		return body
	}
	out, err := r.Render(body)
	if err != nil {
		return body
	}
	return out
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen-1] + "..."
	}
	return s
}
