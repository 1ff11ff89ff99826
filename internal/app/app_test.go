package app

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/relaybot/console/internal/api"
	"github.com/relaybot/console/internal/bot"
	"github.com/relaybot/console/internal/realtime"
)

func newTestModel() Model {
	rt := realtime.New(realtime.Config{
		URL:                  "ws://127.0.0.1:1/ws",
		MaxReconnectAttempts: -1,
	})
	m := New(rt, api.New("http://127.0.0.1:1", "test-token"), time.Second)
	m.width = 80
	m.height = 24
	m.statusBar.Width = 80
	return m
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNotificationFromFrame(t *testing.T) {
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		frame realtime.Message
		want  bot.Notification
	}{
		{
			name: "full frame",
			frame: realtime.Message{
				Type:      "notification",
				Timestamp: ts.Format(time.RFC3339),
				Extra: map[string]any{
					"id":    "note-1",
					"title": "deploy finished",
					"body":  "v2 is live",
					"level": bot.LevelError,
				},
			},
			want: bot.Notification{
				ID:        "note-1",
				Title:     "deploy finished",
				Body:      "v2 is live",
				Level:     bot.LevelError,
				CreatedAt: ts,
			},
		},
		{
			name:  "missing level defaults to info",
			frame: realtime.Message{Type: "notification", Timestamp: ts.Format(time.RFC3339)},
			want:  bot.Notification{Level: bot.LevelInfo, CreatedAt: ts},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := notificationFromFrame(tt.frame)
			if got.ID != tt.want.ID || got.Title != tt.want.Title || got.Body != tt.want.Body || got.Level != tt.want.Level {
				t.Errorf("notificationFromFrame() = %+v, want %+v", got, tt.want)
			}
			if !got.CreatedAt.Equal(tt.want.CreatedAt) {
				t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, tt.want.CreatedAt)
			}
		})
	}
}

func TestBadTimestampFallsBackToNow(t *testing.T) {
	before := time.Now()
	got := notificationFromFrame(realtime.Message{Type: "notification", Timestamp: "yesterday"})
	if got.CreatedAt.Before(before) {
		t.Errorf("CreatedAt = %v, want >= %v", got.CreatedAt, before)
	}
}

func TestTabSwitching(t *testing.T) {
	m := newTestModel()

	next, _ := m.Update(keyRune('2'))
	m = next.(Model)
	if m.tab != TabNotifications {
		t.Fatalf("after '2' tab = %d, want %d", m.tab, TabNotifications)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if m.tab != TabComposer {
		t.Fatalf("after tab key tab = %d, want %d", m.tab, TabComposer)
	}
	if !m.composer.Focused() {
		t.Error("composer should gain focus when its tab is selected")
	}

	// tab wraps and the composer loses focus
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if m.tab != TabTemplates {
		t.Fatalf("after wrap tab = %d, want %d", m.tab, TabTemplates)
	}
	if m.composer.Focused() {
		t.Error("composer should lose focus when leaving its tab")
	}
}

func TestNotificationFrameShowsUnreadBadge(t *testing.T) {
	m := newTestModel()

	frame := realtime.Message{
		Type:  "notification",
		Extra: map[string]any{"title": "queue stalled", "level": bot.LevelWarning},
	}
	next, cmd := m.Update(FrameMsg{Msg: frame})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("frame handling should re-arm the event bridge")
	}
	if m.notifications.Unread() != 1 {
		t.Fatalf("Unread() = %d, want 1", m.notifications.Unread())
	}
	if !strings.Contains(m.View(), "(1)") {
		t.Error("tab bar should show the unread badge")
	}
}

func TestUnknownFrameIsIgnored(t *testing.T) {
	m := newTestModel()

	next, _ := m.Update(FrameMsg{Msg: realtime.Message{Type: "telemetry"}})
	m = next.(Model)
	if m.notifications.Unread() != 0 {
		t.Errorf("Unread() = %d, want 0", m.notifications.Unread())
	}
}

func TestQuitShutsDownRealtime(t *testing.T) {
	m := newTestModel()

	next, cmd := m.Update(keyRune('q'))
	m = next.(Model)
	if m.rt.State() != realtime.StateClosed {
		t.Errorf("State() = %v, want %v", m.rt.State(), realtime.StateClosed)
	}
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command should produce tea.QuitMsg")
	}
}

func TestComposerKeepsTypingKeys(t *testing.T) {
	m := newTestModel()

	next, _ := m.Update(keyRune('3'))
	m = next.(Model)
	if !m.composer.Focused() {
		t.Fatal("composer should be focused")
	}

	// 'q' is quit everywhere else but must type into the composer here
	next, cmd := m.Update(keyRune('q'))
	m = next.(Model)
	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Fatal("'q' should not quit while the composer owns the keyboard")
		}
	}
	if m.rt.State() == realtime.StateClosed {
		t.Error("realtime client should not be shut down by typed text")
	}
}

func TestViewShowsHelpLine(t *testing.T) {
	m := newTestModel()
	v := m.View()
	for _, want := range []string{"templates", "notifications", "broadcast", "r:reconnect", "q:quit"} {
		if !strings.Contains(v, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
