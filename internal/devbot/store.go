package devbot

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/relaybot/console/internal/bot"
)

// Store holds the dev bot's templates and notification log in memory.
type Store struct {
	mu        sync.Mutex
	templates map[string]bot.Template
	notes     []bot.Notification
	nextID    int
}

func NewStore() *Store {
	return &Store{templates: make(map[string]bot.Template)}
}

func (s *Store) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

// Templates returns all templates sorted by name.
func (s *Store) Templates() []bot.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bot.Template, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) Template(id string) (bot.Template, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	return t, ok
}

func (s *Store) CreateTemplate(name, body string) bot.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	t := bot.Template{
		ID:        s.newID("tpl"),
		Name:      name,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.templates[t.ID] = t
	return t
}

func (s *Store) UpdateTemplate(id, name, body string) (bot.Template, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return bot.Template{}, false
	}
	t.Name = name
	t.Body = body
	t.UpdatedAt = time.Now().UTC()
	s.templates[id] = t
	return t, true
}

func (s *Store) DeleteTemplate(id string) (bot.Template, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if ok {
		delete(s.templates, id)
	}
	return t, ok
}

// AddNotification appends to the log and returns the stored record.
func (s *Store) AddNotification(title, body, level string) bot.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := bot.Notification{
		ID:        s.newID("note"),
		Title:     title,
		Body:      body,
		Level:     level,
		CreatedAt: time.Now().UTC(),
	}
	s.notes = append(s.notes, n)
	return n
}

// Notifications returns the log, newest first.
func (s *Store) Notifications() []bot.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bot.Notification, len(s.notes))
	for i, n := range s.notes {
		out[len(s.notes)-1-i] = n
	}
	return out
}

func (s *Store) MarkNotificationRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notes {
		if s.notes[i].ID == id {
			s.notes[i].Read = true
			return true
		}
	}
	return false
}
