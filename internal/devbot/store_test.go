package devbot

import (
	"testing"
)

func TestTemplateCRUD(t *testing.T) {
	s := NewStore()

	a := s.CreateTemplate("welcome", "Hello!")
	b := s.CreateTemplate("farewell", "Bye!")
	if a.ID == b.ID {
		t.Fatalf("templates share an ID: %s", a.ID)
	}
	if a.CreatedAt.IsZero() || a.UpdatedAt.IsZero() {
		t.Error("timestamps not set on create")
	}

	list := s.Templates()
	if len(list) != 2 {
		t.Fatalf("Templates() returned %d, want 2", len(list))
	}
	if list[0].Name != "farewell" || list[1].Name != "welcome" {
		t.Errorf("Templates() not sorted by name: %s, %s", list[0].Name, list[1].Name)
	}

	upd, ok := s.UpdateTemplate(a.ID, "welcome", "Hello there!")
	if !ok {
		t.Fatal("UpdateTemplate() did not find the template")
	}
	if upd.Body != "Hello there!" {
		t.Errorf("Body = %q after update", upd.Body)
	}
	if got, _ := s.Template(a.ID); got.Body != "Hello there!" {
		t.Error("update not persisted")
	}

	if _, ok := s.UpdateTemplate("missing", "x", "y"); ok {
		t.Error("UpdateTemplate(missing) reported success")
	}

	if _, ok := s.DeleteTemplate(b.ID); !ok {
		t.Fatal("DeleteTemplate() did not find the template")
	}
	if got := s.Templates(); len(got) != 1 {
		t.Errorf("Templates() after delete returned %d, want 1", len(got))
	}
}

func TestNotificationLog(t *testing.T) {
	s := NewStore()

	first := s.AddNotification("first", "", "info")
	second := s.AddNotification("second", "details", "warning")

	notes := s.Notifications()
	if len(notes) != 2 {
		t.Fatalf("Notifications() returned %d, want 2", len(notes))
	}
	if notes[0].ID != second.ID {
		t.Errorf("Notifications() not newest first: got %s", notes[0].ID)
	}

	if !s.MarkNotificationRead(first.ID) {
		t.Fatal("MarkNotificationRead() did not find the notification")
	}
	notes = s.Notifications()
	if !notes[1].Read {
		t.Error("read flag not persisted")
	}
	if s.MarkNotificationRead("missing") {
		t.Error("MarkNotificationRead(missing) reported success")
	}
}
