package devbot

import (
	"encoding/json"
	"time"

	"github.com/relaybot/console/internal/bot"
)

// Realtime frame types pushed to connected consoles.
const (
	TypeNotification    = "notification"
	TypeTemplateUpdated = "template_updated"
	TypeBroadcast       = "broadcast"
	TypePing            = "ping"
)

// frame builds one outbound wire frame: the mandatory type, a timestamp,
// an optional event, and the payload fields flattened into the object.
func frame(typ, event string, fields map[string]any) []byte {
	obj := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		obj[k] = v
	}
	obj["type"] = typ
	obj["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	if event != "" {
		obj["event"] = event
	}
	data, _ := json.Marshal(obj)
	return data
}

func notificationFrame(n bot.Notification) []byte {
	return frame(TypeNotification, "", map[string]any{
		"id":    n.ID,
		"title": n.Title,
		"body":  n.Body,
		"level": n.Level,
	})
}

func templateUpdatedFrame(event string, t bot.Template) []byte {
	return frame(TypeTemplateUpdated, event, map[string]any{
		"id":   t.ID,
		"name": t.Name,
	})
}

func broadcastFrame(text string) []byte {
	return frame(TypeBroadcast, "", map[string]any{"text": text})
}
