package realtime

import (
	"encoding/json"
	"fmt"
)

// Message is one decoded frame from the realtime channel. The wire shape
// is an open JSON object: a mandatory "type" field, optional "timestamp"
// and "event", and any number of additional fields which land in Extra.
type Message struct {
	Type      string
	Timestamp string
	Event     string
	Extra     map[string]any
}

// Ping is the keep-alive frame. Serialises to exactly {"type":"ping"}.
var Ping = Message{Type: "ping"}

// parseMessage decodes a raw frame. Frames that are not JSON objects or
// lack a string "type" field are rejected.
func parseMessage(data []byte) (Message, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Message{}, fmt.Errorf("decode frame: %w", err)
	}
	typ, ok := raw["type"].(string)
	if !ok || typ == "" {
		return Message{}, fmt.Errorf("frame has no type field")
	}
	m := Message{Type: typ}
	delete(raw, "type")
	if ts, ok := raw["timestamp"].(string); ok {
		m.Timestamp = ts
		delete(raw, "timestamp")
	}
	if ev, ok := raw["event"].(string); ok {
		m.Event = ev
		delete(raw, "event")
	}
	if len(raw) > 0 {
		m.Extra = raw
	}
	return m, nil
}

// MarshalJSON flattens Extra back into the top-level object. The named
// fields win over Extra keys of the same name.
func (m Message) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(m.Extra)+3)
	for k, v := range m.Extra {
		obj[k] = v
	}
	obj["type"] = m.Type
	if m.Timestamp != "" {
		obj["timestamp"] = m.Timestamp
	}
	if m.Event != "" {
		obj["event"] = m.Event
	}
	return json.Marshal(obj)
}

// Field returns the named Extra field, or nil if absent.
func (m Message) Field(name string) any {
	return m.Extra[name]
}

// StringField returns the named Extra field if it is a string.
func (m Message) StringField(name string) string {
	s, _ := m.Extra[name].(string)
	return s
}
