package realtime

import (
	"log"
	"sync"
)

// dispatcher decodes inbound frames and routes them to the single
// registered consumer callback. Parse failures never propagate: they are
// logged under debug and leave the last-message slot untouched.
type dispatcher struct {
	debug bool

	mu      sync.Mutex
	handler func(Message)
	last    *Message
}

// setHandler registers the consumer callback, replacing any prior one.
func (d *dispatcher) setHandler(fn func(Message)) {
	d.mu.Lock()
	d.handler = fn
	d.mu.Unlock()
}

// lastMessage returns the most recent successfully parsed message.
func (d *dispatcher) lastMessage() (Message, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.last == nil {
		return Message{}, false
	}
	return *d.last, true
}

// dispatch parses the raw frame, updates the last-message slot, and
// reports the message plus the handler to invoke for it. A malformed
// frame yields ok=false and changes nothing.
func (d *dispatcher) dispatch(data []byte) (Message, func(Message), bool) {
	m, err := parseMessage(data)
	if err != nil {
		if d.debug {
			log.Printf("realtime: dropping frame: %v", err)
		}
		return Message{}, nil, false
	}
	d.mu.Lock()
	d.last = &m
	fn := d.handler
	d.mu.Unlock()
	return m, fn, true
}
