package devbot

import (
	"sync"

	"github.com/gorilla/websocket"
)

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

func newHubClient(conn *websocket.Conn) *hubClient {
	c := &hubClient{
		conn: conn,
		send: make(chan []byte, 64),
	}
	go c.writePump()
	return c
}

func (c *hubClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *hubClient) close() {
	close(c.send)
}

// Hub fans outbound frames to every connected console.
type Hub struct {
	mu      sync.RWMutex
	clients map[*hubClient]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*hubClient]bool)}
}

func (h *Hub) Add(conn *websocket.Conn) *hubClient {
	c := newHubClient(conn)
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	return c
}

func (h *Hub) Remove(c *hubClient) {
	h.mu.Lock()
	if h.clients[c] {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

// Broadcast queues the frame for every client. Clients whose queue is
// full are dropped rather than allowed to stall the rest.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			delete(h.clients, c)
			c.close()
		}
	}
}

// Count returns the number of connected consoles.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
