// Package devbot is a stand-in Relay bot for local development: it
// serves the admin REST API and the realtime feed the console expects,
// backed by an in-memory store.
package devbot

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/relaybot/console/internal/bot"
	"github.com/relaybot/console/internal/realtime"
)

const csrfHeader = "X-CSRF-Token"

type Server struct {
	store     *Store
	hub       *Hub
	reporter  *statusReporter
	authToken string
	csrfToken string
}

func NewServer(authToken string) *Server {
	buf := make([]byte, 16)
	rand.Read(buf)
	return &Server{
		store:     NewStore(),
		hub:       NewHub(),
		reporter:  newStatusReporter(),
		authToken: authToken,
		csrfToken: hex.EncodeToString(buf),
	}
}

// Store exposes the backing store, mainly for seeding demo data.
func (s *Server) Store() *Store { return s.store }

// Notify records a notification and pushes it to every console.
func (s *Server) Notify(title, body, level string) bot.Notification {
	n := s.store.AddNotification(title, body, level)
	s.hub.Broadcast(notificationFrame(n))
	return n
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/templates", s.handleTemplates)
	mux.HandleFunc("/api/templates/", s.handleTemplateByID)
	mux.HandleFunc("/api/notifications", s.handleNotifications)
	mux.HandleFunc("/api/notifications/", s.handleNotificationRoutes)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/broadcast", s.handleBroadcast)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	log.Printf("console connected: %s", r.RemoteAddr)
	c := s.hub.Add(conn)

	go func() {
		defer func() {
			s.hub.Remove(c)
			log.Printf("console disconnected: %s", r.RemoteAddr)
		}()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			s.handleInbound(data)
		}
	}()
}

// handleInbound processes frames sent by a console over the feed:
// keep-alives are dropped, broadcast frames are fanned back out.
func (s *Server) handleInbound(data []byte) {
	var msg struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	switch msg.Type {
	case realtime.Ping.Type:
		// keep-alive, nothing to do
	case TypeBroadcast:
		s.hub.Broadcast(broadcastFrame(msg.Text))
	}
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	if !s.guard(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.store.Templates())
	case http.MethodPost:
		var in struct{ Name, Body string }
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
			http.Error(w, "invalid template", http.StatusBadRequest)
			return
		}
		t := s.store.CreateTemplate(in.Name, in.Body)
		s.hub.Broadcast(templateUpdatedFrame("created", t))
		writeJSON(w, t)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleTemplateByID(w http.ResponseWriter, r *http.Request) {
	if !s.guard(w, r) {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/templates/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		t, ok := s.store.Template(id)
		if !ok {
			http.Error(w, "template not found", http.StatusNotFound)
			return
		}
		writeJSON(w, t)
	case http.MethodPut:
		var in struct{ Name, Body string }
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
			http.Error(w, "invalid template", http.StatusBadRequest)
			return
		}
		t, ok := s.store.UpdateTemplate(id, in.Name, in.Body)
		if !ok {
			http.Error(w, "template not found", http.StatusNotFound)
			return
		}
		s.hub.Broadcast(templateUpdatedFrame("updated", t))
		writeJSON(w, t)
	case http.MethodDelete:
		t, ok := s.store.DeleteTemplate(id)
		if !ok {
			http.Error(w, "template not found", http.StatusNotFound)
			return
		}
		s.hub.Broadcast(templateUpdatedFrame("deleted", t))
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if !s.guard(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.store.Notifications())
}

func (s *Server) handleNotificationRoutes(w http.ResponseWriter, r *http.Request) {
	if !s.guard(w, r) {
		return
	}
	// Parse: /api/notifications/{id}/read
	path := strings.TrimPrefix(r.URL.Path, "/api/notifications/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[1] != "read" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.store.MarkNotificationRead(parts[0]) {
		http.Error(w, "notification not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !s.guard(w, r) {
		return
	}
	writeJSON(w, s.reporter.status(s.hub.Count()))
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	if !s.guard(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var in struct{ Text string }
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Text == "" {
		http.Error(w, "invalid broadcast", http.StatusBadRequest)
		return
	}
	s.hub.Broadcast(broadcastFrame(in.Text))
	w.WriteHeader(http.StatusNoContent)
}

// guard enforces auth and the anti-forgery token, and hands the token
// out on reads so clients can replay it on writes.
func (s *Server) guard(w http.ResponseWriter, r *http.Request) bool {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	if r.Method == http.MethodGet {
		w.Header().Set(csrfHeader, s.csrfToken)
		return true
	}
	if r.Header.Get(csrfHeader) != s.csrfToken {
		http.Error(w, "missing or stale anti-forgery token", http.StatusForbidden)
		return false
	}
	return true
}

func (s *Server) authorize(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}
	if r.URL.Query().Get("token") == s.authToken {
		return true
	}
	if r.Header.Get("X-Relay-Token") == s.authToken {
		return true
	}
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.authToken
}

func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	// Local tool: same host or loopback only.
	host := strings.TrimPrefix(strings.TrimPrefix(origin, "http://"), "https://")
	if host == r.Host {
		return true
	}
	return strings.HasPrefix(host, "localhost") ||
		strings.HasPrefix(host, "127.0.0.1") ||
		strings.HasPrefix(host, "[::1]")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func ListenAndServe(host string, port int, mux *http.ServeMux) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	log.Printf("dev bot listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
