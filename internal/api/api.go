// Package api is the REST client for the Relay bot's admin endpoints.
// Requests carry the bearer token; mutating requests additionally replay
// the last anti-forgery token the server handed out.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/relaybot/console/internal/bot"
)

const csrfHeader = "X-CSRF-Token"

// Client makes request/response calls to the bot's admin API.
type Client struct {
	baseURL string
	token   string
	client  *http.Client

	mu   sync.Mutex
	csrf string // last anti-forgery token seen from the server
}

// New creates a client targeting the given base URL (e.g. "http://127.0.0.1:8080").
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// ListTemplates fetches GET /api/templates.
func (c *Client) ListTemplates() ([]bot.Template, error) {
	var out []bot.Template
	if err := c.do(http.MethodGet, "/api/templates", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTemplate fetches GET /api/templates/{id}.
func (c *Client) GetTemplate(id string) (*bot.Template, error) {
	var out bot.Template
	if err := c.do(http.MethodGet, "/api/templates/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTemplate sends POST /api/templates.
func (c *Client) CreateTemplate(name, body string) (*bot.Template, error) {
	in := map[string]string{"name": name, "body": body}
	var out bot.Template
	if err := c.do(http.MethodPost, "/api/templates", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTemplate sends PUT /api/templates/{id}.
func (c *Client) UpdateTemplate(id, name, body string) (*bot.Template, error) {
	in := map[string]string{"name": name, "body": body}
	var out bot.Template
	if err := c.do(http.MethodPut, "/api/templates/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTemplate sends DELETE /api/templates/{id}.
func (c *Client) DeleteTemplate(id string) error {
	return c.do(http.MethodDelete, "/api/templates/"+id, nil, nil)
}

// ListNotifications fetches GET /api/notifications, newest first.
func (c *Client) ListNotifications() ([]bot.Notification, error) {
	var out []bot.Notification
	if err := c.do(http.MethodGet, "/api/notifications", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkNotificationRead sends POST /api/notifications/{id}/read.
func (c *Client) MarkNotificationRead(id string) error {
	return c.do(http.MethodPost, "/api/notifications/"+id+"/read", nil, nil)
}

// Status fetches GET /api/status.
func (c *Client) Status() (*bot.Status, error) {
	var out bot.Status
	if err := c.do(http.MethodGet, "/api/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Broadcast sends POST /api/broadcast, pushing a test message to every
// connected realtime client.
func (c *Client) Broadcast(text string) error {
	return c.do(http.MethodPost, "/api/broadcast", map[string]string{"text": text}, nil)
}

func (c *Client) do(method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if method != http.MethodGet {
		c.mu.Lock()
		if c.csrf != "" {
			req.Header.Set(csrfHeader, c.csrf)
		}
		c.mu.Unlock()
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if tok := resp.Header.Get(csrfHeader); tok != "" {
		c.mu.Lock()
		c.csrf = tok
		c.mu.Unlock()
	}

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, string(respBody))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
