// Package bot defines the records exchanged with the Relay bot's admin
// API. Both the console clients and the development server use these, so
// the wire shapes live in one leaf package.
package bot

import "time"

// Template is one reusable bot message, edited through the console.
type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Body      string    `json:"body"` // markdown
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Notification levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notification is one admin-facing event raised by the bot.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Level     string    `json:"level"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Status is the bot's self-reported health, polled by the console's
// status widget.
type Status struct {
	Version       string  `json:"version"`
	UptimeSeconds int64   `json:"uptimeSeconds"`
	MemoryMB      float64 `json:"memoryMb"`
	CPUPercent    float64 `json:"cpuPercent"`
	ActiveChats   int     `json:"activeChats"`
	QueuedJobs    int     `json:"queuedJobs"`
}
