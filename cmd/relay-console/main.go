package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/relaybot/console/internal/api"
	"github.com/relaybot/console/internal/app"
	"github.com/relaybot/console/internal/config"
	"github.com/relaybot/console/internal/realtime"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (optional)")
	baseURL := flag.String("url", "", "Override bot API base URL")
	token := flag.String("token", "", "Override auth token")
	debug := flag.Bool("debug", false, "Log realtime traffic to stderr")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *baseURL != "" {
		cfg.Server.BaseURL = *baseURL
	}
	if *token != "" {
		cfg.Server.Token = *token
	}
	if *debug {
		cfg.Realtime.Debug = true
	}

	wsURL, err := cfg.WebSocketURL()
	if err != nil {
		log.Fatalf("Bad base URL: %v", err)
	}

	header := http.Header{}
	if cfg.Server.Token != "" {
		header.Set("Authorization", "Bearer "+cfg.Server.Token)
	}

	rt := realtime.New(realtime.Config{
		URL:                  wsURL,
		Header:               header,
		ReconnectInterval:    cfg.Realtime.ReconnectInterval,
		MaxReconnectAttempts: cfg.Realtime.MaxReconnectAttempts,
		HeartbeatInterval:    cfg.Realtime.HeartbeatInterval,
		Debug:                cfg.Realtime.Debug,
	})
	defer rt.Shutdown()

	apiClient := api.New(cfg.Server.BaseURL, cfg.Server.Token)

	m := app.New(rt, apiClient, cfg.UI.StatusPollInterval)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
