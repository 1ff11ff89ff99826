package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relaybot/console/internal/bot"
	"github.com/relaybot/console/internal/devbot"
)

func main() {
	host := flag.String("host", "127.0.0.1", "Listen host")
	port := flag.Int("port", 8080, "Listen port")
	token := flag.String("token", "", "Auth token (empty disables auth)")
	demo := flag.Bool("demo", true, "Emit demo notifications periodically")
	flag.Parse()

	server := devbot.NewServer(*token)
	seed(server)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *demo {
		go demoLoop(ctx, server)
	}

	mux := http.NewServeMux()
	server.SetupRoutes(mux)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		cancel()
		os.Exit(0)
	}()

	if err := devbot.ListenAndServe(*host, *port, mux); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func seed(server *devbot.Server) {
	store := server.Store()
	store.CreateTemplate("welcome", "# Welcome!\n\nThanks for joining **Relay**.")
	store.CreateTemplate("maintenance", "Relay will be down for maintenance at *22:00 UTC*.")
	store.CreateTemplate("changelog", "## What's new\n\n- faster replies\n- fewer bugs")
}

// demoLoop publishes a notification every 20s so a connected console has
// live traffic to render.
func demoLoop(ctx context.Context, server *devbot.Server) {
	samples := []struct{ title, body, level string }{
		{"new subscriber", "A user subscribed to the weekly digest.", bot.LevelInfo},
		{"delivery retry", "Message to chat 4821 retried twice.", bot.LevelWarning},
		{"webhook failure", "Upstream webhook returned 502.", bot.LevelError},
		{"campaign sent", "Broadcast \"changelog\" reached 1204 chats.", bot.LevelInfo},
	}

	ticker := time.NewTicker(20 * time.Second)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := samples[i%len(samples)]
			server.Notify(s.title, s.body, s.level)
			i++
		}
	}
}
