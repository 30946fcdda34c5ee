package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/heartbeatai/heartbeat/internal/config"
	"github.com/heartbeatai/heartbeat/internal/httpserver"
	"github.com/heartbeatai/heartbeat/internal/interaction"
	"github.com/heartbeatai/heartbeat/internal/notify"
	"github.com/heartbeatai/heartbeat/internal/relay"
	"github.com/heartbeatai/heartbeat/internal/slackapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	slackClient, err := slackapi.NewClient(slackapi.ClientConfig{
		BaseURL: cfg.SlackAPIURL,
		Token:   cfg.SlackToken,
		Timeout: 8 * time.Second,
	})
	if err != nil {
		log.Fatalf("slack client init: %v", err)
	}
	relayClient, err := relay.NewClient(relay.ClientConfig{
		WebhookURL:     cfg.RelayWebhookURL,
		PlanWebhookURL: cfg.PlanWebhookURL,
		Timeout:        8 * time.Second,
	})
	if err != nil {
		log.Fatalf("relay client init: %v", err)
	}

	svc := notify.New(slackClient, cfg.SlackChannel, cfg.ChartBaseURL)
	router := interaction.NewRouter(slackClient, relayClient)
	server := httpserver.New(cfg, svc, router, relayClient)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.Router(),
	}

	go func() {
		log.Printf("Heartbeat service listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	waitForShutdown(httpServer)
}

func waitForShutdown(srv *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
