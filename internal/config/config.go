package config

import (
	"fmt"
	"os"
)

type Config struct {
	Addr            string
	SlackToken      string
	SlackAPIURL     string
	SlackChannel    string
	ChartBaseURL    string
	RelayWebhookURL string
	PlanWebhookURL  string
	AllowedOrigin   string
}

const (
	defaultAddr          = ":8080"
	defaultAllowedOrigin = "*"
)

func Load() (Config, error) {
	cfg := Config{
		Addr:            getEnv("HEARTBEAT_ADDR", defaultAddr),
		SlackToken:      os.Getenv("SLACK_BOT_TOKEN"),
		SlackAPIURL:     os.Getenv("SLACK_API_URL"),
		SlackChannel:    os.Getenv("SLACK_CHANNEL"),
		ChartBaseURL:    os.Getenv("CHART_BASE_URL"),
		RelayWebhookURL: os.Getenv("RELAY_WEBHOOK_URL"),
		PlanWebhookURL:  firstNonEmpty(os.Getenv("RELAY_PLAN_WEBHOOK_URL"), os.Getenv("RELAY_WEBHOOK_URL")),
		AllowedOrigin:   getEnv("HEARTBEAT_ALLOWED_ORIGIN", defaultAllowedOrigin),
	}
	if cfg.SlackToken == "" {
		return Config{}, fmt.Errorf("SLACK_BOT_TOKEN required")
	}
	if cfg.SlackChannel == "" {
		return Config{}, fmt.Errorf("SLACK_CHANNEL required")
	}
	if cfg.RelayWebhookURL == "" {
		return Config{}, fmt.Errorf("RELAY_WEBHOOK_URL required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
