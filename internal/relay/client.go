// Package relay posts events to the workflow-automation webhook. Delivery
// is fire-and-forget apart from the HTTP status check; there are no retries
// and nothing is stored.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/heartbeatai/heartbeat/internal/models"
)

type ClientConfig struct {
	WebhookURL string
	// PlanWebhookURL receives plan submissions. Falls back to WebhookURL.
	PlanWebhookURL string
	Timeout        time.Duration
	HTTPClient     *http.Client
}

type Client struct {
	webhookURL     string
	planWebhookURL string
	client         *http.Client
	timeout        time.Duration
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("relay webhook url required")
	}
	planURL := cfg.PlanWebhookURL
	if planURL == "" {
		planURL = cfg.WebhookURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		webhookURL:     cfg.WebhookURL,
		planWebhookURL: planURL,
		client:         client,
		timeout:        timeout,
	}, nil
}

// PostEvent mirrors a button-click event to the relay.
func (c *Client) PostEvent(ctx context.Context, event models.ActionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("relay marshal event: %w", err)
	}
	return c.post(ctx, c.webhookURL, body)
}

// PostPlan forwards a filed plan to the relay.
func (c *Client) PostPlan(ctx context.Context, sub models.PlanSubmission) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("relay marshal plan: %w", err)
	}
	return c.post(ctx, c.planWebhookURL, body)
}

// Forward relays a raw JSON body untouched. Used by the passthrough
// endpoint.
func (c *Client) Forward(ctx context.Context, body []byte) error {
	return c.post(ctx, c.webhookURL, body)
}

func (c *Client) post(ctx context.Context, url string, body []byte) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("relay build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("relay post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("relay responded with %s", resp.Status)
	}
	return nil
}
