package slackapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the production Slack Web API root.
const DefaultBaseURL = "https://slack.com/api"

type ClientConfig struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is a thin typed wrapper over the Web API methods this service
// uses. No retries: a failed call surfaces to the handler that issued it.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	timeout time.Duration
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("slack bot token required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
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
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   cfg.Token,
		client:  client,
		timeout: timeout,
	}, nil
}

// apiResponse covers the envelope fields shared by every method we call.
// A missing ok flag is a hard failure.
type apiResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Channel string `json:"channel"`
	TS      string `json:"ts"`
}

// PostMessage posts a message and returns the channel and timestamp the
// platform assigned to it.
func (c *Client) PostMessage(ctx context.Context, msg Message) (string, string, error) {
	resp, err := c.call(ctx, "chat.postMessage", msg)
	if err != nil {
		return "", "", err
	}
	return resp.Channel, resp.TS, nil
}

// UpdateMessage replaces the block list of an existing message in place.
func (c *Client) UpdateMessage(ctx context.Context, msg Message) error {
	if msg.Channel == "" || msg.TS == "" {
		return fmt.Errorf("update requires channel and ts")
	}
	_, err := c.call(ctx, "chat.update", msg)
	return err
}

// OpenView displays a modal against the interaction's trigger id.
func (c *Client) OpenView(ctx context.Context, triggerID string, view View) error {
	if triggerID == "" {
		return fmt.Errorf("open view requires trigger id")
	}
	payload := map[string]interface{}{
		"trigger_id": triggerID,
		"view":       view,
	}
	_, err := c.call(ctx, "views.open", payload)
	return err
}

// OpenConversation opens (or resumes) a direct channel with a user and
// returns its channel id.
func (c *Client) OpenConversation(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("open conversation requires user id")
	}
	body, err := c.rawCall(ctx, "conversations.open", map[string]interface{}{"users": userID})
	if err != nil {
		return "", err
	}
	var resp struct {
		OK      bool   `json:"ok"`
		Error   string `json:"error"`
		Channel struct {
			ID string `json:"id"`
		} `json:"channel"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("slack conversations.open decode: %w", err)
	}
	if !resp.OK {
		return "", fmt.Errorf("slack conversations.open: %s", apiError(resp.Error))
	}
	return resp.Channel.ID, nil
}

func (c *Client) call(ctx context.Context, method string, payload interface{}) (apiResponse, error) {
	body, err := c.rawCall(ctx, method, payload)
	if err != nil {
		return apiResponse{}, err
	}
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return apiResponse{}, fmt.Errorf("slack %s decode: %w", method, err)
	}
	if !resp.OK {
		return apiResponse{}, fmt.Errorf("slack %s: %s", method, apiError(resp.Error))
	}
	return resp, nil
}

func (c *Client) rawCall(ctx context.Context, method string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("slack %s marshal: %w", method, err)
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("slack %s build request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("slack %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("slack %s: unexpected status %s", method, resp.Status)
	}
	out := new(bytes.Buffer)
	if _, err := out.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("slack %s read response: %w", method, err)
	}
	return out.Bytes(), nil
}

func apiError(e string) string {
	if e == "" {
		return "missing ok flag"
	}
	return e
}
