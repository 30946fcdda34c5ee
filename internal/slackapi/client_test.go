package slackapi_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartbeatai/heartbeat/internal/slackapi"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func client(t *testing.T, transport roundTripFunc) *slackapi.Client {
	t.Helper()
	c, err := slackapi.NewClient(slackapi.ClientConfig{
		BaseURL:    "http://slack",
		Token:      "xoxb-test",
		HTTPClient: &http.Client{Transport: transport},
	})
	require.NoError(t, err)
	return c
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := slackapi.NewClient(slackapi.ClientConfig{})
	assert.Error(t, err)
}

func TestPostMessageCarriesBearerToken(t *testing.T) {
	c := client(t, func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "/chat.postMessage", r.URL.Path)
		assert.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))
		return jsonResponse(http.StatusOK, `{"ok":true,"channel":"C1","ts":"100.1"}`), nil
	})
	channel, ts, err := c.PostMessage(context.Background(), slackapi.Message{Channel: "C1", Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "C1", channel)
	assert.Equal(t, "100.1", ts)
}

// A response without the ok flag is a hard failure, whatever the HTTP
// status said.
func TestMissingOKFlagIsFailure(t *testing.T) {
	c := client(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"warning":"something"}`), nil
	})
	_, _, err := c.PostMessage(context.Background(), slackapi.Message{Channel: "C1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing ok flag")
}

func TestAPIErrorSurfaces(t *testing.T) {
	c := client(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"ok":false,"error":"channel_not_found"}`), nil
	})
	err := c.UpdateMessage(context.Background(), slackapi.Message{Channel: "C1", TS: "100.1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestUpdateRequiresIdentifiers(t *testing.T) {
	c := client(t, func(r *http.Request) (*http.Response, error) {
		t.Fatalf("no request expected")
		return nil, nil
	})
	assert.Error(t, c.UpdateMessage(context.Background(), slackapi.Message{Channel: "C1"}))
	assert.Error(t, c.UpdateMessage(context.Background(), slackapi.Message{TS: "100.1"}))
}

func TestOpenConversation(t *testing.T) {
	c := client(t, func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "/conversations.open", r.URL.Path)
		return jsonResponse(http.StatusOK, `{"ok":true,"channel":{"id":"D42"}}`), nil
	})
	id, err := c.OpenConversation(context.Background(), "U9")
	require.NoError(t, err)
	assert.Equal(t, "D42", id)
}

func TestUnexpectedStatus(t *testing.T) {
	c := client(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, `upstream broke`), nil
	})
	_, _, err := c.PostMessage(context.Background(), slackapi.Message{Channel: "C1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}
