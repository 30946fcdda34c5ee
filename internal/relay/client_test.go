package relay_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartbeatai/heartbeat/internal/models"
	"github.com/heartbeatai/heartbeat/internal/relay"
)

func TestPostEventFlattensContext(t *testing.T) {
	var got []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := relay.NewClient(relay.ClientConfig{WebhookURL: server.URL})
	require.NoError(t, err)

	err = client.PostEvent(context.Background(), models.ActionEvent{
		InteractionContext: models.InteractionContext{Channel: "C1", Title: "Revenue"},
		Action:             models.ActionStartPlan,
		SlackUser:          "j.smith",
		SlackID:            "U1",
		EventID:            "evt-1",
		Timestamp:          "2026-04-29T10:00:00Z",
	})
	require.NoError(t, err)

	var flat map[string]interface{}
	require.NoError(t, json.Unmarshal(got, &flat))
	assert.Equal(t, "C1", flat["channel"])
	assert.Equal(t, "Revenue", flat["title"])
	assert.Equal(t, models.ActionStartPlan, flat["action"])
	assert.Equal(t, "j.smith", flat["slack_user"])
}

func TestBadStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := relay.NewClient(relay.ClientConfig{WebhookURL: server.URL})
	require.NoError(t, err)

	err = client.Forward(context.Background(), []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestPlanWebhookFallsBack(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := relay.NewClient(relay.ClientConfig{WebhookURL: server.URL + "/hook"})
	require.NoError(t, err)
	require.NoError(t, client.PostPlan(context.Background(), models.PlanSubmission{Goal: "g"}))
	require.Len(t, paths, 1)
	assert.Equal(t, "/hook", paths[0])
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := relay.NewClient(relay.ClientConfig{})
	assert.Error(t, err)
}
