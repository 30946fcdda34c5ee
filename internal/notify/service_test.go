package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartbeatai/heartbeat/internal/models"
	"github.com/heartbeatai/heartbeat/internal/notify"
	"github.com/heartbeatai/heartbeat/internal/slackapi"
	"github.com/heartbeatai/heartbeat/internal/token"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type recordedCall struct {
	path string
	body []byte
}

func fakeSlack(t *testing.T, calls *[]recordedCall) *slackapi.Client {
	t.Helper()
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		*calls = append(*calls, recordedCall{path: r.URL.Path, body: body})

		resp := map[string]interface{}{"ok": true}
		if r.URL.Path == "/chat.postMessage" {
			resp["channel"] = "C1"
			resp["ts"] = "100.1"
		}
		respBody, _ := json.Marshal(resp)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(respBody)),
			Header:     make(http.Header),
		}, nil
	})
	client, err := slackapi.NewClient(slackapi.ClientConfig{
		BaseURL:    "http://slack",
		Token:      "xoxb-test",
		HTTPClient: &http.Client{Transport: transport},
	})
	if err != nil {
		t.Fatalf("new slack client: %v", err)
	}
	return client
}

func fp(f float64) *float64 { return &f }

func report() models.MetricReport {
	return models.MetricReport{
		Title:            "Revenue",
		Location:         "Brisbane",
		Period:           "April 2026",
		Actual:           1200000,
		Target:           fp(1000000),
		Baseline:         900000,
		MetricType:       models.MetricDollar,
		KPIType:          models.KPIPerformance,
		Owner:            "A. Lee",
		Requester:        "j.smith",
		BarColor:         "#4e79a7",
		BaselineBoxColor: "rgba(255,99,132,0.12)",
		AxisMax:          1200000,
	}
}

// The message goes out in two phases: a post with placeholder control
// values, then an in-place update carrying the real encoded context once
// the platform has assigned channel and ts.
func TestSendReportTwoPhasePost(t *testing.T) {
	var calls []recordedCall
	svc := notify.New(fakeSlack(t, &calls), "C08QXCVUH6Y", "")

	result, err := svc.SendReport(context.Background(), report())
	require.NoError(t, err)
	assert.Equal(t, "C1", result.Channel)
	assert.Equal(t, "100.1", result.TS)
	assert.Equal(t, models.StatusAhead, result.Status)

	require.Len(t, calls, 2)
	assert.Equal(t, "/chat.postMessage", calls[0].path)
	assert.Equal(t, "/chat.update", calls[1].path)

	var posted slackapi.Message
	require.NoError(t, json.Unmarshal(calls[0].body, &posted))
	assert.Equal(t, models.PlaceholderValue, buttonValue(t, posted.Blocks, models.ActionStartPlan))

	var updated slackapi.Message
	require.NoError(t, json.Unmarshal(calls[1].body, &updated))
	assert.Equal(t, "C1", updated.Channel)
	assert.Equal(t, "100.1", updated.TS)

	ictx := token.Decode(buttonValue(t, updated.Blocks, models.ActionSendToUser))
	assert.Equal(t, "C1", ictx.Channel)
	assert.Equal(t, "100.1", ictx.TS)
	assert.Equal(t, "Revenue", ictx.Title)
	require.NotNil(t, ictx.Target)
	assert.Equal(t, models.Number(1000000), *ictx.Target)
}

func TestSendReportNarrativeAndChart(t *testing.T) {
	var calls []recordedCall
	svc := notify.New(fakeSlack(t, &calls), "C08QXCVUH6Y", "http://charts.internal/render")

	_, err := svc.SendReport(context.Background(), report())
	require.NoError(t, err)
	require.NotEmpty(t, calls)

	body := string(calls[0].body)
	assert.Contains(t, body, "ahead of target")
	assert.Contains(t, body, "http://charts.internal/render?c=")
}

// Grouped comparisons have no controls, so there is no second phase.
func TestSendReportGroupedSkipsControls(t *testing.T) {
	var calls []recordedCall
	svc := notify.New(fakeSlack(t, &calls), "C08QXCVUH6Y", "")

	r := report()
	r.Grouped = true
	_, err := svc.SendReport(context.Background(), r)
	require.NoError(t, err)

	require.Len(t, calls, 1)
	var posted slackapi.Message
	require.NoError(t, json.Unmarshal(calls[0].body, &posted))
	for _, b := range posted.Blocks {
		assert.NotEqual(t, "actions", b.Type, "grouped report must not carry controls")
	}
	assert.Contains(t, string(calls[0].body), "grouped comparison")
}

// A failed context commit leaves the placeholder message up and is logged,
// never rolled back or surfaced as a pipeline failure.
func TestSendReportUpdateFailureIsAccepted(t *testing.T) {
	var posts int
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		resp := map[string]interface{}{"ok": true, "channel": "C1", "ts": "100.1"}
		if r.URL.Path == "/chat.update" {
			resp = map[string]interface{}{"ok": false, "error": "message_not_found"}
		} else {
			posts++
		}
		respBody, _ := json.Marshal(resp)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(respBody)),
			Header:     make(http.Header),
		}, nil
	})
	client, err := slackapi.NewClient(slackapi.ClientConfig{
		BaseURL:    "http://slack",
		Token:      "xoxb-test",
		HTTPClient: &http.Client{Transport: transport},
	})
	require.NoError(t, err)

	svc := notify.New(client, "C08QXCVUH6Y", "")
	result, err := svc.SendReport(context.Background(), report())
	require.NoError(t, err)
	assert.Equal(t, "C1", result.Channel)
	assert.Equal(t, 1, posts)
}

func buttonValue(t *testing.T, blocks []slackapi.Block, actionID string) string {
	t.Helper()
	for _, b := range blocks {
		if b.Type != "actions" {
			continue
		}
		for _, el := range b.Elements {
			if el.ActionID == actionID {
				return el.Value
			}
		}
	}
	t.Fatalf("no %s element found", actionID)
	return ""
}
