package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/heartbeatai/heartbeat/internal/chart"
	"github.com/heartbeatai/heartbeat/internal/metric"
	"github.com/heartbeatai/heartbeat/internal/models"
	"github.com/heartbeatai/heartbeat/internal/narrative"
	"github.com/heartbeatai/heartbeat/internal/slackapi"
	"github.com/heartbeatai/heartbeat/internal/token"
)

// Service runs the notification pipeline for one report: classify, compose,
// post with placeholder controls, then commit the real context in place.
type Service struct {
	slack        *slackapi.Client
	channel      string
	chartBaseURL string
}

func New(slack *slackapi.Client, channel, chartBaseURL string) *Service {
	return &Service{
		slack:        slack,
		channel:      channel,
		chartBaseURL: chartBaseURL,
	}
}

// Result identifies the posted message.
type Result struct {
	Channel string        `json:"channel"`
	TS      string        `json:"ts"`
	Status  models.Status `json:"performanceStatus"`
}

// SendReport posts the notification for one report. The message goes out in
// two phases: between the first post and the update the controls carry
// placeholder values and are deliberately non-functional; clicks during
// that window decode to an empty context and are handled as invalid input
// by the interaction router. If the update fails the placeholder message
// stays up; the failure is logged, never rolled back.
func (s *Service) SendReport(ctx context.Context, r models.MetricReport) (Result, error) {
	status := metric.Classify(r.Actual, r.Target, r.Baseline, r.KPIType)
	story := narrative.Compose(status, r.Actual, r.Target, r.Baseline, r.Title, r.Location, r.MetricType, r.KPIType)

	if r.ChartURL == "" {
		r.ChartURL = chart.BuildURL(s.chartBaseURL, r, status)
	}

	msg := BuildMessage(s.channel, r, story)
	channel, ts, err := s.slack.PostMessage(ctx, msg)
	if err != nil {
		return Result{}, fmt.Errorf("post report message: %w", err)
	}
	result := Result{Channel: channel, TS: ts, Status: status}

	if r.Grouped {
		// Grouped comparisons carry no controls, so there is no context
		// to commit.
		return result, nil
	}

	ictx := models.ContextFromReport(r)
	ictx.Channel = channel
	ictx.TS = ts
	value := token.Encode(ictx)

	update := slackapi.Message{
		Channel: channel,
		TS:      ts,
		Text:    msg.Text,
		Blocks:  BuildBlocks(r, story, value, value),
	}
	if err := s.slack.UpdateMessage(ctx, update); err != nil {
		log.Printf("[notify] context commit failed for %s/%s: %v", channel, ts, err)
	}
	return result, nil
}
