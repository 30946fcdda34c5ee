// Package interaction dispatches inbound Slack interaction events. Every
// invocation is stateless: the only context available is whatever the
// triggering control round-tripped through the token codec.
package interaction

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/heartbeatai/heartbeat/internal/metric"
	"github.com/heartbeatai/heartbeat/internal/models"
	"github.com/heartbeatai/heartbeat/internal/narrative"
	"github.com/heartbeatai/heartbeat/internal/notify"
	"github.com/heartbeatai/heartbeat/internal/relay"
	"github.com/heartbeatai/heartbeat/internal/slackapi"
	"github.com/heartbeatai/heartbeat/internal/token"
)

// Response is what the interaction endpoint returns to the platform. A nil
// Response means a plain acknowledgement.
type Response struct {
	ResponseAction string            `json:"response_action,omitempty"`
	Errors         map[string]string `json:"errors,omitempty"`
}

// Router moves a message through
// Posted -> (RecipientPicked | PlanOpened) -> (Sent | PlanSubmitted).
type Router struct {
	slack *slackapi.Client
	relay *relay.Client
	locks *messageLocks
	now   func() time.Time
}

func NewRouter(slack *slackapi.Client, relayClient *relay.Client) *Router {
	return &Router{
		slack: slack,
		relay: relayClient,
		locks: newMessageLocks(),
		now:   time.Now,
	}
}

// HandleEvent dispatches one interaction event. Unrecognized action ids are
// a successful no-op: the platform may deliver events for controls this
// service does not own.
func (r *Router) HandleEvent(ctx context.Context, p slackapi.InteractionPayload) (*Response, error) {
	if p.Type == "view_submission" {
		if p.View == nil || p.View.CallbackID != models.PlanCallbackID {
			return nil, nil
		}
		return r.handlePlanSubmit(ctx, p)
	}
	if len(p.Actions) == 0 {
		return nil, nil
	}
	action := p.Actions[0]
	switch action.ActionID {
	case models.ActionSelectRecipient:
		return r.handleRecipientPicked(ctx, p, action)
	case models.ActionSendToUser:
		return r.handleForward(ctx, p, action)
	case models.ActionStartPlan:
		return r.handlePlanStart(ctx, p, action)
	default:
		return nil, nil
	}
}

// handleRecipientPicked merges the selected recipient into both button
// contexts and updates the message in place. No outward notification yet.
func (r *Router) handleRecipientPicked(ctx context.Context, p slackapi.InteractionPayload, action slackapi.Action) (*Response, error) {
	if p.Message == nil || action.SelectedUser == "" {
		return nil, nil
	}
	channel := p.Channel.ID
	ts := p.Message.TS

	unlock := r.locks.lock(channel + "/" + ts)
	defer unlock()

	ictx := token.Decode(elementValue(p.Message.Blocks, models.ActionSendToUser))
	if ictx.IsZero() {
		ictx = token.Decode(elementValue(p.Message.Blocks, models.ActionStartPlan))
	}
	if ictx.IsZero() {
		// Click landed during the placeholder window; nothing to merge.
		log.Printf("[interaction] recipient pick on %s/%s before context commit", channel, ts)
		return nil, nil
	}
	ictx.Recipient = action.SelectedUser
	if ictx.Channel == "" {
		ictx.Channel = channel
	}
	if ictx.TS == "" {
		ictx.TS = ts
	}
	value := token.Encode(ictx)

	blocks := withElementValues(p.Message.Blocks, value)
	err := r.slack.UpdateMessage(ctx, slackapi.Message{
		Channel: channel,
		TS:      ts,
		Text:    p.Message.Text,
		Blocks:  blocks,
	})
	if err != nil {
		return nil, fmt.Errorf("merge recipient: %w", err)
	}
	return nil, nil
}

// handleForward sends the chart to the chosen recipient and confirms in the
// origin thread. With no recipient in the decoded context it returns a
// field-level validation error and issues no platform calls at all.
func (r *Router) handleForward(ctx context.Context, p slackapi.InteractionPayload, action slackapi.Action) (*Response, error) {
	ictx := token.Decode(action.Value)
	if ictx.Recipient == "" {
		return &Response{
			Errors: map[string]string{
				"heartbeat_actions": "Pick a recipient before sending.",
			},
		}, nil
	}

	unlock := r.locks.lock(ictx.Channel + "/" + ictx.TS)
	defer unlock()

	dm, err := r.slack.OpenConversation(ctx, ictx.Recipient)
	if err != nil {
		return nil, fmt.Errorf("open recipient conversation: %w", err)
	}
	if _, _, err := r.slack.PostMessage(ctx, forwardMessage(dm, ictx, p.User)); err != nil {
		return nil, fmt.Errorf("forward chart: %w", err)
	}
	if ictx.Channel != "" && ictx.TS != "" {
		confirm := slackapi.Message{
			Channel:  ictx.Channel,
			ThreadTS: ictx.TS,
			Text:     fmt.Sprintf("✅ Chart sent to <@%s> by <@%s>", ictx.Recipient, p.User.ID),
		}
		if _, _, err := r.slack.PostMessage(ctx, confirm); err != nil {
			return nil, fmt.Errorf("confirm forward: %w", err)
		}
	}

	r.mirror(ctx, action.ActionID, ictx, p.User)
	return nil, nil
}

// handlePlanStart re-projects the button context into the modal's private
// metadata and asks the platform to display the reflection form.
func (r *Router) handlePlanStart(ctx context.Context, p slackapi.InteractionPayload, action slackapi.Action) (*Response, error) {
	ictx := token.Decode(action.Value)
	if ictx.IsZero() {
		// Placeholder click; invalid input, not a failure.
		log.Printf("[interaction] plan start with empty context, ignoring")
		return nil, nil
	}
	view := planView(token.Encode(ictx), ictx)
	if err := r.slack.OpenView(ctx, p.TriggerID, view); err != nil {
		return nil, fmt.Errorf("open plan modal: %w", err)
	}
	r.mirror(ctx, action.ActionID, ictx, p.User)
	return nil, nil
}

// handlePlanSubmit assembles the PlanSubmission from the answered fields,
// forwards it to the relay, confirms in the origin thread, and strips the
// stale controls from the original message.
func (r *Router) handlePlanSubmit(ctx context.Context, p slackapi.InteractionPayload) (*Response, error) {
	ictx := token.Decode(p.View.PrivateMetadata)
	sub := models.PlanSubmission{
		InteractionContext: ictx,
		Goal:               p.View.InputValue(blockPlanGoal),
		Reasoning:          p.View.InputValue(blockPlanReasoning),
		Stakeholders:       p.View.InputValue(blockPlanStakeholders),
		NextAction:         p.View.InputValue(blockPlanNextAction),
		Ownership:          p.View.InputValue(blockPlanOwnership),
		Confidence:         p.View.InputValue(blockPlanConfidence),
		SlackUser:          p.User.Username,
		SlackID:            p.User.ID,
		SubmittedAt:        r.now().UTC().Format(time.RFC3339),
	}
	if err := r.relay.PostPlan(ctx, sub); err != nil {
		return nil, fmt.Errorf("forward plan: %w", err)
	}

	if ictx.Channel != "" && ictx.TS != "" {
		unlock := r.locks.lock(ictx.Channel + "/" + ictx.TS)
		defer unlock()

		summary := slackapi.Message{
			Channel:  ictx.Channel,
			ThreadTS: ictx.TS,
			Text:     planSummary(sub),
		}
		if _, _, err := r.slack.PostMessage(ctx, summary); err != nil {
			log.Printf("[interaction] plan summary post failed: %v", err)
		}

		report := ictx.Report()
		status := metric.Classify(report.Actual, report.Target, report.Baseline, report.KPIType)
		story := narrative.Compose(status, report.Actual, report.Target, report.Baseline,
			report.Title, report.Location, report.MetricType, report.KPIType)
		update := slackapi.Message{
			Channel: ictx.Channel,
			TS:      ictx.TS,
			Text:    fmt.Sprintf("A plan was filed for %s.", report.Title),
			Blocks:  notify.PlanFiledBlocks(report, story, p.User.ID),
		}
		if err := r.slack.UpdateMessage(ctx, update); err != nil {
			log.Printf("[interaction] control strip failed for %s/%s: %v", ictx.Channel, ictx.TS, err)
		}
	}
	return &Response{ResponseAction: "clear"}, nil
}

// mirror posts the click event to the automation relay. Best effort: a
// relay failure must not fail an interaction whose primary platform effects
// already landed.
func (r *Router) mirror(ctx context.Context, actionID string, ictx models.InteractionContext, user slackapi.User) {
	event := models.ActionEvent{
		InteractionContext: ictx,
		Action:             actionID,
		SlackUser:          user.Username,
		SlackID:            user.ID,
		EventID:            uuid.NewString(),
		Timestamp:          r.now().UTC().Format(time.RFC3339),
	}
	if err := r.relay.PostEvent(ctx, event); err != nil {
		log.Printf("[interaction] relay mirror failed for %s: %v", actionID, err)
	}
}

func forwardMessage(channel string, ictx models.InteractionContext, from slackapi.User) slackapi.Message {
	report := ictx.Report()
	text := fmt.Sprintf("*%s* — %s (%s), forwarded by <@%s>", report.Title, report.Location, report.Period, from.ID)
	blocks := []slackapi.Block{slackapi.Section(text)}
	if report.ChartURL != "" {
		blocks = append(blocks, slackapi.Block{
			Type:     "image",
			ImageURL: report.ChartURL,
			AltText:  fmt.Sprintf("%s chart", report.Title),
		})
	}
	return slackapi.Message{Channel: channel, Text: text, Blocks: blocks}
}

func planSummary(sub models.PlanSubmission) string {
	confidence := sub.Confidence
	if confidence == "" {
		confidence = "-"
	}
	return fmt.Sprintf("📋 *Plan filed for %s* by <@%s>\n*Goal:* %s\n*Next action:* %s\n*Confidence:* %s/10",
		sub.Title, sub.SlackID, sub.Goal, sub.NextAction, confidence)
}

// elementValue returns the value carried by the action element with the
// given id, or "" when the message has no such control.
func elementValue(blocks []slackapi.Block, actionID string) string {
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
	return ""
}

// withElementValues returns a copy of blocks with every value-bearing
// action element set to value. The users_select keeps no value; its state
// lives in the buttons.
func withElementValues(blocks []slackapi.Block, value string) []slackapi.Block {
	out := make([]slackapi.Block, len(blocks))
	copy(out, blocks)
	for i, b := range out {
		if b.Type != "actions" {
			continue
		}
		elements := make([]slackapi.Element, len(b.Elements))
		copy(elements, b.Elements)
		for j := range elements {
			if elements[j].Type == "button" {
				elements[j].Value = value
			}
		}
		out[i].Elements = elements
	}
	return out
}
