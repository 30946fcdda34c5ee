package notify

import (
	"fmt"

	"github.com/heartbeatai/heartbeat/internal/models"
	"github.com/heartbeatai/heartbeat/internal/slackapi"
)

// BuildMessage assembles the outbound report message. Control values start
// as placeholders: the controls must reference the message's own timestamp,
// which the platform assigns only after the first post succeeds, so the
// caller re-renders with real values via BuildBlocks and updates in place.
func BuildMessage(channel string, r models.MetricReport, narrative string) slackapi.Message {
	return slackapi.Message{
		Channel: channel,
		Text:    fallbackText(r, narrative),
		Blocks:  BuildBlocks(r, narrative, models.PlaceholderValue, models.PlaceholderValue),
	}
}

// BuildBlocks renders the block list with the given control values. Grouped
// comparisons carry no controls at all; acting on a single entity requires
// the per-entity view.
func BuildBlocks(r models.MetricReport, narrative, planValue, sendValue string) []slackapi.Block {
	blocks := []slackapi.Block{
		slackapi.Section(headerText(r)),
		slackapi.Section(narrative),
		slackapi.Section("Here's the chart:"),
	}
	if r.ChartURL != "" {
		blocks = append(blocks, slackapi.Block{
			Type:     "image",
			ImageURL: r.ChartURL,
			AltText:  fmt.Sprintf("%s chart", r.Title),
		})
	}
	if r.Grouped {
		return append(blocks, slackapi.Section(
			"_This is a grouped comparison. Open the per-location report to plan actions for a specific team._"))
	}
	return append(blocks,
		slackapi.Section("*Plan your next steps:*"),
		slackapi.Block{
			Type:    "actions",
			BlockID: "heartbeat_actions",
			Elements: []slackapi.Element{
				{
					Type:     "button",
					ActionID: models.ActionStartPlan,
					Text:     slackapi.Plain("Plan My Actions"),
					Value:    planValue,
				},
				{
					Type:        "users_select",
					ActionID:    models.ActionSelectRecipient,
					Placeholder: slackapi.Plain("Send to employee"),
				},
				{
					Type:     "button",
					ActionID: models.ActionSendToUser,
					Text:     slackapi.Plain("Send File"),
					Style:    "primary",
					Value:    sendValue,
				},
			},
		},
	)
}

// PlanFiledBlocks re-renders the original message after a plan has been
// filed, with the stale controls replaced so the form cannot be submitted
// twice from the same message.
func PlanFiledBlocks(r models.MetricReport, narrative, filedBy string) []slackapi.Block {
	blocks := []slackapi.Block{
		slackapi.Section(headerText(r)),
		slackapi.Section(narrative),
	}
	if r.ChartURL != "" {
		blocks = append(blocks, slackapi.Block{
			Type:     "image",
			ImageURL: r.ChartURL,
			AltText:  fmt.Sprintf("%s chart", r.Title),
		})
	}
	return append(blocks, slackapi.Section(
		fmt.Sprintf("✅ *A plan was filed for this report by <@%s>.*", filedBy)))
}

func headerText(r models.MetricReport) string {
	return fmt.Sprintf("*%s* report\n*Date:* %s\n*Location:* %s\n*Requested by:* %s",
		r.Title, r.Period, r.Location, r.Requester)
}

func fallbackText(r models.MetricReport, narrative string) string {
	return fmt.Sprintf("*%s* report\n*Date:* %s\n*Location:* %s\n*Requested by:* %s\n\n%s\n\nHere's the chart:\n\nPlan your next steps:",
		r.Title, r.Period, r.Location, r.Requester, narrative)
}
