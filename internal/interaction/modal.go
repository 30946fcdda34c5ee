package interaction

import (
	"fmt"

	"github.com/heartbeatai/heartbeat/internal/models"
	"github.com/heartbeatai/heartbeat/internal/slackapi"
)

// Block ids for the reflection form. They double as the field names the
// submission handler reads back out of the view state.
const (
	blockPlanGoal         = "plan_goal"
	blockPlanReasoning    = "plan_reasoning"
	blockPlanStakeholders = "plan_stakeholders"
	blockPlanNextAction   = "plan_next_action"
	blockPlanOwnership    = "plan_ownership"
	blockPlanConfidence   = "plan_confidence"

	inputActionID = "input"
)

// planView builds the reflection modal. The encoded context rides in the
// private metadata so the submission can recover the originating report,
// channel, and message timestamp.
func planView(encodedContext string, ictx models.InteractionContext) slackapi.View {
	title := "Plan My Actions"
	heading := "What will you do about this result?"
	if ictx.Title != "" {
		heading = fmt.Sprintf("What will you do about the *%s* result for %s?", ictx.Title, ictx.Location)
	}

	confidenceOptions := make([]slackapi.Option, 0, 10)
	for i := 1; i <= 10; i++ {
		v := fmt.Sprintf("%d", i)
		confidenceOptions = append(confidenceOptions, slackapi.Option{
			Text:  slackapi.Text{Type: "plain_text", Text: v},
			Value: v,
		})
	}

	return slackapi.View{
		Type:            "modal",
		CallbackID:      models.PlanCallbackID,
		Title:           slackapi.Plain(title),
		Submit:          slackapi.Plain("Submit Plan"),
		Close:           slackapi.Plain("Cancel"),
		PrivateMetadata: encodedContext,
		Blocks: []slackapi.Block{
			slackapi.Section(heading),
			textInput(blockPlanGoal, "What is your goal?", false, false),
			textInput(blockPlanReasoning, "Why does this result look the way it does?", true, true),
			textInput(blockPlanStakeholders, "Who needs to be involved?", false, true),
			textInput(blockPlanNextAction, "What is your very next action?", false, false),
			textInput(blockPlanOwnership, "What part of this do you own?", true, true),
			{
				Type:     "input",
				BlockID:  blockPlanConfidence,
				Label:    slackapi.Plain("How confident are you? (1-10)"),
				Optional: true,
				Element: &slackapi.Element{
					Type:        "static_select",
					ActionID:    inputActionID,
					Placeholder: slackapi.Plain("Pick a number"),
					Options:     confidenceOptions,
				},
			},
		},
	}
}

func textInput(blockID, label string, multiline, optional bool) slackapi.Block {
	return slackapi.Block{
		Type:     "input",
		BlockID:  blockID,
		Label:    slackapi.Plain(label),
		Optional: optional,
		Element: &slackapi.Element{
			Type:      "plain_text_input",
			ActionID:  inputActionID,
			Multiline: multiline,
		},
	}
}
