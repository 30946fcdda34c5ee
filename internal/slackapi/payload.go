package slackapi

import (
	"encoding/json"
	"fmt"
)

// InteractionPayload is the envelope Slack posts to the interaction
// endpoint for both block actions and view submissions. Only the fields the
// router dispatches on are modeled; everything else is ignored on decode.
type InteractionPayload struct {
	Type      string `json:"type"`
	TriggerID string `json:"trigger_id"`
	User      User   `json:"user"`
	Channel   struct {
		ID string `json:"id"`
	} `json:"channel"`
	Message *Message    `json:"message,omitempty"`
	Actions []Action    `json:"actions,omitempty"`
	View    *SubmitView `json:"view,omitempty"`
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type Action struct {
	ActionID     string `json:"action_id"`
	Value        string `json:"value,omitempty"`
	SelectedUser string `json:"selected_user,omitempty"`
	Text         *Text  `json:"text,omitempty"`
}

// SubmitView is the view echoed back on submission, carrying the private
// metadata written when the modal was opened plus the entered state.
type SubmitView struct {
	CallbackID      string    `json:"callback_id"`
	PrivateMetadata string    `json:"private_metadata"`
	State           ViewState `json:"state"`
}

type ViewState struct {
	Values map[string]map[string]ViewInput `json:"values"`
}

type ViewInput struct {
	Type           string  `json:"type"`
	Value          *string `json:"value,omitempty"`
	SelectedOption *Option `json:"selected_option,omitempty"`
}

// InputValue walks the submitted state for one block id. Absent or
// unanswered inputs come back as the empty string, never as an error: the
// form's optional fields default to empty downstream.
func (v *SubmitView) InputValue(blockID string) string {
	if v == nil {
		return ""
	}
	inputs, ok := v.State.Values[blockID]
	if !ok {
		return ""
	}
	for _, in := range inputs {
		if in.SelectedOption != nil {
			return in.SelectedOption.Value
		}
		if in.Value != nil {
			return *in.Value
		}
	}
	return ""
}

// ParseInteraction decodes the JSON payload field of an interaction POST.
func ParseInteraction(raw string) (InteractionPayload, error) {
	if raw == "" {
		return InteractionPayload{}, fmt.Errorf("empty interaction payload")
	}
	var p InteractionPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return InteractionPayload{}, fmt.Errorf("decode interaction payload: %w", err)
	}
	return p, nil
}
