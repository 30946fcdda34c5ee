// Package token is the system's only persistence layer. Interaction state
// survives solely as a JSON context serialized into interactive element
// values and modal private metadata, capped at the platform's element value
// size limit.
package token

import (
	"encoding/json"

	"github.com/heartbeatai/heartbeat/internal/models"
)

// MaxEncodedLen is the platform's limit on an interactive element value.
const MaxEncodedLen = 2000

// Encode serializes a context for embedding in a control. When the encoded
// form exceeds the size cap, fields are dropped in a fixed priority order
// (chart URL first, then display-only fields, then clipped labels) so the
// transport identifiers and the numeric core always survive. Encode never
// fails; a context that cannot be serialized degrades to its transport
// identifiers alone.
func Encode(c models.InteractionContext) string {
	if s, ok := tryMarshal(c); ok {
		return s
	}
	c.ChartURL = ""
	if s, ok := tryMarshal(c); ok {
		return s
	}
	c.ReportedAt = ""
	c.Row = ""
	c.Period = ""
	if s, ok := tryMarshal(c); ok {
		return s
	}
	c.Owner = ""
	c.Requester = ""
	if s, ok := tryMarshal(c); ok {
		return s
	}
	c.Title = clip(c.Title, 256)
	c.Location = clip(c.Location, 256)
	if s, ok := tryMarshal(c); ok {
		return s
	}
	minimal := models.InteractionContext{
		Channel:   c.Channel,
		TS:        c.TS,
		Recipient: c.Recipient,
	}
	b, _ := json.Marshal(minimal)
	return string(b)
}

// Decode recovers a context from a control value. Placeholder or malformed
// input yields the zero context: the token is advisory state, not a security
// boundary, so decoding never raises. Unknown fields are ignored.
func Decode(s string) models.InteractionContext {
	if s == "" || s == models.PlaceholderValue {
		return models.InteractionContext{}
	}
	var c models.InteractionContext
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return models.InteractionContext{}
	}
	return c
}

func tryMarshal(c models.InteractionContext) (string, bool) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", false
	}
	if len(b) > MaxEncodedLen {
		return "", false
	}
	return string(b), true
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
