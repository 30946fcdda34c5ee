package slackapi

// Block Kit wire types, limited to the shapes this service emits. The
// contract is versionless: consumers must tolerate fields they do not know.

type Message struct {
	Channel  string  `json:"channel"`
	TS       string  `json:"ts,omitempty"`
	ThreadTS string  `json:"thread_ts,omitempty"`
	Text     string  `json:"text,omitempty"`
	Blocks   []Block `json:"blocks,omitempty"`
}

type Block struct {
	Type     string    `json:"type"`
	BlockID  string    `json:"block_id,omitempty"`
	Text     *Text     `json:"text,omitempty"`
	ImageURL string    `json:"image_url,omitempty"`
	AltText  string    `json:"alt_text,omitempty"`
	Elements []Element `json:"elements,omitempty"`

	// Input-block fields, used only inside modals.
	Label    *Text    `json:"label,omitempty"`
	Element  *Element `json:"element,omitempty"`
	Optional bool     `json:"optional,omitempty"`
}

type Text struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type Element struct {
	Type        string   `json:"type"`
	ActionID    string   `json:"action_id,omitempty"`
	Text        *Text    `json:"text,omitempty"`
	Value       string   `json:"value,omitempty"`
	Style       string   `json:"style,omitempty"`
	Placeholder *Text    `json:"placeholder,omitempty"`
	Multiline   bool     `json:"multiline,omitempty"`
	Options     []Option `json:"options,omitempty"`
}

type Option struct {
	Text  Text   `json:"text"`
	Value string `json:"value"`
}

type View struct {
	Type            string  `json:"type"`
	CallbackID      string  `json:"callback_id,omitempty"`
	Title           *Text   `json:"title,omitempty"`
	Submit          *Text   `json:"submit,omitempty"`
	Close           *Text   `json:"close,omitempty"`
	PrivateMetadata string  `json:"private_metadata,omitempty"`
	Blocks          []Block `json:"blocks"`
}

func Mrkdwn(s string) *Text {
	return &Text{Type: "mrkdwn", Text: s}
}

func Plain(s string) *Text {
	return &Text{Type: "plain_text", Text: s}
}

// Section wraps markdown text in a section block.
func Section(s string) Block {
	return Block{Type: "section", Text: Mrkdwn(s)}
}
