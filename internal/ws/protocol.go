package ws

import "github.com/browsermux/mediator/internal/keymap"

// inboundMessage is the client->core frame shape (§6.2): a flat
// {type, ...} envelope. Fields are optional depending on type; unused
// fields for a given message are simply left zero.
type inboundMessage struct {
	Type string `json:"type"`

	// browser:connect
	Token      string `json:"token,omitempty"`
	ClientType string `json:"clientType,omitempty"`

	// browser:navigate / browser:newPage
	URL string `json:"url,omitempty"`

	// browser:switchPage / browser:closePage
	TargetID string `json:"targetId,omitempty"`

	// browser:clickAt / browser:mouseMove / browser:scroll
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	DeltaX float64 `json:"deltaX,omitempty"`
	DeltaY float64 `json:"deltaY,omitempty"`

	// browser:click / browser:fill
	BackendNodeID int    `json:"backendNodeId,omitempty"`
	Value         string `json:"value,omitempty"`

	// browser:getSnapshot
	InterestingOnly bool `json:"interestingOnly,omitempty"`
	Compressed      bool `json:"compressed,omitempty"`

	// browser:getScreenshot
	Format   string `json:"format,omitempty"`
	Quality  int    `json:"quality,omitempty"`
	FullPage bool   `json:"fullPage,omitempty"`

	// browser:keyDown / browser:keyUp
	Key       string           `json:"key,omitempty"`
	Code      string           `json:"code,omitempty"`
	Modifiers keymap.Modifiers `json:"modifiers,omitempty"`

	// browser:imeSetComposition / browser:imeCommitComposition / browser:insertText
	Text           string `json:"text,omitempty"`
	SelectionStart int    `json:"selectionStart,omitempty"`
	SelectionEnd   int    `json:"selectionEnd,omitempty"`
}

// reply is the core->client shape for every request-reply action (§6.2).
type reply struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// pushFrame is the core->viewer shape for server-push events (§6.2):
// {type: "browser:<event>", ...payload fields flattened}. Payload is
// marshaled as the value of a single "data" field to keep the wire
// shape uniform regardless of what each event carries.
type pushFrame struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}
