package models

// RapidProCallback is the body RapidPro's external channel posts for every outgoing message.
// Text carries either plain text or a YAML/JSON instruction mapping.
type RapidProCallback struct {
	ID         string `json:"id"`
	To         string `json:"to" binding:"required"`
	ToNoPlus   string `json:"to_no_plus"`
	From       string `json:"from"`
	FromNoPlus string `json:"from_no_plus" binding:"required"`
	Channel    string `json:"channel"`
	Text       string `json:"text" binding:"required"`
}

// FlowContact identifies the RapidPro contact that completed a flow.
type FlowContact struct {
	UUID string `json:"uuid"`
	URN  string `json:"urn"`
	Name string `json:"name"`
}

// Flow identifies the RapidPro flow that produced results.
type Flow struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// FlowResult is one collected value from a flow.
type FlowResult struct {
	Value    string `json:"value"`
	Category string `json:"category"`
}

// FlowResults is posted by a RapidPro webhook node with everything a survey collected.
type FlowResults struct {
	Contact FlowContact           `json:"contact"`
	Flow    Flow                  `json:"flow"`
	Results map[string]FlowResult `json:"results" binding:"required"`
}

// ForwardEvent is one inbound message worth forwarding to RapidPro.
type ForwardEvent struct {
	Text          string
	Sender        string
	MessageID     string
	MessageType   string
	PhoneNumberID string
	ContactName   string
}
