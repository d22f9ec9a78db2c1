package models

// WebhookMessage mirrors the envelope Meta posts to the WhatsApp Cloud API webhook.
// Unknown fields are accepted so provider schema additions never break ingestion.
type WebhookMessage struct {
	Object string         `json:"object" binding:"required"`
	Entry  []WebhookEntry `json:"entry" binding:"required,dive"`
}

// WebhookEntry represents one entry payload within the webhook body.
type WebhookEntry struct {
	ID      string          `json:"id" binding:"required"`
	Changes []WebhookChange `json:"changes" binding:"required,dive"`
}

// WebhookChange captures the actual notification contents.
type WebhookChange struct {
	Value WebhookValue `json:"value"`
	Field string       `json:"field" binding:"required"`
}

// WebhookValue contains message metadata, contacts and message events sent by users.
type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product" binding:"required"`
	Metadata         Metadata         `json:"metadata"`
	Contacts         []Contact        `json:"contacts,omitempty" binding:"omitempty,dive"`
	Messages         []InboundMessage `json:"messages,omitempty" binding:"omitempty,dive"`
	Statuses         []MessageStatus  `json:"statuses,omitempty"`
	Errors           []WebhookError   `json:"errors,omitempty"`
}

// Metadata contains WhatsApp phone identifiers for the business account.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number" binding:"required"`
	PhoneNumberID      string `json:"phone_number_id" binding:"required"`
}

// Contact represents the WhatsApp user initiating the conversation.
type Contact struct {
	Profile ContactProfile `json:"profile"`
	WaID    string         `json:"wa_id" binding:"required"`
}

// ContactProfile contains the human-friendly contact name.
type ContactProfile struct {
	Name string `json:"name"`
}

// Inbound message types the relay understands. Anything else is tolerated and ignored.
const (
	MessageTypeText        = "text"
	MessageTypeImage       = "image"
	MessageTypeInteractive = "interactive"
	MessageTypeLocation    = "location"
	MessageTypeOrder       = "order"
)

// InboundMessage aggregates all supported inbound WhatsApp message shapes.
// At most one payload field is populated, selected by Type.
type InboundMessage struct {
	From        string              `json:"from" binding:"required"`
	ID          string              `json:"id" binding:"required"`
	Timestamp   string              `json:"timestamp" binding:"required"`
	Type        string              `json:"type" binding:"required"`
	Context     *MessageContext     `json:"context,omitempty"`
	Text        *TextContent        `json:"text,omitempty"`
	Image       *MediaContent       `json:"image,omitempty"`
	Interactive *InteractiveContent `json:"interactive,omitempty"`
	Location    *LocationContent    `json:"location,omitempty"`
	Order       *OrderContent       `json:"order,omitempty"`
	Document    *MediaContent       `json:"document,omitempty"`
	Sticker     *MediaContent       `json:"sticker,omitempty"`
	Reaction    *ReactionContent    `json:"reaction,omitempty"`
	Button      *ButtonContent      `json:"button,omitempty"`
}

// MessageContext references the message being replied to.
type MessageContext struct {
	From string `json:"from"`
	ID   string `json:"id"`
}

// TextContent contains text messages body.
type TextContent struct {
	Body string `json:"body" binding:"required"`
}

// InteractiveContent represents button/list replies.
type InteractiveContent struct {
	Type        string       `json:"type" binding:"required"`
	ButtonReply *ButtonReply `json:"button_reply,omitempty"`
	ListReply   *ListReply   `json:"list_reply,omitempty"`
}

// ButtonReply models a pressed button payload.
type ButtonReply struct {
	ID    string `json:"id" binding:"required"`
	Title string `json:"title"`
}

// ListReply models a selected list item payload.
type ListReply struct {
	ID          string `json:"id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description,omitempty"`
}

// MediaContent represents media attachments minimal metadata.
type MediaContent struct {
	ID       string `json:"id" binding:"required"`
	MimeType string `json:"mime_type"`
	Sha256   string `json:"sha256"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// LocationContent is a shared location pin.
type LocationContent struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
	URL       string  `json:"url,omitempty"`
}

// OrderContent is a cart submitted from a catalog message.
type OrderContent struct {
	CatalogID    string             `json:"catalog_id" binding:"required"`
	Text         string             `json:"text,omitempty"`
	ProductItems []OrderProductItem `json:"product_items" binding:"omitempty,dive"`
}

// OrderProductItem is one line of an order.
type OrderProductItem struct {
	ProductRetailerID string  `json:"product_retailer_id" binding:"required"`
	Quantity          int     `json:"quantity"`
	ItemPrice         float64 `json:"item_price"`
	Currency          string  `json:"currency"`
}

// ReactionContent is an emoji reaction to an earlier message.
type ReactionContent struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

// ButtonContent is a quick-reply button press on a template message.
type ButtonContent struct {
	Text    string `json:"text"`
	Payload string `json:"payload"`
}

// MessageStatus represents delivery/read receipts coming from WhatsApp.
// Receipts are accepted but never acted upon.
type MessageStatus struct {
	ID           string              `json:"id"`
	Status       string              `json:"status"`
	Timestamp    string              `json:"timestamp"`
	RecipientID  string              `json:"recipient_id"`
	Conversation *StatusConversation `json:"conversation,omitempty"`
	Pricing      *StatusPricing      `json:"pricing,omitempty"`
	Errors       []WebhookError      `json:"errors,omitempty"`
}

// StatusConversation describes the conversation window a receipt belongs to.
type StatusConversation struct {
	ID                  string `json:"id"`
	ExpirationTimestamp string `json:"expiration_timestamp,omitempty"`
	Origin              struct {
		Type string `json:"type"`
	} `json:"origin"`
}

// StatusPricing describes how a delivered message is billed.
type StatusPricing struct {
	PricingModel string `json:"pricing_model"`
	Billable     bool   `json:"billable"`
	Category     string `json:"category"`
}

// WebhookError exposes errors returned from Meta during webhook notifications.
type WebhookError struct {
	Code      int    `json:"code"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	ErrorData *struct {
		Details string `json:"details"`
	} `json:"error_data,omitempty"`
}
