// Package inbound turns WhatsApp webhook deliveries into RapidPro forwards.
package inbound

import (
	"fmt"
	"strconv"

	"github.com/mamadbah2/wa-relay/internal/domain/models"
)

// Status is the outcome of handling one webhook delivery.
type Status int

const (
	StatusIgnored Status = iota
	StatusHandled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusHandled:
		return "handled"
	case StatusFailed:
		return "failed"
	default:
		return "ignored"
	}
}

// Reasons reported with StatusIgnored.
const (
	ReasonNoEntry           = "no entry"
	ReasonNoChanges         = "no changes"
	ReasonNoMessages        = "no messages"
	ReasonNoListReply       = "interactive message without list reply"
	ReasonUnsupportedType   = "unsupported message type"
	ReasonDuplicateDelivery = "duplicate delivery"
)

// Result describes what happened to a delivery. Event is set when Status is
// StatusHandled; Err is set when Status is StatusFailed. Skipped counts the
// messages after the first one, which are never examined.
type Result struct {
	Status  Status
	Event   models.ForwardEvent
	Reason  string
	Skipped int
	Err     error
}

func ignored(reason string) Result {
	return Result{Status: StatusIgnored, Reason: reason}
}

// Normalizer extracts the forwardable event from a webhook.
type Normalizer struct {
	// ForwardExtendedTypes also forwards location pins and catalog orders.
	ForwardExtendedTypes bool
}

// Normalize applies the default Normalizer.
func Normalize(webhook *models.WebhookMessage) Result {
	return Normalizer{}.Normalize(webhook)
}

// Normalize inspects only the first message of the first change of the first entry.
func (n Normalizer) Normalize(webhook *models.WebhookMessage) Result {
	if webhook == nil || len(webhook.Entry) == 0 {
		return ignored(ReasonNoEntry)
	}
	if len(webhook.Entry[0].Changes) == 0 {
		return ignored(ReasonNoChanges)
	}

	value := webhook.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 {
		return ignored(ReasonNoMessages)
	}

	msg := value.Messages[0]
	text, reason := n.extractText(msg)

	res := ignored(reason)
	if reason == "" {
		res = Result{
			Status: StatusHandled,
			Event: models.ForwardEvent{
				Text:          text,
				Sender:        msg.From,
				MessageID:     msg.ID,
				MessageType:   msg.Type,
				PhoneNumberID: value.Metadata.PhoneNumberID,
				ContactName:   contactName(value.Contacts, msg.From),
			},
		}
	}
	res.Skipped = len(value.Messages) - 1
	return res
}

func (n Normalizer) extractText(msg models.InboundMessage) (string, string) {
	switch msg.Type {
	case models.MessageTypeText:
		if msg.Text != nil {
			return msg.Text.Body, ""
		}
	case models.MessageTypeInteractive:
		if msg.Interactive != nil && msg.Interactive.ListReply != nil {
			return msg.Interactive.ListReply.ID, ""
		}
		return "", ReasonNoListReply
	case models.MessageTypeLocation:
		if n.ForwardExtendedTypes && msg.Location != nil {
			return formatCoordinate(msg.Location.Latitude) + "," + formatCoordinate(msg.Location.Longitude), ""
		}
	case models.MessageTypeOrder:
		if n.ForwardExtendedTypes && msg.Order != nil {
			return fmt.Sprintf("order_ %s", msg.Order.CatalogID), ""
		}
	}
	return "", ReasonUnsupportedType
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func contactName(contacts []models.Contact, waID string) string {
	for _, c := range contacts {
		if c.WaID == waID {
			return c.Profile.Name
		}
	}
	if len(contacts) > 0 {
		return contacts[0].Profile.Name
	}
	return ""
}
