// Package schema validates inbound WhatsApp webhook bodies and turns decoding
// and validation failures into field-level violations.
package schema

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mamadbah2/wa-relay/internal/domain/models"
)

// validate shares gin's `binding` struct tags so the same models can be bound
// by gin handlers and validated here.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseWebhook decodes and validates a webhook body. Unknown fields are
// accepted. Any structural mismatch is reported as a *ValidationError.
func ParseWebhook(body []byte) (*models.WebhookMessage, error) {
	var payload models.WebhookMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, FromError(err)
	}

	verr := &ValidationError{}
	if err := validate.Struct(payload); err != nil {
		verr = FromError(err)
	}
	checkMessagePayloads(payload, verr)

	if len(verr.Violations) > 0 {
		return nil, verr
	}
	return &payload, nil
}

// Struct validates any value carrying `binding` tags.
func Struct(v any) error {
	if err := validate.Struct(v); err != nil {
		return FromError(err)
	}
	return nil
}

// FromError converts JSON decoding and validator errors into a *ValidationError.
// Errors of any other kind are wrapped as a single violation on the body.
func FromError(err error) *ValidationError {
	verr := &ValidationError{}
	if err == nil {
		return verr
	}

	var existing *ValidationError
	if errors.As(err, &existing) {
		return existing
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			msg, kind := describe(fe)
			verr.add(msg, kind, namespacePath(fe.Namespace())...)
		}
		return verr
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		loc := []string{"body"}
		if typeErr.Field != "" {
			loc = append(loc, strings.Split(typeErr.Field, ".")...)
		}
		verr.add("expected "+typeErr.Type.String()+", got "+typeErr.Value, "type_error", loc...)
		return verr
	}

	verr.add(err.Error(), "json_invalid", "body")
	return verr
}

// checkMessagePayloads enforces that a message whose type names a payload
// field actually carries that field.
func checkMessagePayloads(payload models.WebhookMessage, verr *ValidationError) {
	for i, entry := range payload.Entry {
		for j, change := range entry.Changes {
			for k, msg := range change.Value.Messages {
				if hasPayloadFor(msg) {
					continue
				}
				verr.add("field required for message type "+msg.Type, "missing",
					"entry", strconv.Itoa(i),
					"changes", strconv.Itoa(j),
					"value", "messages", strconv.Itoa(k),
					msg.Type)
			}
		}
	}
}

func hasPayloadFor(msg models.InboundMessage) bool {
	switch msg.Type {
	case models.MessageTypeText:
		return msg.Text != nil
	case models.MessageTypeImage:
		return msg.Image != nil
	case models.MessageTypeInteractive:
		return msg.Interactive != nil
	case models.MessageTypeLocation:
		return msg.Location != nil
	case models.MessageTypeOrder:
		return msg.Order != nil
	default:
		return true
	}
}

func describe(fe validator.FieldError) (string, string) {
	switch fe.Tag() {
	case "required":
		return "field required", "missing"
	default:
		return "failed '" + fe.Tag() + "' validation", "value_error"
	}
}

// namespacePath turns "WebhookMessage.entry[0].changes[1].field" into
// ["entry", "0", "changes", "1", "field"].
func namespacePath(ns string) []string {
	segments := strings.Split(ns, ".")
	if len(segments) > 1 {
		segments = segments[1:]
	}

	loc := make([]string, 0, len(segments))
	for _, seg := range segments {
		for seg != "" {
			open := strings.IndexByte(seg, '[')
			if open < 0 {
				loc = append(loc, seg)
				break
			}
			if open > 0 {
				loc = append(loc, seg[:open])
			}
			end := strings.IndexByte(seg[open:], ']')
			if end < 0 {
				loc = append(loc, seg[open:])
				break
			}
			loc = append(loc, seg[open+1:open+end])
			seg = seg[open+end+1:]
		}
	}
	return loc
}
