// Package outbound turns RapidPro callback instructions into WhatsApp messages.
package outbound

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mamadbah2/wa-relay/internal/domain/models"
)

// Parse reads a callback instruction. Input that is not a YAML (or JSON)
// mapping is plain text. A mapping must carry a known `type` and exactly the
// keys that type allows.
func Parse(raw string) (Command, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return textCommand(raw)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return textCommand(raw)
	}

	kind, ok := mappingValue(root, "type")
	if !ok {
		return nil, &UnrecognizedCommandError{Field: "type", Reason: "is required in a structured instruction"}
	}

	var cmd Command
	var err error
	switch kind {
	case CommandInteractive:
		cmd, err = decodeStrict[InteractiveCommand](raw, kind)
	case CommandTemplate:
		cmd, err = decodeStrict[TemplateCommand](raw, kind)
	case CommandImage:
		cmd, err = decodeStrict[ImageCommand](raw, kind)
	case CommandCatalog:
		cmd, err = decodeStrict[CatalogCommand](raw, kind)
	case CommandLocation:
		cmd, err = decodeStrict[LocationCommand](raw, kind)
	default:
		return nil, &UnrecognizedCommandError{Type: kind, Reason: "is not supported"}
	}
	if err != nil {
		return nil, err
	}

	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// Build renders a validated command as the Graph API message body for recipient to.
func Build(to string, cmd Command) models.OutboundMessage {
	return cmd.message(to)
}

// Dispatch parses raw and builds the message to send to recipient to.
func Dispatch(to, raw string) (models.OutboundMessage, error) {
	cmd, err := Parse(raw)
	if err != nil {
		return models.OutboundMessage{}, err
	}
	return Build(to, cmd), nil
}

func textCommand(raw string) (Command, error) {
	cmd := TextCommand{Body: raw}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return cmd, nil
}

func mappingValue(node *yaml.Node, key string) (string, bool) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1].Value, true
		}
	}
	return "", false
}

func decodeStrict[T Command](raw, kind string) (Command, error) {
	var cmd T
	dec := yaml.NewDecoder(strings.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cmd); err != nil && !errors.Is(err, io.EOF) {
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return nil, &UnrecognizedCommandError{Type: kind, Reason: strings.Join(typeErr.Errors, "; ")}
		}
		return nil, &UnrecognizedCommandError{Type: kind, Reason: fmt.Sprintf("cannot decode: %v", err)}
	}
	return cmd, nil
}
