package outbound

import (
	"fmt"

	"github.com/mamadbah2/wa-relay/internal/domain/models"
)

// Instruction types understood in a RapidPro callback. Plain text has no type key.
const (
	CommandText        = "text"
	CommandInteractive = "interactive"
	CommandTemplate    = "template"
	CommandImage       = "image"
	CommandCatalog     = "catalog"
	CommandLocation    = "location"
)

const (
	defaultTemplateName     = "view_specific_items"
	defaultTemplateLanguage = "en"
)

// Command is one parsed outbound instruction. The set of implementations is closed.
type Command interface {
	Kind() string
	Validate() error
	message(to string) models.OutboundMessage
}

// UnrecognizedCommandError reports an instruction that cannot be turned into a message.
type UnrecognizedCommandError struct {
	Type   string
	Field  string
	Reason string
}

func (e *UnrecognizedCommandError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("unrecognized %q command: field %q %s", e.Type, e.Field, e.Reason)
	}
	return fmt.Sprintf("unrecognized command type %q: %s", e.Type, e.Reason)
}

func missing(kind, field string) error {
	return &UnrecognizedCommandError{Type: kind, Field: field, Reason: "is required"}
}

// TextCommand sends the instruction verbatim.
type TextCommand struct {
	Body string
}

func (c TextCommand) Kind() string { return CommandText }

func (c TextCommand) Validate() error {
	if c.Body == "" {
		return missing(CommandText, "body")
	}
	return nil
}

func (c TextCommand) message(to string) models.OutboundMessage {
	msg := models.NewOutboundMessage(to, models.OutboundTypeText)
	msg.Text = &models.OutboundText{Body: c.Body}
	return msg
}

// InteractiveCommand is a list message with selectable rows.
type InteractiveCommand struct {
	Type     string           `yaml:"type"`
	Header   string           `yaml:"header"`
	Body     string           `yaml:"body"`
	Footer   string           `yaml:"footer"`
	Button   string           `yaml:"button"`
	Sections []models.Section `yaml:"sections"`
}

func (c InteractiveCommand) Kind() string { return CommandInteractive }

func (c InteractiveCommand) Validate() error {
	switch {
	case c.Body == "":
		return missing(CommandInteractive, "body")
	case c.Button == "":
		return missing(CommandInteractive, "button")
	case len(c.Sections) == 0:
		return missing(CommandInteractive, "sections")
	}
	for i, section := range c.Sections {
		if len(section.Rows) == 0 {
			return missing(CommandInteractive, fmt.Sprintf("sections[%d].rows", i))
		}
		for j, row := range section.Rows {
			if row.ID == "" || row.Title == "" {
				return missing(CommandInteractive, fmt.Sprintf("sections[%d].rows[%d].id/title", i, j))
			}
		}
	}
	return nil
}

func (c InteractiveCommand) message(to string) models.OutboundMessage {
	interactive := &models.OutboundInteractive{
		Type: "list",
		Body: &models.InteractiveText{Text: c.Body},
		Action: models.InteractiveAction{
			Button:   c.Button,
			Sections: c.Sections,
		},
	}
	if c.Header != "" {
		interactive.Header = &models.InteractiveHeader{Type: "text", Text: c.Header}
	}
	if c.Footer != "" {
		interactive.Footer = &models.InteractiveText{Text: c.Footer}
	}

	msg := models.NewOutboundMessage(to, models.OutboundTypeInteractive)
	msg.Interactive = interactive
	return msg
}

// TemplateCommand fills the multi-product template with catalog sections.
// The first product of the first section is used as the thumbnail.
type TemplateCommand struct {
	Type     string                  `yaml:"type"`
	Header   string                  `yaml:"header"`
	Name     string                  `yaml:"name"`
	Language string                  `yaml:"language"`
	Sections []models.ProductSection `yaml:"sections"`
}

func (c TemplateCommand) Kind() string { return CommandTemplate }

func (c TemplateCommand) Validate() error {
	if len(c.Sections) == 0 {
		return missing(CommandTemplate, "sections")
	}
	for i, section := range c.Sections {
		if len(section.ProductItems) == 0 {
			return missing(CommandTemplate, fmt.Sprintf("sections[%d].product_items", i))
		}
		for j, item := range section.ProductItems {
			if item.ProductRetailerID == "" {
				return missing(CommandTemplate, fmt.Sprintf("sections[%d].product_items[%d].product_retailer_id", i, j))
			}
		}
	}
	return nil
}

func (c TemplateCommand) message(to string) models.OutboundMessage {
	name := c.Name
	if name == "" {
		name = defaultTemplateName
	}
	language := c.Language
	if language == "" {
		language = defaultTemplateLanguage
	}
	index := 0

	msg := models.NewOutboundMessage(to, models.OutboundTypeTemplate)
	msg.Template = &models.OutboundTemplate{
		Name:     name,
		Language: models.TemplateLanguage{Code: language},
		Components: []models.TemplateComponent{
			{
				Type:       "header",
				Parameters: []models.TemplateParameter{{Type: "text", Text: c.Header}},
			},
			{
				Type:       "body",
				Parameters: []models.TemplateParameter{},
			},
			{
				Type:    "button",
				SubType: "mpm",
				Index:   &index,
				Parameters: []models.TemplateParameter{{
					Type: "action",
					Action: &models.TemplateAction{
						ThumbnailProductRetailerID: c.Sections[0].ProductItems[0].ProductRetailerID,
						Sections:                   c.Sections,
					},
				}},
			},
		},
	}
	return msg
}

// ImageCommand sends an uploaded media id or a public image URL.
type ImageCommand struct {
	Type    string `yaml:"type"`
	MediaID string `yaml:"media_id"`
	URL     string `yaml:"url"`
	Caption string `yaml:"caption"`
}

func (c ImageCommand) Kind() string { return CommandImage }

func (c ImageCommand) Validate() error {
	if c.MediaID == "" && c.URL == "" {
		return missing(CommandImage, "media_id")
	}
	return nil
}

func (c ImageCommand) message(to string) models.OutboundMessage {
	image := &models.OutboundImage{Caption: c.Caption}
	if c.MediaID != "" {
		image.ID = c.MediaID
	} else {
		image.Link = c.URL
	}

	msg := models.NewOutboundMessage(to, models.OutboundTypeImage)
	msg.Image = image
	return msg
}

// CatalogCommand shows a single catalog product.
type CatalogCommand struct {
	Type    string `yaml:"type"`
	Body    string `yaml:"body"`
	Footer  string `yaml:"footer"`
	Catalog string `yaml:"catalog"`
	Product string `yaml:"product"`
}

func (c CatalogCommand) Kind() string { return CommandCatalog }

func (c CatalogCommand) Validate() error {
	switch {
	case c.Body == "":
		return missing(CommandCatalog, "body")
	case c.Catalog == "":
		return missing(CommandCatalog, "catalog")
	case c.Product == "":
		return missing(CommandCatalog, "product")
	}
	return nil
}

func (c CatalogCommand) message(to string) models.OutboundMessage {
	interactive := &models.OutboundInteractive{
		Type: "product",
		Body: &models.InteractiveText{Text: c.Body},
		Action: models.InteractiveAction{
			CatalogID:         c.Catalog,
			ProductRetailerID: c.Product,
		},
	}
	if c.Footer != "" {
		interactive.Footer = &models.InteractiveText{Text: c.Footer}
	}

	msg := models.NewOutboundMessage(to, models.OutboundTypeInteractive)
	msg.Interactive = interactive
	return msg
}

// LocationCommand asks the user to share their location.
type LocationCommand struct {
	Type string `yaml:"type"`
	Body string `yaml:"body"`
}

func (c LocationCommand) Kind() string { return CommandLocation }

func (c LocationCommand) Validate() error {
	if c.Body == "" {
		return missing(CommandLocation, "body")
	}
	return nil
}

func (c LocationCommand) message(to string) models.OutboundMessage {
	msg := models.NewOutboundMessage(to, models.OutboundTypeInteractive)
	msg.Interactive = &models.OutboundInteractive{
		Type:   "location_request_message",
		Body:   &models.InteractiveText{Text: c.Body},
		Action: models.InteractiveAction{Name: "send_location"},
	}
	return msg
}
