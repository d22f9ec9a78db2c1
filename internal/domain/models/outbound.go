package models

// Outbound message types accepted by the Graph API messages endpoint.
const (
	OutboundTypeText        = "text"
	OutboundTypeInteractive = "interactive"
	OutboundTypeTemplate    = "template"
	OutboundTypeImage       = "image"

	MessagingProductWhatsApp = "whatsapp"
	RecipientTypeIndividual  = "individual"
)

// OutboundMessage is the JSON body POSTed to /{phone-number-id}/messages.
// Exactly one of the payload pointers is set, matching Type.
type OutboundMessage struct {
	MessagingProduct string               `json:"messaging_product"`
	RecipientType    string               `json:"recipient_type"`
	To               string               `json:"to"`
	Type             string               `json:"type"`
	Text             *OutboundText        `json:"text,omitempty"`
	Interactive      *OutboundInteractive `json:"interactive,omitempty"`
	Template         *OutboundTemplate    `json:"template,omitempty"`
	Image            *OutboundImage       `json:"image,omitempty"`
}

// NewOutboundMessage fills the common envelope fields.
func NewOutboundMessage(to, messageType string) OutboundMessage {
	return OutboundMessage{
		MessagingProduct: MessagingProductWhatsApp,
		RecipientType:    RecipientTypeIndividual,
		To:               to,
		Type:             messageType,
	}
}

// OutboundText is a plain text body.
type OutboundText struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url,omitempty"`
}

// OutboundInteractive covers list, single-product and location-request messages.
type OutboundInteractive struct {
	Type   string             `json:"type"`
	Header *InteractiveHeader `json:"header,omitempty"`
	Body   *InteractiveText   `json:"body,omitempty"`
	Footer *InteractiveText   `json:"footer,omitempty"`
	Action InteractiveAction  `json:"action"`
}

// InteractiveHeader is the text header of a list message.
type InteractiveHeader struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// InteractiveText wraps body and footer strings.
type InteractiveText struct {
	Text string `json:"text"`
}

// InteractiveAction holds the per-type action block.
type InteractiveAction struct {
	Name              string    `json:"name,omitempty"`
	Button            string    `json:"button,omitempty"`
	Sections          []Section `json:"sections,omitempty"`
	CatalogID         string    `json:"catalog_id,omitempty"`
	ProductRetailerID string    `json:"product_retailer_id,omitempty"`
}

// Section is one titled group of rows in a list message.
type Section struct {
	Title string `json:"title" yaml:"title"`
	Rows  []Row  `json:"rows" yaml:"rows"`
}

// Row is a selectable entry in a list message section.
type Row struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// ProductSection groups catalog products in a multi-product template.
type ProductSection struct {
	Title        string        `json:"title" yaml:"title"`
	ProductItems []ProductItem `json:"product_items" yaml:"product_items"`
}

// ProductItem references a catalog product by retailer id.
type ProductItem struct {
	ProductRetailerID string `json:"product_retailer_id" yaml:"product_retailer_id"`
}

// OutboundTemplate is a pre-approved message template invocation.
type OutboundTemplate struct {
	Name       string              `json:"name"`
	Language   TemplateLanguage    `json:"language"`
	Components []TemplateComponent `json:"components"`
}

// TemplateLanguage selects the template translation.
type TemplateLanguage struct {
	Code string `json:"code"`
}

// TemplateComponent fills one header/body/button slot of a template.
type TemplateComponent struct {
	Type       string              `json:"type"`
	SubType    string              `json:"sub_type,omitempty"`
	Index      *int                `json:"index,omitempty"`
	Parameters []TemplateParameter `json:"parameters"`
}

// TemplateParameter is a text or action value for a component.
type TemplateParameter struct {
	Type   string          `json:"type"`
	Text   string          `json:"text,omitempty"`
	Action *TemplateAction `json:"action,omitempty"`
}

// TemplateAction drives the multi-product button of a template.
type TemplateAction struct {
	ThumbnailProductRetailerID string           `json:"thumbnail_product_retailer_id"`
	Sections                   []ProductSection `json:"sections"`
}

// OutboundImage references an uploaded media id or a public link.
type OutboundImage struct {
	ID      string `json:"id,omitempty"`
	Link    string `json:"link,omitempty"`
	Caption string `json:"caption,omitempty"`
}
