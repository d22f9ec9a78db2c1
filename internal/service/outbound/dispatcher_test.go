package outbound

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/wa-relay/internal/domain/models"
)

func toMap(t *testing.T, msg models.OutboundMessage) map[string]any {
	t.Helper()
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestDispatch_Catalog(t *testing.T) {
	msg, err := Dispatch("26090000000", `{type: "catalog", body: "B", footer: "F", catalog: "C1", product: "P1"}`)
	require.NoError(t, err)

	assert.Equal(t, models.OutboundTypeInteractive, msg.Type)
	require.NotNil(t, msg.Interactive)
	assert.Equal(t, "product", msg.Interactive.Type)
	assert.Equal(t, "C1", msg.Interactive.Action.CatalogID)
	assert.Equal(t, "P1", msg.Interactive.Action.ProductRetailerID)

	body := toMap(t, msg)
	assert.Equal(t, "whatsapp", body["messaging_product"])
	assert.Equal(t, "individual", body["recipient_type"])
	assert.Equal(t, map[string]any{
		"type":   "product",
		"body":   map[string]any{"text": "B"},
		"footer": map[string]any{"text": "F"},
		"action": map[string]any{"catalog_id": "C1", "product_retailer_id": "P1"},
	}, body["interactive"])
}

func TestDispatch_CatalogJSON(t *testing.T) {
	msg, err := Dispatch("260", `{"type":"catalog","body":"B","catalog":"C1","product":"P1"}`)
	require.NoError(t, err)
	assert.Equal(t, "C1", msg.Interactive.Action.CatalogID)
	assert.Nil(t, msg.Interactive.Footer)
}

func TestDispatch_PlainText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"word", "hi"},
		{"sentence", "Thanks, we received your order."},
		{"number", "42"},
		{"list", "- one\n- two"},
		{"broken yaml", "{unclosed: [1, 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Dispatch("26090000000", tt.raw)
			require.NoError(t, err)

			assert.Equal(t, models.OutboundTypeText, msg.Type)
			require.NotNil(t, msg.Text)
			assert.Equal(t, tt.raw, msg.Text.Body)
			assert.Nil(t, msg.Interactive)
		})
	}
}

func TestDispatch_Interactive(t *testing.T) {
	raw := `
type: interactive
header: Menu
body: Pick a crop
footer: Reply any time
button: Options
sections:
  - title: Grains
    rows:
      - id: opt-1
        title: Maize
        description: White maize
      - id: opt-2
        title: Sorghum
`
	msg, err := Dispatch("260", raw)
	require.NoError(t, err)

	body := toMap(t, msg)
	interactive := body["interactive"].(map[string]any)
	assert.Equal(t, "list", interactive["type"])
	assert.Equal(t, map[string]any{"type": "text", "text": "Menu"}, interactive["header"])
	assert.Equal(t, map[string]any{"text": "Pick a crop"}, interactive["body"])
	assert.Equal(t, map[string]any{"text": "Reply any time"}, interactive["footer"])

	action := interactive["action"].(map[string]any)
	assert.Equal(t, "Options", action["button"])
	sections := action["sections"].([]any)
	require.Len(t, sections, 1)
	rows := sections[0].(map[string]any)["rows"].([]any)
	require.Len(t, rows, 2)
	assert.Equal(t, map[string]any{"id": "opt-1", "title": "Maize", "description": "White maize"}, rows[0])
	assert.Equal(t, map[string]any{"id": "opt-2", "title": "Sorghum"}, rows[1])
}

func TestDispatch_InteractiveWithoutHeaderOrFooter(t *testing.T) {
	raw := "type: interactive\nheader: null\nbody: B\nbutton: Go\nsections:\n  - title: S\n    rows:\n      - id: r1\n        title: R1\n"
	msg, err := Dispatch("260", raw)
	require.NoError(t, err)

	interactive := toMap(t, msg)["interactive"].(map[string]any)
	assert.NotContains(t, interactive, "header")
	assert.NotContains(t, interactive, "footer")
}

func TestDispatch_Template(t *testing.T) {
	raw := `{"type": "template", "header": "Our picks", "sections": [
		{"title": "Seeds", "product_items": [{"product_retailer_id": "seed-1"}, {"product_retailer_id": "seed-2"}]},
		{"title": "Tools", "product_items": [{"product_retailer_id": "hoe-1"}]}
	]}`
	msg, err := Dispatch("260", raw)
	require.NoError(t, err)

	require.NotNil(t, msg.Template)
	assert.Equal(t, "view_specific_items", msg.Template.Name)
	assert.Equal(t, "en", msg.Template.Language.Code)

	template := toMap(t, msg)["template"].(map[string]any)
	components := template["components"].([]any)
	require.Len(t, components, 3)

	assert.Equal(t, map[string]any{
		"type":       "header",
		"parameters": []any{map[string]any{"type": "text", "text": "Our picks"}},
	}, components[0])
	assert.Equal(t, map[string]any{"type": "body", "parameters": []any{}}, components[1])

	button := components[2].(map[string]any)
	assert.Equal(t, "button", button["type"])
	assert.Equal(t, "mpm", button["sub_type"])
	assert.Equal(t, float64(0), button["index"])

	action := button["parameters"].([]any)[0].(map[string]any)["action"].(map[string]any)
	assert.Equal(t, "seed-1", action["thumbnail_product_retailer_id"])
	assert.Len(t, action["sections"], 2)
}

func TestDispatch_Image(t *testing.T) {
	msg, err := Dispatch("260", "type: image\nmedia_id: \"1234\"\ncaption: Harvest")
	require.NoError(t, err)
	assert.Equal(t, &models.OutboundImage{ID: "1234", Caption: "Harvest"}, msg.Image)

	msg, err = Dispatch("260", "type: image\nurl: https://cdn.example.org/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, &models.OutboundImage{Link: "https://cdn.example.org/a.jpg"}, msg.Image)
}

func TestDispatch_Location(t *testing.T) {
	msg, err := Dispatch("260", "type: location\nbody: Where is your farm?")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"type":   "location_request_message",
		"body":   map[string]any{"text": "Where is your farm?"},
		"action": map[string]any{"name": "send_location"},
	}, toMap(t, msg)["interactive"])
}

func TestDispatch_Rejected(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantType  string
		wantField string
	}{
		{"interactive without sections", "type: interactive\nbody: B\nbutton: Go", "interactive", "sections"},
		{"interactive with empty rows", "type: interactive\nbody: B\nbutton: Go\nsections:\n  - title: S\n    rows: []", "interactive", "sections[0].rows"},
		{"catalog without product", "type: catalog\nbody: B\ncatalog: C1", "catalog", "product"},
		{"template without items", "type: template\nsections:\n  - title: S\n    product_items: []", "template", "sections[0].product_items"},
		{"image without media", "type: image\ncaption: c", "image", "media_id"},
		{"location without body", "type: location", "location", "body"},
		{"unknown type", "type: carousel\nbody: B", "carousel", ""},
		{"mapping without type", "greeting: hello", "", "type"},
		{"extra key", "type: location\nbody: B\ncolor: red", "location", ""},
		{"wrong shape", "type: interactive\nbody: B\nbutton: Go\nsections: nope", "interactive", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Dispatch("260", tt.raw)
			require.Error(t, err)

			var cerr *UnrecognizedCommandError
			require.True(t, errors.As(err, &cerr), "got %T: %v", err, err)
			assert.Equal(t, tt.wantType, cerr.Type)
			assert.Equal(t, tt.wantField, cerr.Field)
		})
	}
}

func TestParse_Kinds(t *testing.T) {
	cmd, err := Parse("hello")
	require.NoError(t, err)
	assert.Equal(t, CommandText, cmd.Kind())

	cmd, err = Parse("type: location\nbody: B")
	require.NoError(t, err)
	assert.Equal(t, CommandLocation, cmd.Kind())
	assert.Equal(t, LocationCommand{Type: "location", Body: "B"}, cmd)
}

func TestUnrecognizedCommandError(t *testing.T) {
	assert.Equal(t, `unrecognized "catalog" command: field "product" is required`, missing("catalog", "product").Error())
	assert.Equal(t, `unrecognized command type "carousel": is not supported`,
		(&UnrecognizedCommandError{Type: "carousel", Reason: "is not supported"}).Error())
}
