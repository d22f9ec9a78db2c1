package outbound

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/wa-relay/internal/domain/models"
	"github.com/mamadbah2/wa-relay/pkg/clients/whatsapp"
)

var errNotFound = errors.New("business not found")

type fakeDirectory map[string]*models.Business

func (f fakeDirectory) FindByPhoneNumber(_ context.Context, phone string) (*models.Business, error) {
	if b, ok := f[phone]; ok {
		return b, nil
	}
	return nil, errNotFound
}

type sentMessage struct {
	phoneNumberID string
	msg           models.OutboundMessage
}

type fakeWhatsApp struct {
	sent []sentMessage
	err  error
}

func (f *fakeWhatsApp) SendMessage(_ context.Context, phoneNumberID string, msg models.OutboundMessage) (*whatsapp.SendMessageResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, sentMessage{phoneNumberID: phoneNumberID, msg: msg})
	resp := &whatsapp.SendMessageResponse{}
	resp.Messages = append(resp.Messages, struct {
		ID string `json:"id"`
	}{ID: "wamid.out"})
	return resp, nil
}

func (f *fakeWhatsApp) SendText(ctx context.Context, phoneNumberID, to, body string) (*whatsapp.SendMessageResponse, error) {
	msg := models.NewOutboundMessage(to, models.OutboundTypeText)
	msg.Text = &models.OutboundText{Body: body}
	return f.SendMessage(ctx, phoneNumberID, msg)
}

func (f *fakeWhatsApp) GetPhoneNumber(context.Context, string) (*whatsapp.PhoneNumber, error) {
	return &whatsapp.PhoneNumber{}, nil
}

func newDirectory() fakeDirectory {
	return fakeDirectory{
		"15550783881": {ID: "businesses/boroma", BusinessID: "106540352242922", PhoneNumber: "15550783881", RapidProChannel: "chan-1"},
	}
}

func TestHandleCallback_Text(t *testing.T) {
	wa := &fakeWhatsApp{}
	svc := NewService(newDirectory(), wa, nil)

	err := svc.HandleCallback(context.Background(), models.RapidProCallback{
		ID: "1", To: "26090000000", FromNoPlus: "15550783881", Text: "hi",
	})
	require.NoError(t, err)

	require.Len(t, wa.sent, 1)
	assert.Equal(t, "106540352242922", wa.sent[0].phoneNumberID)
	assert.Equal(t, "26090000000", wa.sent[0].msg.To)
	assert.Equal(t, "hi", wa.sent[0].msg.Text.Body)
}

func TestHandleCallback_CatalogUsesBusinessNumber(t *testing.T) {
	wa := &fakeWhatsApp{}
	svc := NewService(newDirectory(), wa, nil)

	err := svc.HandleCallback(context.Background(), models.RapidProCallback{
		To: "260", FromNoPlus: "15550783881", Text: "type: catalog\nbody: B\ncatalog: C1\nproduct: P1",
	})
	require.NoError(t, err)
	require.Len(t, wa.sent, 1)
	assert.Equal(t, "106540352242922", wa.sent[0].phoneNumberID)
}

func TestHandleCallback_BadInstruction(t *testing.T) {
	wa := &fakeWhatsApp{}
	svc := NewService(newDirectory(), wa, nil)

	err := svc.HandleCallback(context.Background(), models.RapidProCallback{
		To: "260", FromNoPlus: "15550783881", Text: "type: interactive\nbody: B\nbutton: Go",
	})

	var cerr *UnrecognizedCommandError
	require.True(t, errors.As(err, &cerr))
	assert.Empty(t, wa.sent)
}

func TestHandleCallback_UnknownBusiness(t *testing.T) {
	wa := &fakeWhatsApp{}
	svc := NewService(newDirectory(), wa, nil)

	err := svc.HandleCallback(context.Background(), models.RapidProCallback{To: "260", FromNoPlus: "999", Text: "hi"})
	assert.ErrorIs(t, err, errNotFound)
	assert.Empty(t, wa.sent)
}

func TestHandleCallback_DeliveryError(t *testing.T) {
	wa := &fakeWhatsApp{err: &whatsapp.DeliveryError{Status: 400, Code: 131030, Message: "not allowed"}}
	svc := NewService(newDirectory(), wa, nil)

	err := svc.HandleCallback(context.Background(), models.RapidProCallback{To: "260", FromNoPlus: "15550783881", Text: "hi"})

	var derr *whatsapp.DeliveryError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, 131030, derr.Code)
}
