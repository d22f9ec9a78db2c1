package whatsapp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/wa-relay/internal/config"
	"github.com/mamadbah2/wa-relay/internal/domain/models"
)

// Client exposes WhatsApp Cloud API operations used by the application.
type Client interface {
	SendMessage(ctx context.Context, phoneNumberID string, msg models.OutboundMessage) (*SendMessageResponse, error)
	SendText(ctx context.Context, phoneNumberID, to, body string) (*SendMessageResponse, error)
	GetPhoneNumber(ctx context.Context, phoneNumberID string) (*PhoneNumber, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a WhatsApp API client using the provided configuration values.
func NewClient(cfg config.WhatsAppConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(fmt.Sprintf("%s/%s", base, cfg.APIVersion)).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.AccessToken)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{httpClient: restyClient}
}

// SendMessageResponse mirrors the successful response from Meta.
type SendMessageResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// MessageID returns the id of the first accepted message, if any.
func (r *SendMessageResponse) MessageID() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}

// PhoneNumber is the subset of the phone number node used for health checks.
type PhoneNumber struct {
	ID                 string `json:"id"`
	DisplayPhoneNumber string `json:"display_phone_number"`
	VerifiedName       string `json:"verified_name"`
	QualityRating      string `json:"quality_rating"`
}

// DeliveryError is returned for any non-2xx answer from the Graph API.
type DeliveryError struct {
	Status  int
	Code    int
	Message string
	Body    string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("whatsapp api error: status=%d, code=%d, message=%s", e.Status, e.Code, e.Message)
}

// apiError represents a WhatsApp Cloud API error payload.
type apiError struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorData    any    `json:"error_data"`
		ErrorSubcode int    `json:"error_subcode"`
		FBTraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}

// SendMessage posts a fully built message on behalf of the given phone number id.
// The call is made once; failures are returned as *DeliveryError without retry.
func (c *APIClient) SendMessage(ctx context.Context, phoneNumberID string, msg models.OutboundMessage) (*SendMessageResponse, error) {
	if phoneNumberID == "" {
		return nil, fmt.Errorf("send whatsapp message: empty phone number id")
	}

	result := new(SendMessageResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(msg).
		SetResult(result).
		SetError(apiErr).
		Post(fmt.Sprintf("%s/messages", phoneNumberID))
	if err != nil {
		return nil, fmt.Errorf("send whatsapp message: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, newDeliveryError(resp, apiErr)
	}

	return result, nil
}

// SendText is a shortcut for plain text notifications.
func (c *APIClient) SendText(ctx context.Context, phoneNumberID, to, body string) (*SendMessageResponse, error) {
	msg := models.NewOutboundMessage(to, models.OutboundTypeText)
	msg.Text = &models.OutboundText{Body: body}
	return c.SendMessage(ctx, phoneNumberID, msg)
}

// GetPhoneNumber fetches the phone number node, which fails once a token expires
// or the number is removed from the WhatsApp Business Account.
func (c *APIClient) GetPhoneNumber(ctx context.Context, phoneNumberID string) (*PhoneNumber, error) {
	result := new(PhoneNumber)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get(phoneNumberID)
	if err != nil {
		return nil, fmt.Errorf("get phone number %s: %w", phoneNumberID, err)
	}

	if !resp.IsSuccess() {
		return nil, newDeliveryError(resp, apiErr)
	}

	return result, nil
}

func newDeliveryError(resp *resty.Response, apiErr *apiError) *DeliveryError {
	derr := &DeliveryError{
		Status: resp.StatusCode(),
		Code:   resp.StatusCode(),
		Body:   resp.String(),
	}
	if apiErr != nil {
		derr.Message = apiErr.Error.Message
		if apiErr.Error.Code != 0 {
			derr.Code = apiErr.Error.Code
		}
	}
	return derr
}
