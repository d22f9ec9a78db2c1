package rapidpro

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/wa-relay/internal/config"
)

// ErrEmptyChannel is returned when a business has no RapidPro channel configured.
var ErrEmptyChannel = errors.New("rapidpro channel is empty")

// Client forwards inbound WhatsApp text to RapidPro external channels.
type Client interface {
	Forward(ctx context.Context, channel, text, sender string) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a RapidPro client rooted at the external channel base URL,
// e.g. https://rapid.example.org/c/ex.
func NewClient(cfg config.RapidProConfig) *APIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(timeout)

	return &APIClient{httpClient: restyClient}
}

// ForwardError is returned when RapidPro answers with a non-2xx status.
type ForwardError struct {
	Status int
	Body   string
}

func (e *ForwardError) Error() string {
	return fmt.Sprintf("rapidpro receive failed: status=%d, body=%s", e.Status, e.Body)
}

// Forward delivers one message to {base}/{channel}/receive as the given sender.
func (c *APIClient) Forward(ctx context.Context, channel, text, sender string) error {
	if channel == "" {
		return ErrEmptyChannel
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("channel", channel).
		SetQueryParams(map[string]string{
			"text":   text,
			"sender": sender,
		}).
		Get("/{channel}/receive")
	if err != nil {
		return fmt.Errorf("forward to rapidpro channel %s: %w", channel, err)
	}

	if !resp.IsSuccess() {
		return &ForwardError{Status: resp.StatusCode(), Body: resp.String()}
	}

	return nil
}
