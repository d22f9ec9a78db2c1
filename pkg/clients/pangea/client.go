package pangea

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/wa-relay/internal/config"
)

const reputationPath = "/v2/url/reputation"

// Client queries Pangea's URL intel service.
type Client interface {
	CheckURLs(ctx context.Context, urls []string) (map[string]Reputation, error)
}

// Reputation is the verdict a provider returned for one URL.
type Reputation struct {
	Verdict  string   `json:"verdict"`
	Score    int      `json:"score"`
	Category []string `json:"category"`
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	provider   string
}

// NewClient builds a URL intel client. Domain is the Pangea cloud domain
// (e.g. aws.us.pangea.cloud); a full http(s) URL is used as the base as-is.
func NewClient(cfg config.ScreeningConfig) *APIClient {
	restyClient := resty.New().
		SetBaseURL(baseURL(cfg.Domain)).
		SetAuthToken(cfg.Token).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &APIClient{httpClient: restyClient, provider: cfg.Provider}
}

func baseURL(domain string) string {
	domain = strings.TrimSuffix(domain, "/")
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}
	return "https://intel." + domain
}

type reputationRequest struct {
	URLs     []string `json:"urls"`
	Provider string   `json:"provider,omitempty"`
	Verbose  bool     `json:"verbose"`
	Raw      bool     `json:"raw"`
}

type reputationResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Summary   string `json:"summary"`
	Result    struct {
		Data map[string]Reputation `json:"data"`
	} `json:"result"`
}

// APIError is returned when Pangea rejects a request or reports a non-success status.
type APIError struct {
	HTTPStatus int
	Status     string
	Summary    string
	RequestID  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pangea url intel: http=%d status=%s summary=%s request_id=%s", e.HTTPStatus, e.Status, e.Summary, e.RequestID)
}

// CheckURLs asks for the reputation of every URL in one bulk call.
func (c *APIClient) CheckURLs(ctx context.Context, urls []string) (map[string]Reputation, error) {
	if len(urls) == 0 {
		return map[string]Reputation{}, nil
	}

	result := new(reputationResponse)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reputationRequest{URLs: urls, Provider: c.provider, Verbose: true, Raw: true}).
		SetResult(result).
		SetError(result).
		Post(reputationPath)
	if err != nil {
		return nil, fmt.Errorf("pangea url reputation: %w", err)
	}

	if !resp.IsSuccess() || (result.Status != "" && result.Status != "Success") {
		return nil, &APIError{
			HTTPStatus: resp.StatusCode(),
			Status:     result.Status,
			Summary:    result.Summary,
			RequestID:  result.RequestID,
		}
	}

	if result.Result.Data == nil {
		return map[string]Reputation{}, nil
	}
	return result.Result.Data, nil
}
