// Package screening finds URLs in inbound text and checks their reputation.
package screening

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/wa-relay/internal/domain/models"
	"github.com/mamadbah2/wa-relay/pkg/clients/pangea"
)

var urlPattern = regexp.MustCompile(`(?i)\b(?:[a-z][a-z0-9+.-]*://[^\s<>"']+|www\.[^\s<>"']+|(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,}(?:/[^\s<>"']*)?)`)

const trailingPunctuation = ".,;:!?)]}'\""

// ExtractURLs returns every URL-like token in text, in order of first appearance.
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(m, trailingPunctuation)
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		urls = append(urls, m)
	}
	return urls
}

// Finding is a URL whose reputation score crossed the threshold.
type Finding struct {
	URL      string
	Verdict  string
	Score    int
	Category []string
}

// WarningText is the message sent back to someone who shared a flagged URL.
func WarningText(url string) string {
	return fmt.Sprintf("This is an automated message. This URL: %s is malicious. Kindly do not click on it and delete the message with it", url)
}

// Service screens text through a reputation provider.
type Service struct {
	client    pangea.Client
	threshold int
	logger    *zap.Logger
}

// NewService builds a screening service. URLs scoring above threshold are reported.
func NewService(client pangea.Client, threshold int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, threshold: threshold, logger: logger}
}

// Screen extracts URLs from text and returns the ones considered malicious.
func (s *Service) Screen(ctx context.Context, text string) ([]Finding, error) {
	urls := ExtractURLs(text)
	if len(urls) == 0 {
		return nil, nil
	}

	reputations, err := s.client.CheckURLs(ctx, urls)
	if err != nil {
		return nil, &models.CollaboratorUnavailableError{Collaborator: "pangea", Err: err}
	}

	var findings []Finding
	for _, url := range urls {
		rep, ok := reputations[url]
		if !ok {
			s.logger.Debug("no reputation returned", zap.String("url", url))
			continue
		}
		if rep.Score > s.threshold {
			findings = append(findings, Finding{URL: url, Verdict: rep.Verdict, Score: rep.Score, Category: rep.Category})
		}
	}

	s.logger.Debug("screened urls", zap.Int("urls", len(urls)), zap.Int("flagged", len(findings)))
	return findings, nil
}
