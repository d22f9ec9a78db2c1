package inbound

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/wa-relay/internal/domain/models"
	"github.com/mamadbah2/wa-relay/internal/service/screening"
	"github.com/mamadbah2/wa-relay/pkg/clients/rapidpro"
	"github.com/mamadbah2/wa-relay/pkg/clients/whatsapp"
)

// BusinessDirectory resolves the business that owns a WhatsApp phone number id.
type BusinessDirectory interface {
	FindByPhoneNumberID(ctx context.Context, phoneNumberID string) (*models.Business, error)
}

// DeliveryGuard remembers message ids so redelivered webhooks are dropped.
type DeliveryGuard interface {
	// Claim reports whether messageID is seen for the first time.
	Claim(ctx context.Context, messageID string) (bool, error)
	Release(ctx context.Context, messageID string) error
}

// Screener flags malicious URLs in free text.
type Screener interface {
	Screen(ctx context.Context, text string) ([]screening.Finding, error)
}

// Service handles validated webhooks end to end.
type Service struct {
	normalizer Normalizer
	businesses BusinessDirectory
	rapidpro   rapidpro.Client
	whatsapp   whatsapp.Client
	guard      DeliveryGuard
	screener   Screener
	logger     *zap.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithDeliveryGuard enables redelivery detection.
func WithDeliveryGuard(guard DeliveryGuard) Option {
	return func(s *Service) { s.guard = guard }
}

// WithScreener enables URL screening of text messages.
func WithScreener(screener Screener) Option {
	return func(s *Service) { s.screener = screener }
}

// WithExtendedTypes forwards location and order messages too.
func WithExtendedTypes(enabled bool) Option {
	return func(s *Service) { s.normalizer.ForwardExtendedTypes = enabled }
}

// NewService wires the inbound pipeline.
func NewService(businesses BusinessDirectory, rp rapidpro.Client, wa whatsapp.Client, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		businesses: businesses,
		rapidpro:   rp,
		whatsapp:   wa,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleWebhook forwards the first message of a delivery to RapidPro and
// screens it when screening is enabled.
func (s *Service) HandleWebhook(ctx context.Context, webhook *models.WebhookMessage) Result {
	res := s.normalizer.Normalize(webhook)
	if res.Skipped > 0 {
		s.logger.Warn("only the first message of a batch is processed", zap.Int("skipped", res.Skipped))
	}
	if res.Status != StatusHandled {
		s.logger.Debug("webhook ignored", zap.String("reason", res.Reason))
		return res
	}

	event := res.Event
	log := s.logger.With(
		zap.String("message_id", event.MessageID),
		zap.String("type", event.MessageType),
		zap.String("phone_number_id", event.PhoneNumberID),
	)

	if s.guard != nil {
		first, err := s.guard.Claim(ctx, event.MessageID)
		switch {
		case err != nil:
			log.Warn("delivery guard unavailable, processing anyway", zap.Error(err))
		case !first:
			log.Info("dropping redelivered message")
			return Result{Status: StatusIgnored, Reason: ReasonDuplicateDelivery, Skipped: res.Skipped}
		}
	}

	if err := s.forward(ctx, event); err != nil {
		log.Error("failed to forward message to rapidpro", zap.Error(err))
		s.release(ctx, event.MessageID, log)
		res.Status = StatusFailed
		res.Err = err
		return res
	}
	log.Info("message forwarded to rapidpro")

	if s.screener != nil && event.MessageType == models.MessageTypeText {
		s.screen(ctx, event, log)
	}

	return res
}

func (s *Service) forward(ctx context.Context, event models.ForwardEvent) error {
	business, err := s.businesses.FindByPhoneNumberID(ctx, event.PhoneNumberID)
	if err != nil {
		return fmt.Errorf("resolve business for %s: %w", event.PhoneNumberID, err)
	}
	if err := s.rapidpro.Forward(ctx, business.RapidProChannel, event.Text, event.Sender); err != nil {
		return fmt.Errorf("forward message %s: %w", event.MessageID, err)
	}
	return nil
}

func (s *Service) release(ctx context.Context, messageID string, log *zap.Logger) {
	if s.guard == nil {
		return
	}
	if err := s.guard.Release(ctx, messageID); err != nil {
		log.Warn("failed to release delivery claim", zap.Error(err))
	}
}

func (s *Service) screen(ctx context.Context, event models.ForwardEvent, log *zap.Logger) {
	findings, err := s.screener.Screen(ctx, event.Text)
	if err != nil {
		var unavailable *models.CollaboratorUnavailableError
		if errors.As(err, &unavailable) {
			log.Warn("url screening skipped", zap.String("collaborator", unavailable.Collaborator), zap.Error(unavailable.Err))
			return
		}
		log.Error("url screening failed", zap.Error(err))
		return
	}

	for _, finding := range findings {
		log.Warn("malicious url reported",
			zap.String("url", finding.URL),
			zap.String("verdict", finding.Verdict),
			zap.Int("score", finding.Score),
		)
		if _, err := s.whatsapp.SendText(ctx, event.PhoneNumberID, event.Sender, screening.WarningText(finding.URL)); err != nil {
			log.Error("failed to send url warning", zap.String("url", finding.URL), zap.Error(err))
		}
	}
}
