package outbound

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/wa-relay/internal/domain/models"
	"github.com/mamadbah2/wa-relay/pkg/clients/whatsapp"
)

// BusinessDirectory resolves the business that owns a WhatsApp sender number.
type BusinessDirectory interface {
	FindByPhoneNumber(ctx context.Context, phoneNumber string) (*models.Business, error)
}

// Service relays RapidPro callbacks to WhatsApp.
type Service struct {
	businesses BusinessDirectory
	client     whatsapp.Client
	logger     *zap.Logger
}

// NewService wires the callback relay.
func NewService(businesses BusinessDirectory, client whatsapp.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{businesses: businesses, client: client, logger: logger}
}

// HandleCallback builds the message described by cb.Text and sends it to cb.To
// from the phone number registered for cb.FromNoPlus.
func (s *Service) HandleCallback(ctx context.Context, cb models.RapidProCallback) error {
	log := s.logger.With(zap.String("callback_id", cb.ID), zap.String("to", cb.To), zap.String("from", cb.FromNoPlus))

	msg, err := Dispatch(cb.To, cb.Text)
	if err != nil {
		log.Warn("rejecting rapidpro instruction", zap.Error(err))
		return err
	}

	business, err := s.businesses.FindByPhoneNumber(ctx, cb.FromNoPlus)
	if err != nil {
		log.Warn("no business for callback sender", zap.Error(err))
		return fmt.Errorf("resolve business for %s: %w", cb.FromNoPlus, err)
	}

	resp, err := s.client.SendMessage(ctx, business.BusinessID, msg)
	if err != nil {
		log.Error("failed to deliver outbound message", zap.String("type", msg.Type), zap.Error(err))
		return fmt.Errorf("deliver %s message to %s: %w", msg.Type, cb.To, err)
	}

	log.Info("outbound message delivered",
		zap.String("type", msg.Type),
		zap.String("business", business.ID),
		zap.String("message_id", resp.MessageID()),
	)
	return nil
}
