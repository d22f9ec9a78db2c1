package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/wa-relay/internal/domain/models"
	"github.com/mamadbah2/wa-relay/internal/domain/schema"
	"github.com/mamadbah2/wa-relay/internal/service/inbound"
)

// InboundService processes validated WhatsApp webhooks.
type InboundService interface {
	HandleWebhook(ctx context.Context, webhook *models.WebhookMessage) inbound.Result
}

// WebhookHandler handles inbound WhatsApp HTTP events.
type WebhookHandler struct {
	verifyToken string
	svc         InboundService
	logger      *zap.Logger
}

// NewWebhookHandler constructs the HTTP handler adapter.
func NewWebhookHandler(verifyToken string, svc InboundService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{verifyToken: verifyToken, svc: svc, logger: logger}
}

// Verify responds to Meta's webhook verification challenge.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || token == "" || token != h.verifyToken {
		h.logger.Warn("webhook verification failed", zap.String("mode", mode))
		c.Status(http.StatusForbidden)
		return
	}

	c.String(http.StatusOK, challenge)
}

// Receive ingests webhook POST callbacks from Meta. Processing failures are
// logged and still acknowledged so Meta does not keep redelivering.
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.logger.Warn("failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	payload, err := schema.ParseWebhook(body)
	if err != nil {
		h.rejectSchema(c, err)
		return
	}

	res := h.svc.HandleWebhook(c.Request.Context(), payload)
	fields := []zap.Field{
		zap.Stringer("status", res.Status),
		zap.String("reason", res.Reason),
		zap.String("message_id", res.Event.MessageID),
	}
	if res.Status == inbound.StatusFailed {
		h.logger.Error("failed processing webhook", append(fields, zap.Error(res.Err))...)
	} else {
		h.logger.Debug("webhook processed", fields...)
	}

	c.Status(http.StatusOK)
}

func (h *WebhookHandler) rejectSchema(c *gin.Context, err error) {
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		verr = schema.FromError(err)
	}
	h.logger.Warn("invalid payload", zap.String("path", c.FullPath()), zap.Error(verr))
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": verr.Violations})
}
