package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/wa-relay/internal/domain/models"
	"github.com/mamadbah2/wa-relay/internal/service/businesses"
	"github.com/mamadbah2/wa-relay/internal/service/outbound"
	"github.com/mamadbah2/wa-relay/pkg/clients/whatsapp"
)

// CallbackService relays RapidPro outgoing messages to WhatsApp.
type CallbackService interface {
	HandleCallback(ctx context.Context, cb models.RapidProCallback) error
}

// SurveyService forwards completed flow results.
type SurveyService interface {
	SendEmail(ctx context.Context, results models.FlowResults) error
	AppendToSheet(ctx context.Context, results models.FlowResults) error
}

// RapidProHandler serves the endpoints RapidPro calls.
type RapidProHandler struct {
	callbacks CallbackService
	surveys   SurveyService
	logger    *zap.Logger
}

// NewRapidProHandler constructs the RapidPro HTTP adapter.
func NewRapidProHandler(callbacks CallbackService, surveys SurveyService, logger *zap.Logger) *RapidProHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RapidProHandler{callbacks: callbacks, surveys: surveys, logger: logger}
}

// Callback sends the message RapidPro wants delivered.
func (h *RapidProHandler) Callback(c *gin.Context) {
	var cb models.RapidProCallback
	if !bindJSON(c, &cb, h.logger) {
		return
	}

	err := h.callbacks.HandleCallback(c.Request.Context(), cb)
	if err == nil {
		c.String(http.StatusOK, "success")
		return
	}

	var cmdErr *outbound.UnrecognizedCommandError
	var deliveryErr *whatsapp.DeliveryError
	switch {
	case errors.As(err, &cmdErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": cmdErr.Error()})
	case errors.Is(err, businesses.ErrBusinessNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no business registered for " + cb.FromNoPlus})
	case errors.As(err, &deliveryErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "whatsapp rejected the message", "code": deliveryErr.Code})
	default:
		h.logger.Error("failed processing rapidpro callback", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process callback"})
	}
}

// SendEmail mails survey results. Failures are reported in the body with 200.
func (h *RapidProHandler) SendEmail(c *gin.Context) {
	var results models.FlowResults
	if !bindJSON(c, &results, h.logger) {
		return
	}

	if err := h.surveys.SendEmail(c.Request.Context(), results); err != nil {
		h.logger.Error("failed to send email", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "Failed to send email", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Email sent successfully"})
}

// AppendToSheet writes survey results to the spreadsheet. Failures are reported in the body with 200.
func (h *RapidProHandler) AppendToSheet(c *gin.Context) {
	var results models.FlowResults
	if !bindJSON(c, &results, h.logger) {
		return
	}

	if err := h.surveys.AppendToSheet(c.Request.Context(), results); err != nil {
		h.logger.Error("failed to write to sheet", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "Failed to write to sheet", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Row appended"})
}
