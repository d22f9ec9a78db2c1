package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/wa-relay/internal/domain/models"
	"github.com/mamadbah2/wa-relay/internal/service/businesses"
)

// BusinessService manages the business registry.
type BusinessService interface {
	Register(ctx context.Context, business models.Business) (*models.Business, error)
	Get(ctx context.Context, id string) (*models.Business, error)
	List(ctx context.Context) ([]models.Business, error)
}

// BusinessHandler exposes the registry over HTTP.
type BusinessHandler struct {
	svc    BusinessService
	logger *zap.Logger
}

// NewBusinessHandler constructs the registry HTTP adapter.
func NewBusinessHandler(svc BusinessService, logger *zap.Logger) *BusinessHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BusinessHandler{svc: svc, logger: logger}
}

// Register stores a new business.
func (h *BusinessHandler) Register(c *gin.Context) {
	var business models.Business
	if !bindJSON(c, &business, h.logger) {
		return
	}

	registered, err := h.svc.Register(c.Request.Context(), business)
	if err != nil {
		if errors.Is(err, businesses.ErrBusinessExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("failed to register business", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register business"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Business registered", "business_id": registered.ID})
}

// Get returns one business. The id may be given with or without the "businesses/" prefix.
func (h *BusinessHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !strings.HasPrefix(id, "businesses/") {
		id = "businesses/" + id
	}

	business, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, businesses.ErrBusinessNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "business not found"})
			return
		}
		h.logger.Error("failed to load business", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load business"})
		return
	}

	c.JSON(http.StatusOK, business)
}

// List returns every registered business.
func (h *BusinessHandler) List(c *gin.Context) {
	all, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list businesses", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list businesses"})
		return
	}
	if all == nil {
		all = []models.Business{}
	}
	c.JSON(http.StatusOK, gin.H{"businesses": all})
}
