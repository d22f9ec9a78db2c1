package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/wa-relay/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	Webhook  *handlers.WebhookHandler
	RapidPro *handlers.RapidProHandler
	Business *handlers.BusinessHandler
}

// New wires the Gin engine with required routes and middlewares. When
// appSecret is set, webhook posts must carry a valid X-Hub-Signature-256.
func New(h Handlers, appSecret string, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	receive := []gin.HandlerFunc{h.Webhook.Receive}
	if appSecret != "" {
		receive = append([]gin.HandlerFunc{signatureMiddleware(appSecret, logger)}, receive...)
	}

	for _, path := range []string{"/whatsapp/webhook", "/webhook"} {
		r.GET(path, h.Webhook.Verify)
		r.POST(path, receive...)
	}

	rapidpro := r.Group("/rapidpro")
	rapidpro.POST("/callback", h.RapidPro.Callback)
	rapidpro.POST("/send-email", h.RapidPro.SendEmail)
	rapidpro.POST("/sheet", h.RapidPro.AppendToSheet)
	rapidpro.POST("/sendToSheet", h.RapidPro.AppendToSheet)

	business := r.Group("/businesses")
	business.POST("", h.Business.Register)
	business.GET("", h.Business.List)
	business.GET("/:id", h.Business.Get)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized", zap.Bool("signature_check", appSecret != ""))
	}

	return r
}
