package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/wa-relay/internal/domain/schema"
)

// bindJSON decodes the body into v and validates its binding tags. On failure
// it answers 422 with the field violations and returns false.
func bindJSON(c *gin.Context, v any, logger *zap.Logger) bool {
	body, err := c.GetRawData()
	if err == nil {
		err = json.Unmarshal(body, v)
	}
	if err == nil {
		err = schema.Struct(v)
	}
	if err == nil {
		return true
	}

	verr := schema.FromError(err)
	logger.Warn("invalid payload", zap.String("path", c.FullPath()), zap.Error(verr))
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": verr.Violations})
	return false
}
