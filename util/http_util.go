// api/util/http_util.go
package util

import (
	logger "github.com/m2m-works/scld/api/logging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// RequestingEntity returns the issuer identity bound to the request by the
// identity middleware. Empty when the caller supplied none.
func RequestingEntity(c *gin.Context) string {
	entity, exists := c.Get("requestingEntity")
	if !exists {
		return ""
	}
	return entity.(string)
}
