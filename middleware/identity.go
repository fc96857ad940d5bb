// api/middleware/identity.go

package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	entityHeader    = "X-Requesting-Entity"
)

// RequestID tags every request with a correlation id, preserving one supplied
// by the caller.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// Identity binds the issuer identity to the request. Callers identify
// themselves by header; access-right evaluation decides what the identity may
// do, so an absent header just yields an identity no access right grants.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		entity := c.GetHeader(entityHeader)
		if entity == "" {
			entity = "guest"
		}
		c.Set("requestingEntity", entity)
		c.Next()
	}
}
