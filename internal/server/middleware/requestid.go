package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// RequestID extracts the request id from the gin context.
func RequestID(c *gin.Context) string {
	id, _ := c.Value(requestIDKey).(string)
	return id
}

// WithRequestID tags every request with an id, honoring one supplied by the
// caller, and echoes it in the response headers.
func WithRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}
