package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CorrelationIDHeader is the HTTP header for correlation ID
	CorrelationIDHeader = "X-Correlation-ID"
	// CorrelationIDKey is the key used to store correlation ID in the gin context
	CorrelationIDKey = "correlation_id"
)

type correlationIDCtxKey struct{}

// CorrelationID accepts the caller's id or mints one, echoes it on the response
// and stores it on both the gin context and the request context.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Header(CorrelationIDHeader, correlationID)
		c.Set(CorrelationIDKey, correlationID)
		c.Request = c.Request.WithContext(ContextWithCorrelationID(c.Request.Context(), correlationID))
		c.Next()
	}
}

// GetCorrelationID retrieves the correlation ID from the gin context if present
func GetCorrelationID(c *gin.Context) string {
	if id, exists := c.Get(CorrelationIDKey); exists {
		if correlationID, ok := id.(string); ok {
			return correlationID
		}
	}
	return ""
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDCtxKey{}, id)
}

// CorrelationIDFromContext lets non-HTTP layers forward the id downstream
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDCtxKey{}).(string)
	return id
}
