package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pressroomhq/printops_backend/utils"
)

const correlationHeader = "X-Correlation-Id"

// CorrelationMiddleware tags every request with a correlation id so webhook
// retries of the same delivery can be tied together in the logs.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationId := strings.TrimSpace(c.GetHeader(correlationHeader))
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), correlationId)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(correlationHeader, correlationId)
		c.Next()
	}
}
