package middleware

import (
	"employee_tracker/utils"

	"github.com/gin-gonic/gin"
)

// RequestTracingMiddleware tags each request with an ID, reusing one the
// client or proxy already sent.
func RequestTracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if !utils.ValidID(requestID) {
			requestID = utils.GenerateID()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}
