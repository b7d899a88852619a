package middleware

import (
	"log"
	"runtime/debug"

	"employee_tracker/utils"

	"github.com/gin-gonic/gin"
)

func EnhancedRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic serving %s %s: %v\n%s", c.Request.Method, c.Request.URL.Path, err, debug.Stack())
				utils.TrackError("http", "panic")
				if !c.Writer.Written() {
					utils.InternalError(c, "Internal server error")
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
