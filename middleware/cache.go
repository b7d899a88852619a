package middleware

import "github.com/gin-gonic/gin"

// NoStore keeps clients and proxies from caching attendance state, which
// changes on every toggle.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
