package middleware

import (
	"employee_tracker/model"
	"employee_tracker/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through only for the listed roles. It must
// run after AuthMiddleware.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := Role(c)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		utils.Forbidden(c, "You are not allowed to perform this action")
		c.Abort()
	}
}
