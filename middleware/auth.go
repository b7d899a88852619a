package middleware

import (
	"context"
	"strings"
	"time"

	"employee_tracker/model"
	"employee_tracker/services"
	"employee_tracker/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID    = "user_id"
	ContextRole      = "role"
	ContextToken     = "token"
	ContextExpiresAt = "token_expires_at"
)

type TokenParser interface {
	ParseToken(token string) (*services.Claims, error)
}

type Blacklist interface {
	IsBlacklisted(ctx context.Context, token string) bool
}

// bearerToken reads the Authorization header, falling back to the authtoken
// header older mobile builds send.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return strings.TrimSpace(c.GetHeader("authtoken"))
}

// AuthMiddleware validates the access token. blacklist may be nil.
func AuthMiddleware(tokens TokenParser, blacklist Blacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.TrackAuthAttempt("failure", "missing_token")
			utils.Unauthorized(c, "Missing or invalid token")
			c.Abort()
			return
		}

		if blacklist != nil && blacklist.IsBlacklisted(c.Request.Context(), tokenString) {
			utils.TrackAuthAttempt("failure", "blacklisted")
			utils.Unauthorized(c, "Token has been invalidated")
			c.Abort()
			return
		}

		claims, err := tokens.ParseToken(tokenString)
		if err != nil {
			utils.TrackAuthAttempt("failure", "invalid_token")
			utils.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, model.Role(claims.Role))
		c.Set(ContextToken, tokenString)
		if claims.ExpiresAt != nil {
			c.Set(ContextExpiresAt, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func Role(c *gin.Context) model.Role {
	if role, ok := c.Get(ContextRole); ok {
		if r, ok := role.(model.Role); ok {
			return r
		}
	}
	return ""
}

// Token returns the raw access token and its expiry.
func Token(c *gin.Context) (string, time.Time) {
	return c.GetString(ContextToken), c.GetTime(ContextExpiresAt)
}
