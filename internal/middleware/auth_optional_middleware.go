package middleware

import (
	"go-parts-gateway/internal/pkg/upstream"

	"github.com/gin-gonic/gin"
)

// OptionalAuthMiddleware lets guests through. A valid token is still forwarded
// upstream so the backend can personalize public listings.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := parseToken(tokenString)
		if err != nil {
			// invalid or expired token: treated as guest
			c.Next()
			return
		}

		if role, ok := claims["role"].(string); ok {
			c.Set("role", role)
		}
		if userID, ok := claims["user_id"].(string); ok {
			c.Set("user_id", userID)
		}
		c.Request = c.Request.WithContext(upstream.WithToken(c.Request.Context(), tokenString))

		c.Next()
	}
}
