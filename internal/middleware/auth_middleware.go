package middleware

import (
	"errors"
	"fmt"
	"os"
	"strings"

	autherrors "go-parts-gateway/internal/auth/errors"
	"go-parts-gateway/internal/pkg/apperror"
	"go-parts-gateway/internal/pkg/response"
	"go-parts-gateway/internal/pkg/upstream"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// bearerToken reads the Authorization header, falling back to the access_token cookie.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	token, _ := c.Cookie("access_token")
	return token
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, autherrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, autherrors.ErrInvalidToken
	}
	return claims, nil
}

func abort(c *gin.Context, e *apperror.AppError) {
	response.Error(c, e.HTTPStatus, e.Code, e.Message, nil)
	c.Abort()
}

// AuthMiddleware validates the bearer token, exposes user_id_validated and role to
// handlers and forwards the raw token to the upstream backend through the request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			abort(c, autherrors.ErrUnauthorized)
			return
		}

		claims, err := parseToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abort(c, autherrors.ErrTokenExpired)
				return
			}
			abort(c, autherrors.ErrInvalidToken)
			return
		}

		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			abort(c, autherrors.ErrInvalidToken)
			return
		}
		role, _ := claims["role"].(string)

		c.Set("user_id_validated", userID)
		c.Set("role", role)
		c.Request = c.Request.WithContext(upstream.WithToken(c.Request.Context(), tokenString))

		c.Next()
	}
}

func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("role")
		if !exists {
			abort(c, autherrors.ErrForbidden)
			return
		}

		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}
		abort(c, autherrors.ErrForbidden)
	}
}
