package catalog

import (
	"go-parts-gateway/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	catalog := r.Group("/catalog")
	catalog.Use(middleware.OptionalAuthMiddleware())
	{
		catalog.GET("/feed",
			middleware.RateLimitByIP(10, 20),
			handler.Feed,
		)
	}
}
