package order

import (
	"go-parts-gateway/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	orders := r.Group("/orders")
	orders.Use(middleware.AuthMiddleware())
	orders.Use(middleware.RateLimitByUser(5, 10))
	{
		// one checkout per user every 10 seconds
		orders.POST("/checkout",
			middleware.RateLimitByUser(0.1, 1),
			handler.Checkout,
		)

		orders.GET("", handler.List)
		orders.GET("/:id", handler.Detail)
		orders.POST("/:id/messages",
			middleware.RateLimitByUser(1, 5),
			handler.PostMessage,
		)
	}
}
