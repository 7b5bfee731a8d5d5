package cart

import (
	"go-parts-gateway/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	carts := r.Group("/cart")
	carts.Use(middleware.AuthMiddleware())
	{
		carts.GET("", handler.Detail)
		carts.GET("/summary", handler.Summary)
		carts.DELETE("", handler.Clear)

		carts.POST("/items", handler.AddItem)
		carts.PUT("/items/:itemId", handler.UpdateQty)
		carts.DELETE("/items/:itemId", handler.RemoveItem)
	}
}
