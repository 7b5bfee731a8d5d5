package app

import (
	"database/sql"
	"net/http"

	"go-parts-gateway/internal/cart"
	"go-parts-gateway/internal/catalog"
	"go-parts-gateway/internal/order"
	"go-parts-gateway/internal/outbox"
	"go-parts-gateway/internal/pkg/upstream"
	"go-parts-gateway/internal/querycache"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type infra struct {
	db       *sql.DB
	upstream *upstream.Client
	cache    *querycache.Client
}

type modules struct {
	cart    cart.Service
	catalog catalog.Service
	order   order.Service
}

func buildModules(in infra, logger *zap.Logger) modules {
	// --- Repositories ---
	cartRepo := cart.NewRepository(in.upstream)
	catalogRepo := catalog.NewRepository(in.upstream)
	orderRepo := order.NewRepository(in.db)
	outboxRepo := outbox.NewRepository(in.db)

	// --- Services ---
	cartService := cart.NewService(cart.Deps{
		Repo:   cartRepo,
		Cache:  in.cache,
		Logger: logger,
	})
	catalogService := catalog.NewService(catalog.Deps{
		Repo:   catalogRepo,
		Cache:  in.cache,
		Logger: logger,
	})
	orderService := order.NewService(order.Deps{
		DB:         in.db,
		Repo:       orderRepo,
		OutboxRepo: outboxRepo,
		CartSvc:    cartService,
		CatalogSvc: catalogService,
		Logger:     logger,
	})

	return modules{cart: cartService, catalog: catalogService, order: orderService}
}

func registerModules(router *gin.Engine, in infra, logger *zap.Logger) {
	m := buildModules(in, logger)

	// --- Handlers ---
	cartHandler := cart.NewHandler(m.cart, logger)
	catalogHandler := catalog.NewHandler(m.catalog, logger)
	orderHandler := order.NewHandler(m.order, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		cart.RegisterRoutes(api, cartHandler)
		catalog.RegisterRoutes(api, catalogHandler)
		order.RegisterRoutes(api, orderHandler)
	}
}
