package main

import (
	"log"
	"time"

	"go-parts-gateway/internal/app"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.ValidateAPI(); err != nil {
		log.Fatal(err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// build dependency + routes
	cleanup, err := app.BuildApp(r, cfg, logger)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}
	defer cleanup()

	err = app.StartHTTPServer(r, app.ServerConfig{
		Port:            cfg.Port,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    cfg.UpstreamTimeout + 5*time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}, logger)
	if err != nil {
		logger.Error("http server failed", zap.Error(err))
	}
}
