package main

import (
	"log"

	"go-parts-gateway/internal/app"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.ValidateWorker(); err != nil {
		log.Fatal(err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := app.RunWorker(cfg, logger); err != nil {
		logger.Fatal("worker failed", zap.Error(err))
	}
}
