package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	Port            string
	Env             string
	UpstreamBaseURL string
	UpstreamTimeout time.Duration
	JWTSecret       string
	DBURL           string
	RedisAddr       string
	KafkaBroker     string
	CacheStaleTime  time.Duration
	MigrationsPath  string
}

// LoadConfig reads the process environment. cmd binaries load .env first.
func LoadConfig() (Config, error) {
	upstreamTimeout, err := durationEnv("UPSTREAM_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	staleTime, err := durationEnv("CACHE_STALE_TIME", 30*time.Second)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Port:            getEnv("PORT", "3000"),
		Env:             getEnv("APP_ENV", "production"),
		UpstreamBaseURL: os.Getenv("UPSTREAM_BASE_URL"),
		UpstreamTimeout: upstreamTimeout,
		JWTSecret:       os.Getenv("JWT_SECRET"),
		DBURL:           os.Getenv("DB_URL"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBroker:     getEnv("KAFKA_BROKER", "localhost:9092"),
		CacheStaleTime:  staleTime,
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "migrations"),
	}, nil
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ValidateAPI checks what the HTTP server cannot start without.
func (c Config) ValidateAPI() error {
	var errs []error
	if c.UpstreamBaseURL == "" {
		errs = append(errs, errors.New("UPSTREAM_BASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.DBURL == "" {
		errs = append(errs, errors.New("DB_URL is required"))
	}
	return errors.Join(errs...)
}

func (c Config) ValidateWorker() error {
	if c.DBURL == "" {
		return errors.New("DB_URL is required")
	}
	return nil
}

func NewLogger(cfg Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}
