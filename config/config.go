package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	GolfAPIBaseURL string
	GolfAPIKey     string
	GolfAPIHost    string

	SyncInterval   time.Duration
	EnableAutoSync bool

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	golfBaseURL := os.Getenv("GOLF_API_BASE_URL")
	if golfBaseURL == "" {
		golfBaseURL = "https://live-golf-data.p.rapidapi.com"
	}
	golfKey := os.Getenv("GOLF_API_KEY")
	if golfKey == "" {
		return nil, fmt.Errorf("GOLF_API_KEY environment variable is not set")
	}
	golfHost := os.Getenv("GOLF_API_HOST")
	if golfHost == "" {
		golfHost = "live-golf-data.p.rapidapi.com"
	}

	syncIntervalStr := os.Getenv("SYNC_INTERVAL")
	if syncIntervalStr == "" {
		syncIntervalStr = "5m"
	}
	syncInterval, err := time.ParseDuration(syncIntervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_INTERVAL environment variable: %w", err)
	}
	if syncInterval < time.Minute {
		return nil, fmt.Errorf("SYNC_INTERVAL must be at least 1m, got %s", syncInterval)
	}

	enableAutoSync := false
	if v := os.Getenv("ENABLE_AUTO_SYNC"); v != "" {
		enableAutoSync, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ENABLE_AUTO_SYNC environment variable: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:    dbURL,
		JWTSecretKey:   jwtKey,
		ServerPort:     port,
		GolfAPIBaseURL: golfBaseURL,
		GolfAPIKey:     golfKey,
		GolfAPIHost:    golfHost,
		SyncInterval:   syncInterval,
		EnableAutoSync: enableAutoSync,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}
