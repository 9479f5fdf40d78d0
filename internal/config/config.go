package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"candlescan/models"
)

// Backend selects the persistence layout.
const (
	BackendPartitioned = "partitioned" // per-symbol tables + shared common table
	BackendNormalized  = "normalized"  // companies / stock_prices / stock_price_patterns
)

// Config holds all application configuration
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBMaxConns int

	StartDate time.Time // inclusive
	EndDate   time.Time // inclusive

	BhavcopyBaseURL string
	RequestTimeout  int // seconds
	RequestsPerSec  int

	Backend  string
	LogLevel string

	TelegramBotToken string
	TelegramChatID   int64
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := &Config{
		DBHost:          getEnvWithDefault("DB_HOST", "localhost"),
		DBPort:          getEnvWithDefault("DB_PORT", "5432"),
		DBUser:          os.Getenv("DB_USER"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          getEnvWithDefault("DB_NAME", "stock_db"),
		DBSSLMode:       getEnvWithDefault("DB_SSLMODE", "disable"),
		DBMaxConns:      getEnvIntWithDefault("DB_MAX_CONNS", 10),
		BhavcopyBaseURL: os.Getenv("BHAVCOPY_BASE_URL"),
		RequestTimeout:  getEnvIntWithDefault("REQUEST_TIMEOUT", 30),
		RequestsPerSec:  getEnvIntWithDefault("REQUESTS_PER_SEC", 2),
		Backend:         getEnvWithDefault("DB_BACKEND", BackendPartitioned),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0),
	}

	if cfg.Backend != BackendPartitioned && cfg.Backend != BackendNormalized {
		return nil, fmt.Errorf("unknown DB_BACKEND %q", cfg.Backend)
	}

	now := models.DateOnly(time.Now())
	var err error
	cfg.StartDate, err = getEnvDateWithDefault("START_DATE", now)
	if err != nil {
		return nil, fmt.Errorf("parsing START_DATE: %w", err)
	}
	cfg.EndDate, err = getEnvDateWithDefault("END_DATE", now)
	if err != nil {
		return nil, fmt.Errorf("parsing END_DATE: %w", err)
	}
	if cfg.EndDate.Before(cfg.StartDate) {
		return nil, fmt.Errorf("END_DATE %s precedes START_DATE %s",
			cfg.EndDate.Format(models.DateLayoutConfig), cfg.StartDate.Format(models.DateLayoutConfig))
	}

	return cfg, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDateWithDefault(key string, defaultValue time.Time) (time.Time, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	t, err := time.Parse(models.DateLayoutConfig, value)
	if err != nil {
		return time.Time{}, err
	}
	return models.DateOnly(t), nil
}
