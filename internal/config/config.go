package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port             string
	DBConn           string
	LogLevel         string
	JWTSecret        string
	SMTPHost         string
	SMTPPort         string
	SMTPUsername     string
	SMTPPassword     string
	SenderEmail      string
	DigestRecipient  string
	DigestSchedule   string
	ForecastCacheTTL time.Duration
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cacheTTL, err := getEnvMinutes("FORECAST_CACHE_TTL_MINUTES", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DBConn:           getEnv("DB_CONN", "host=localhost port=5432 user=deliback password=deliback dbname=deliback sslmode=disable"),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		SMTPHost:         getEnv("SMTP_HOST", "localhost"),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SenderEmail:      getEnv("SENDER_EMAIL", "forecast@deliback.local"),
		DigestRecipient:  getEnv("DIGEST_RECIPIENT", ""),
		DigestSchedule:   getEnv("DIGEST_SCHEDULE", "0 6 * * *"),
		ForecastCacheTTL: cacheTTL,
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvMinutes(key string, defaultMinutes int) (time.Duration, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return time.Duration(defaultMinutes) * time.Minute, nil
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return time.Duration(minutes) * time.Minute, nil
}
