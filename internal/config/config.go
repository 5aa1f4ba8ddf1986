package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	// Backend
	APIBaseURL     string
	WSURL          string
	RequestTimeout time.Duration

	// Credential store
	RedisAddr string
	RedisPass string
	RedisDB   int

	// Mock backend (cmd/mockapi)
	HTTPAddr   string
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	Debug bool
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8000"),
		WSURL:          getEnv("WS_URL", "ws://localhost:8000/ws"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),
		RedisDB:   getEnvInt("REDIS_DB", 0),

		HTTPAddr:   getEnv("HTTP_ADDR", ":8000"),
		JWTSecret:  getEnv("JWT_SECRET", "dev-only-secret"),
		AccessTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL: getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		Debug: strings.ToLower(getEnv("DEBUG", "false")) == "true",
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
