// Package config loads the client's runtime settings from the environment.
package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var ErrMissingAPIKey = errors.New("AUCTION_API_KEY is not set")

// Config holds everything the client needs to talk to the auction API and
// its optional backing stores.
type Config struct {
	// BaseURL is the auction API root.
	BaseURL string
	// APIKey is sent as X-Noroff-API-Key on every request.
	APIKey string
	// PageSize is the default page size for listing views.
	PageSize int

	// RedisAddr enables the Redis session store when set; otherwise the
	// session lives in memory for the process lifetime.
	RedisAddr string
	// DatabaseURL enables the snapshot store when set.
	DatabaseURL string
}

// Load reads .env.local then .env (either may be absent), then the
// environment. The API key is the only hard requirement.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:     getEnv("AUCTION_API_URL", "https://v2.api.noroff.dev"),
		APIKey:      os.Getenv("AUCTION_API_KEY"),
		PageSize:    getEnvInt("AUCTION_PAGE_SIZE", 12),
		RedisAddr:   os.Getenv("AUCTION_REDIS_ADDR"),
		DatabaseURL: os.Getenv("AUCTION_DB_URL"),
	}
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
