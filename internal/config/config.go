// Package config reads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string

	JWTSecret   string
	JWTTokenTTL time.Duration

	// DatabaseURL selects the Postgres store; empty means in-memory.
	DatabaseURL string

	// RedisAddr enables the view cache and user event stream when set.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string

	CORSAllowedOrigins string
	LoginRateLimit     int
	LoginRateWindow    time.Duration

	AdminEmails []string
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

// Load reads .env if present, then the process environment. Variables
// already set in the environment win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ttl, err := getEnvAsDuration("JWT_TOKEN_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	window, err := getEnvAsDuration("LOGIN_RATE_WINDOW", time.Minute)
	if err != nil {
		return nil, err
	}
	limit, err := getEnvAsInt("LOGIN_RATE_LIMIT", 10)
	if err != nil {
		return nil, err
	}
	redisDB, err := getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:               getEnv("PORT", "3333"),
		GinMode:            getEnv("GIN_MODE", "release"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTTokenTTL:        ttl,
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            redisDB,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		LoginRateLimit:     limit,
		LoginRateWindow:    window,
		AdminEmails:        splitList(os.Getenv("ADMIN_EMAILS")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.JWTTokenTTL <= 0 {
		return fmt.Errorf("JWT_TOKEN_TTL must be positive, got %s", c.JWTTokenTTL)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
