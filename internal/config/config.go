// Package config handles loading application configuration from environment variables.
// All settings have sensible defaults for local development.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application settings loaded from environment variables.
type Config struct {
	Port                 string
	DatabasePath         string
	JWTSecret            string
	InternalAPIKey       string
	DiscordClientID      string
	DiscordClientSecret  string
	DiscordRedirectURI   string
	BotAPIURL            string
	BotAPIKey            string
	DashboardURL         string
	SessionTokenDuration time.Duration
	RateLimitPerMinute   int
	CORSAllowedOrigins   []string
	TrustedProxies       []string
	SentryDSN            string
	SentryDSNFrontend    string
	SentryEnvironment    string
}

// Load reads configuration from environment variables, using defaults where not set.
func Load() *Config {
	return &Config{
		Port:                 getEnv("PORT", "8080"),
		DatabasePath:         getEnv("DATABASE_PATH", "./aura.db"),
		JWTSecret:            getEnv("JWT_SECRET", "change-me-in-production"), // #nosec G101 -- intentional dev default
		InternalAPIKey:       getEnv("INTERNAL_API_KEY", "change-me-too"),     // #nosec G101 -- intentional dev default
		DiscordClientID:      getEnv("DISCORD_CLIENT_ID", ""),
		DiscordClientSecret:  getEnv("DISCORD_CLIENT_SECRET", ""),
		DiscordRedirectURI:   getEnv("DISCORD_REDIRECT_URI", "http://localhost:8080/api/auth/callback"),
		BotAPIURL:            getEnv("BOT_API_URL", "http://localhost:4050"),
		BotAPIKey:            getEnv("BOT_API_KEY", ""),
		DashboardURL:         getEnv("DASHBOARD_URL", "http://localhost:5173"),
		SessionTokenDuration: getDurationEnv("SESSION_TOKEN_DURATION", 7*24*time.Hour),
		RateLimitPerMinute:   getIntEnv("RATE_LIMIT_PER_MINUTE", 30),
		CORSAllowedOrigins:   getStringSliceEnvDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		TrustedProxies:       getStringSliceEnv("TRUSTED_PROXIES"),
		SentryDSN:            getEnv("SENTRY_DSN", ""),
		SentryDSNFrontend:    getEnv("SENTRY_DSN_FRONTEND", ""),
		SentryEnvironment:    getEnv("SENTRY_ENVIRONMENT", "production"),
	}
}

func getStringSliceEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var result []string
	for _, s := range strings.Split(value, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			result = append(result, s)
		}
	}
	return result
}

func getStringSliceEnvDefault(key string, defaultValue []string) []string {
	if result := getStringSliceEnv(key); result != nil {
		return result
	}
	return defaultValue
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
