package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DatabasePath != "./aura.db" {
		t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, "./aura.db")
	}
	if cfg.SessionTokenDuration != 7*24*time.Hour {
		t.Errorf("SessionTokenDuration = %v, want %v", cfg.SessionTokenDuration, 7*24*time.Hour)
	}
	if cfg.RateLimitPerMinute != 30 {
		t.Errorf("RateLimitPerMinute = %d, want 30", cfg.RateLimitPerMinute)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("CORSAllowedOrigins = %v, want two dev origins", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TOKEN_DURATION", "12h")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://panel.example.com, https://alt.example.com")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.1")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.SessionTokenDuration != 12*time.Hour {
		t.Errorf("SessionTokenDuration = %v, want 12h", cfg.SessionTokenDuration)
	}
	if cfg.RateLimitPerMinute != 5 {
		t.Errorf("RateLimitPerMinute = %d, want 5", cfg.RateLimitPerMinute)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[0] != "https://panel.example.com" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if len(cfg.TrustedProxies) != 2 {
		t.Errorf("TrustedProxies = %v", cfg.TrustedProxies)
	}
}

func TestInvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("SESSION_TOKEN_DURATION", "not-a-duration")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg := Load()

	if cfg.SessionTokenDuration != 7*24*time.Hour {
		t.Errorf("SessionTokenDuration = %v, want default", cfg.SessionTokenDuration)
	}
	if cfg.RateLimitPerMinute != 30 {
		t.Errorf("RateLimitPerMinute = %d, want default", cfg.RateLimitPerMinute)
	}
}
