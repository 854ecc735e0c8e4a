package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Port:                 "8081",
		SQLiteDBPath:         filepath.Join(t.TempDir(), "ledger.db"),
		LogLevel:             "info",
		RateLimitPerMinute:   60,
		CacheSize:            256,
		CacheTTL:             5 * time.Minute,
		CacheCleanupInterval: time.Minute,
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LOG_LEVEL", "RATE_LIMIT_PER_MINUTE", "CACHE_TTL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8081" {
		t.Fatalf("Port = %q, want 8081", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.RateLimitPerMinute != 60 {
		t.Fatalf("RateLimitPerMinute = %d, want 60", cfg.RateLimitPerMinute)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("CacheTTL = %v, want 5m", cfg.CacheTTL)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")
	t.Setenv("CACHE_TTL", "30s")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Fatalf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.RateLimitPerMinute != 5 {
		t.Fatalf("RateLimitPerMinute = %d, want 5", cfg.RateLimitPerMinute)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Fatalf("CacheTTL = %v, want 30s", cfg.CacheTTL)
	}
}

func TestLoadIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "lots")
	t.Setenv("CACHE_TTL", "forever")

	cfg := Load()

	if cfg.RateLimitPerMinute != 60 {
		t.Fatalf("RateLimitPerMinute = %d, want default 60", cfg.RateLimitPerMinute)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("CacheTTL = %v, want default 5m", cfg.CacheTTL)
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"non-numeric port", func(c *Config) { c.Port = "http" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "invalid port"},
		{"empty db path", func(c *Config) { c.SQLiteDBPath = "" }, "database path"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "invalid log level"},
		{"zero rate limit", func(c *Config) { c.RateLimitPerMinute = 0 }, "invalid rate limit"},
		{"zero cache size", func(c *Config) { c.CacheSize = 0 }, "invalid cache size"},
		{"tiny cache ttl", func(c *Config) { c.CacheTTL = time.Millisecond }, "invalid cache TTL"},
		{"tiny cleanup interval", func(c *Config) { c.CacheCleanupInterval = 0 }, "invalid cache cleanup interval"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(t)
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("error %q does not mention %q", err, tc.wantMsg)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig(t)
	cfg.Port = "bad"
	cfg.LogLevel = "bad"
	cfg.RateLimitPerMinute = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"invalid port", "invalid log level", "invalid rate limit"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}
