package config

import (
	"errors"
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "key-123")
	t.Setenv("GEMINI_MODEL", "gemini-test")
	t.Setenv("GEMINI_BASE_URL", "http://model.local/v1beta/")
	t.Setenv("MODEL_TEMPERATURE", "0.5")
	t.Setenv("MODEL_TIMEOUT", "5s")
	t.Setenv("SEARCH_API_URL", "http://search.local/nearby")
	t.Setenv("SEARCH_METHOD", "get")
	t.Setenv("PORT", "9000")
	t.Setenv("RATE_LIMIT_CHAT", "10/min")
	t.Setenv("CLIENT_ID", "rahul_001")
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Model.APIKey != "key-123" || cfg.Model.Name != "gemini-test" {
		t.Fatalf("unexpected model config: %+v", cfg.Model)
	}
	if cfg.Model.BaseURL != "http://model.local/v1beta" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.Model.BaseURL)
	}
	if cfg.Model.Temperature != 0.5 || cfg.Model.TopP != 0.9 {
		t.Fatalf("unexpected sampling values: %+v", cfg.Model)
	}
	if cfg.Model.Timeout != 5*time.Second {
		t.Fatalf("expected model timeout 5s, got %s", cfg.Model.Timeout)
	}
	if cfg.Search.URL != "http://search.local/nearby" || cfg.Search.Method != "GET" {
		t.Fatalf("unexpected search config: %+v", cfg.Search)
	}
	if cfg.Search.Timeout != 10*time.Second {
		t.Fatalf("expected default search timeout, got %s", cfg.Search.Timeout)
	}
	if cfg.Search.PhoneRegion != "IN" {
		t.Fatalf("expected default phone region IN, got %s", cfg.Search.PhoneRegion)
	}
	if cfg.Port != "9000" || cfg.Frontend.ClientID != "rahul_001" {
		t.Fatalf("unexpected config values: %+v", cfg)
	}
	if cfg.RateLimitChat.Requests != 10 || cfg.RateLimitChat.Interval != time.Minute {
		t.Fatalf("unexpected rate limit config: %+v", cfg.RateLimitChat)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development environment by default")
	}

	// invalid rate limit should error
	os.Unsetenv("RATE_LIMIT_CHAT")
	t.Setenv("RATE_LIMIT_CHAT", "xyz")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid rate limit")
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SEARCH_API_URL", "GEMINI_MODEL", "CLIENT_ID", "SEARCH_METHOD", "RATE_LIMIT_CHAT", "MODEL_TEMPERATURE", "MODEL_TOP_P", "LOG_DEBUG"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Search.URL != "http://127.0.0.1:8000/data/search/nearby" {
		t.Fatalf("unexpected default search url: %s", cfg.Search.URL)
	}
	if cfg.Search.Method != "POST" {
		t.Fatalf("expected POST by default, got %s", cfg.Search.Method)
	}
	if cfg.Model.Name != "gemini-2.0-flash" {
		t.Fatalf("unexpected default model: %s", cfg.Model.Name)
	}
	if cfg.Frontend.ClientID != "234" {
		t.Fatalf("unexpected default client id: %s", cfg.Frontend.ClientID)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string][2]string{
		"temperature": {"MODEL_TEMPERATURE", "warm"},
		"top p":       {"MODEL_TOP_P", "high"},
		"log debug":   {"LOG_DEBUG", "maybe"},
		"method":      {"SEARCH_METHOD", "PUT"},
		"search wait": {"SEARCH_TIMEOUT", "ten seconds"},
		"model wait":  {"MODEL_TIMEOUT", "-5s"},
		"token ttl":   {"JWT_TTL", "forever"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(tt[0], tt[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt[0], tt[1])
			}
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	for env, want := range map[string]bool{"dev": true, "LOCAL": true, "production": false, "staging": false} {
		cfg := &Config{AppEnv: env}
		if got := cfg.IsDevelopment(); got != want {
			t.Fatalf("IsDevelopment(%q) = %v, want %v", env, got, want)
		}
	}
}

func TestParseRateLimit(t *testing.T) {
	cfg, err := parseRateLimit("5/sec")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Requests != 5 || cfg.Interval != time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := parseRateLimit("bad-format"); err == nil {
		t.Fatalf("expected error for malformed value")
	}
	if _, err := parseRateLimit("0/min"); err == nil {
		t.Fatalf("expected error for zero requests")
	}
	if _, err := parseRateLimit("5/day"); err == nil {
		t.Fatalf("expected error for unsupported unit")
	}
}

func TestGetEnv(t *testing.T) {
	os.Unsetenv("FOO")
	if val := getEnv("FOO", "fallback"); val != "fallback" {
		t.Fatalf("expected fallback, got %s", val)
	}
	t.Setenv("FOO", "value")
	if val := getEnv("FOO", "fallback"); val != "value" {
		t.Fatalf("expected env value, got %s", val)
	}
}

func TestParseDuration(t *testing.T) {
	t.Setenv("TEST_WAIT", "3h")
	if d, err := parseDuration("TEST_WAIT", time.Hour); err != nil || d != 3*time.Hour {
		t.Fatalf("expected 3h duration, got %s (%v)", d, err)
	}
	t.Setenv("TEST_WAIT", "")
	if d, err := parseDuration("TEST_WAIT", 24*time.Hour); err != nil || d != 24*time.Hour {
		t.Fatalf("expected fallback duration, got %s (%v)", d, err)
	}
	for _, bad := range []string{"invalid", "-5s", "0s"} {
		t.Setenv("TEST_WAIT", bad)
		if _, err := parseDuration("TEST_WAIT", time.Second); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestLoad_JWTSecretGuard(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://audit@localhost/chat")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); !errors.Is(err, ErrInsecureJWTSecret) {
		t.Fatalf("expected ErrInsecureJWTSecret for missing secret, got %v", err)
	}

	t.Setenv("JWT_SECRET", DefaultJWTSecret)
	if _, err := Load(); !errors.Is(err, ErrInsecureJWTSecret) {
		t.Fatalf("expected ErrInsecureJWTSecret for default secret, got %v", err)
	}

	t.Setenv("JWT_SECRET", "s3cr3t-rotated")
	cfg, err := Load()
	if err != nil || cfg.JWTSecret != "s3cr3t-rotated" {
		t.Fatalf("expected custom secret to load, got %v", err)
	}

	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_ENV", "development")
	if cfg, err := Load(); err != nil || cfg.JWTSecret != DefaultJWTSecret {
		t.Fatalf("expected default secret accepted in development, got %v", err)
	}

	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err != nil {
		t.Fatalf("expected no admin secret requirement without a database, got %v", err)
	}
}
