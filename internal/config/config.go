package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// ModelConfig holds the hosted language model settings.
type ModelConfig struct {
	APIKey      string
	Name        string
	BaseURL     string
	Temperature float64
	TopP        float64
	Timeout     time.Duration
}

// SearchConfig describes the nearby search service the agent may call.
type SearchConfig struct {
	URL         string
	Method      string
	Timeout     time.Duration
	PhoneRegion string
}

// FrontendConfig is handed to the static page once at load time.
type FrontendConfig struct {
	APIBaseURL string
	ClientID   string
}

// Config aggregates application-wide configuration values.
type Config struct {
	AppEnv        string
	Port          string
	LogDebug      bool
	DatabaseURL   string
	JWTSecret     string
	TokenTTL      time.Duration
	RateLimitChat RateLimitConfig
	Model         ModelConfig
	Search        SearchConfig
	Frontend      FrontendConfig
}

// DefaultJWTSecret is only accepted in development environments.
const DefaultJWTSecret = "dev-secret"

// ErrInsecureJWTSecret is returned when the admin API would be exposed with a missing
// or default signing secret outside development.
var ErrInsecureJWTSecret = errors.New("JWT_SECRET must be set to a non-default value when DATABASE_URL is configured outside development")

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   getEnv("JWT_SECRET", DefaultJWTSecret),
		Model: ModelConfig{
			APIKey:  os.Getenv("GOOGLE_API_KEY"),
			Name:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			BaseURL: strings.TrimRight(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"), "/"),
		},
		Search: SearchConfig{
			URL:         getEnv("SEARCH_API_URL", "http://127.0.0.1:8000/data/search/nearby"),
			Method:      strings.ToUpper(getEnv("SEARCH_METHOD", "POST")),
			PhoneRegion: strings.ToUpper(getEnv("PHONE_REGION", "IN")),
		},
		Frontend: FrontendConfig{
			APIBaseURL: getEnv("API_BASE_URL", ""),
			ClientID:   getEnv("CLIENT_ID", "234"),
		},
	}

	var err error
	if cfg.Model.Temperature, err = parseFloat("MODEL_TEMPERATURE", 0.3); err != nil {
		return nil, err
	}
	if cfg.Model.TopP, err = parseFloat("MODEL_TOP_P", 0.9); err != nil {
		return nil, err
	}
	if cfg.LogDebug, err = parseBool("LOG_DEBUG", false); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = parseDuration("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Model.Timeout, err = parseDuration("MODEL_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Search.Timeout, err = parseDuration("SEARCH_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	switch cfg.Search.Method {
	case "GET", "POST":
	default:
		return nil, fmt.Errorf("invalid SEARCH_METHOD value: %q", cfg.Search.Method)
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_CHAT", "30/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_CHAT value: %w", err)
	}
	cfg.RateLimitChat = rl

	if cfg.DatabaseURL != "" && !cfg.IsDevelopment() && cfg.JWTSecret == DefaultJWTSecret {
		return nil, ErrInsecureJWTSecret
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs in a local development environment.
func (c *Config) IsDevelopment() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	}
	return false
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseFloat(key string, fallback float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %q", key, raw)
	}
	return value, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("invalid %s value: %q", key, raw)
	}
	return value, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s value: %q", key, raw)
	}
	return d, nil
}
