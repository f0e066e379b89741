package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/octobees/nearby-assistant/internal/auth"
	"github.com/octobees/nearby-assistant/internal/config"
	"github.com/octobees/nearby-assistant/internal/logger"
)

// token prints a bearer token for the admin endpoints, signed with JWT_SECRET.
func main() {
	subject := flag.String("sub", "operator", "token subject")
	role := flag.String("role", auth.RoleAdmin, "role claim")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to JWT_TTL)")
	flag.Parse()

	log := logger.Must(false)
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	lifetime := cfg.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}
	manager := auth.NewJWTManager(cfg.JWTSecret, lifetime)
	token, err := manager.GenerateToken(*subject, *role)
	if err != nil {
		log.Fatal("failed to sign token", zap.Error(err))
	}

	fmt.Fprintln(os.Stdout, token)
	fmt.Fprintf(os.Stderr, "expires %s\n", time.Now().Add(manager.TTL()).UTC().Format(time.RFC3339))
}
