package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/octobees/nearby-assistant/internal/frontend"
	"github.com/octobees/nearby-assistant/internal/logger"
)

func main() {
	var (
		configPath = flag.String("config", "chat.yaml", "path to the client YAML config")
		baseURL    = flag.String("api", "", "API base URL (overrides config)")
		clientID   = flag.String("client", "", "client id (overrides config)")
		lat        = flag.Float64("lat", 0, "latitude (overrides config)")
		lng        = flag.Float64("lng", 0, "longitude (overrides config)")
		debug      = flag.Bool("debug", false, "verbose logging")
	)
	flag.Parse()

	log := logger.Must(*debug)
	defer func() { _ = log.Sync() }()

	cfg, err := frontend.LoadClientConfig(*configPath)
	if err != nil {
		log.Fatal("failed to load client config", zap.Error(err))
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "api":
			cfg.APIBaseURL = *baseURL
		case "client":
			cfg.ClientID = *clientID
		case "lat":
			cfg.Latitude = *lat
		case "lng":
			cfg.Longitude = *lng
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	transport := frontend.NewHTTPTransport(nil, cfg.APIBaseURL, cfg.ClientID, cfg.Timeout)
	session := frontend.NewSession(transport, frontend.NewHistoryBuffer(frontend.HistoryCapacity), cfg.ClientID, frontend.Location{
		Latitude:  cfg.Latitude,
		Longitude: cfg.Longitude,
	})
	renderer := frontend.NewRenderer(os.Stdout, cfg.Region)

	log.Debug("chat client ready",
		zap.String("api", cfg.APIBaseURL),
		zap.String("client_id", cfg.ClientID),
		zap.Float64("lat", cfg.Latitude),
		zap.Float64("lon", cfg.Longitude),
	)
	fmt.Println("Ask about places nearby. Ctrl-D to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}

		exchange, err := session.Send(ctx, message)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  ! %v\n", err)
			continue
		}
		if err := renderer.Render(exchange); err != nil {
			log.Error("render failed", zap.Error(err))
		}
		if ctx.Err() != nil {
			return
		}
	}
}
