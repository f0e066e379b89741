package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/nearby-assistant/internal/agent"
	"github.com/octobees/nearby-assistant/internal/auth"
	"github.com/octobees/nearby-assistant/internal/config"
	"github.com/octobees/nearby-assistant/internal/database"
	"github.com/octobees/nearby-assistant/internal/handler"
	"github.com/octobees/nearby-assistant/internal/logger"
	middlewarepkg "github.com/octobees/nearby-assistant/internal/middleware"
	"github.com/octobees/nearby-assistant/internal/repository"
	"github.com/octobees/nearby-assistant/internal/router"
	"github.com/octobees/nearby-assistant/internal/search"
	"github.com/octobees/nearby-assistant/internal/service"
	"github.com/octobees/nearby-assistant/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Must(false).Fatal("failed to load config", zap.Error(err))
	}

	log, err := logger.New(cfg.LogDebug || cfg.IsDevelopment())
	if err != nil {
		log = zap.NewNop()
	}
	defer func() { _ = log.Sync() }()

	tool, err := search.NewClient(nil, cfg.Search.URL, cfg.Search.Method, cfg.Search.Timeout)
	if err != nil {
		log.Fatal("failed to configure search client", zap.Error(err))
	}

	gemini := agent.NewGeminiAgent(agent.GeminiConfig{
		APIKey:      cfg.Model.APIKey,
		Model:       cfg.Model.Name,
		BaseURL:     cfg.Model.BaseURL,
		Temperature: cfg.Model.Temperature,
		TopP:        cfg.Model.TopP,
		Timeout:     cfg.Model.Timeout,
		PhoneRegion: cfg.Search.PhoneRegion,
	}, agent.WithLogger(log.Named("agent")))

	if cfg.Model.APIKey == "" {
		log.Warn("GOOGLE_API_KEY is not set; chat requests will fail until it is configured")
	}

	chatOpts := []service.ChatOption{service.WithLogger(log.Named("chat"))}
	var (
		handlers   router.Handlers
		jwtManager *auth.JWTManager
	)

	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			cancel()
			log.Fatal("failed to connect database", zap.Error(err))
		}
		if err := database.EnsureSchema(ctx, pool); err != nil {
			cancel()
			pool.Close()
			log.Fatal("failed to apply schema", zap.Error(err))
		}
		cancel()
		defer pool.Close()

		exchangesRepo := repository.NewPGXExchangesRepository(pool)
		chatOpts = append(chatOpts, service.WithRecorder(exchangesRepo))
		handlers.Exchanges = handler.NewExchangesHandler(exchangesRepo)
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
		log.Info("exchange audit log enabled")
	}

	chatService := service.NewChatService(gemini, tool, cfg.Model.APIKey != "", chatOpts...)
	handlers.Chat = handler.NewChatHandler(chatService)

	static, err := web.Static()
	if err != nil {
		log.Fatal("failed to load static assets", zap.Error(err))
	}
	handlers.Static = static

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(log.Named("http")))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.BodyLimit("1M"))
	if cfg.IsDevelopment() {
		e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{echo.HeaderContentType, echo.HeaderAuthorization, middlewarepkg.RequestIDHeader, middlewarepkg.ClientIDHeader},
			ExposeHeaders: []string{middlewarepkg.RequestIDHeader},
		}))
	}

	router.Register(e, cfg, jwtManager, handlers)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
