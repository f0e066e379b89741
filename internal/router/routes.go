package router

import (
	"io/fs"

	"github.com/labstack/echo/v4"

	"github.com/octobees/nearby-assistant/internal/auth"
	"github.com/octobees/nearby-assistant/internal/config"
	"github.com/octobees/nearby-assistant/internal/handler"
	middlewarepkg "github.com/octobees/nearby-assistant/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Chat      *handler.ChatHandler
	Exchanges *handler.ExchangesHandler
	Static    fs.FS
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/health", handler.Health)
	e.GET("/config.js", handler.FrontendConfig(cfg.Frontend))

	e.POST("/agent/chat", handlers.Chat.Chat, middlewarepkg.ClientRateLimiter(cfg.RateLimitChat))

	if handlers.Static != nil {
		e.StaticFS("/", handlers.Static)
	}

	if handlers.Exchanges != nil && jwtManager != nil {
		admin := e.Group("/admin", middlewarepkg.JWT(jwtManager), middlewarepkg.RequireRole(auth.RoleAdmin))
		admin.GET("/exchanges", handlers.Exchanges.List)
	}
}
