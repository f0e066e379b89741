package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/nearby-assistant/internal/config"
)

// Health handles GET /health.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// FrontendConfig serves GET /config.js, the settings the static page reads once on load.
func FrontendConfig(cfg config.FrontendConfig) echo.HandlerFunc {
	settings := map[string]string{
		"API_BASE_URL": cfg.APIBaseURL,
		"CLIENT_ID":    cfg.ClientID,
	}
	encoded, err := json.Marshal(settings)
	if err != nil {
		encoded = []byte("{}")
	}
	script := fmt.Sprintf("window.APP_CONFIG = Object.freeze(%s);\n", encoded)

	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
		return c.Blob(http.StatusOK, "application/javascript; charset=utf-8", []byte(script))
	}
}
