package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/nearby-assistant/internal/dto"
	"github.com/octobees/nearby-assistant/internal/repository"
)

// ExchangesHandler exposes the audit log to operators.
type ExchangesHandler struct {
	repo repository.ExchangesRepository
}

// NewExchangesHandler creates a new handler instance.
func NewExchangesHandler(repo repository.ExchangesRepository) *ExchangesHandler {
	return &ExchangesHandler{repo: repo}
}

// List handles GET /admin/exchanges.
func (h *ExchangesHandler) List(c echo.Context) error {
	filter := dto.ExchangeFilter{
		ClientID: strings.TrimSpace(c.QueryParam("client_id")),
		Limit:    parseIntDefault(c.QueryParam("limit"), 0),
	}

	items, err := h.repo.List(c.Request().Context(), filter)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list exchanges")
	}

	return Success(c, http.StatusOK, "", map[string]any{
		"items": items,
		"count": len(items),
	})
}

func parseIntDefault(value string, fallback int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
