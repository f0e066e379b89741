package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/nearby-assistant/internal/dto"
	middlewarepkg "github.com/octobees/nearby-assistant/internal/middleware"
	"github.com/octobees/nearby-assistant/internal/service"
)

// ChatHandler exposes the stateless chat endpoint.
type ChatHandler struct {
	service *service.ChatService
}

// NewChatHandler wires the handler.
func NewChatHandler(svc *service.ChatService) *ChatHandler {
	return &ChatHandler{service: svc}
}

// Chat handles POST /agent/chat.
func (h *ChatHandler) Chat(c echo.Context) error {
	var req dto.ChatRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	input, err := service.ValidateChatRequest(req)
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}
	input.RequestID = middlewarepkg.RequestIDFromContext(c)

	resp, err := h.service.Chat(c.Request().Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrMissingAPIKey) {
			return Error(c, http.StatusInternalServerError, err.Error())
		}
		return Error(c, http.StatusInternalServerError, "chat failed")
	}

	return c.JSON(http.StatusOK, resp)
}
