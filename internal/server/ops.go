package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goodcasino/livecare/internal/notify"
	"github.com/goodcasino/livecare/internal/state"
	"github.com/goodcasino/livecare/internal/version"
)

// MessageSender delivers manual operator messages to a chat.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// OpsHandler serves health, chat-state inspection, support pings, and manual
// sends.
type OpsHandler struct {
	store  *state.Store
	pings  *notify.Service
	sender MessageSender
	logger *slog.Logger
}

// NewOpsHandler creates the ops handler. sender may be nil when the chat
// transport is not configured.
func NewOpsHandler(log *slog.Logger, store *state.Store, pings *notify.Service, sender MessageSender) *OpsHandler {
	return &OpsHandler{
		store:  store,
		pings:  pings,
		sender: sender,
		logger: log.With(slog.String("handler", "ops")),
	}
}

// Register mounts the ops routes.
func (h *OpsHandler) Register(e *echo.Echo) {
	e.GET("/api/health", h.Health)
	e.GET("/chat-state/:chatId", h.GetChatState)
	e.DELETE("/chat-state/:chatId", h.ResetChatState)
	e.GET("/support-pings", h.ListSupportPings)
	e.POST("/support-ping", h.CreateSupportPing)
	e.POST("/send-message", h.SendMessage)
}

// Health reports liveness, the active chat count, and the build version.
func (h *OpsHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "ok",
		"activeChats": h.store.Len(),
		"version":     version.GetInfo(),
	})
}

// GetChatState returns the in-memory conversation for a chat.
func (h *OpsHandler) GetChatState(c echo.Context) error {
	chatID := c.Param("chatId")
	conv, ok := h.store.Get(chatID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "chat state not found")
	}
	return c.JSON(http.StatusOK, conv)
}

// ResetChatState discards the conversation so the next message starts fresh.
func (h *OpsHandler) ResetChatState(c echo.Context) error {
	chatID := c.Param("chatId")
	h.store.Reset(chatID)
	h.logger.Info("chat state reset", slog.String("chat_id", chatID))
	return c.NoContent(http.StatusNoContent)
}

// ListSupportPings returns the recent support pings.
func (h *OpsHandler) ListSupportPings(c echo.Context) error {
	return c.JSON(http.StatusOK, h.pings.Recent())
}

// SupportPingRequest is the body for POST /support-ping.
type SupportPingRequest struct {
	Type    string `json:"type"`
	ChatID  string `json:"chatId"`
	UserID  string `json:"userId"`
	Amount  int64  `json:"amount"`
	Message string `json:"message"`
}

// CreateSupportPing records and forwards a manual support ping.
func (h *OpsHandler) CreateSupportPing(c echo.Context) error {
	var req SupportPingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Type == "" || req.ChatID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "type and chatId are required")
	}
	h.pings.SupportPing(c.Request().Context(), req.Type, req.ChatID, req.UserID, req.Amount, req.Message)
	return c.NoContent(http.StatusAccepted)
}

// SendMessageRequest is the body for POST /send-message.
type SendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

// SendMessage delivers an operator-written message to a chat.
func (h *OpsHandler) SendMessage(c echo.Context) error {
	if h.sender == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "chat transport not configured")
	}
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ChatID == "" || req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "chatId and message are required")
	}
	if err := h.sender.SendMessage(c.Request().Context(), req.ChatID, req.Message); err != nil {
		h.logger.Error("manual send failed", slog.String("chat_id", req.ChatID), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	h.logger.Info("manual message sent", slog.String("chat_id", req.ChatID))
	return c.JSON(http.StatusOK, map[string]string{"status": "sent"})
}
