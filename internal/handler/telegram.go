// internal/handler/telegram.go
package handler

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SecretTokenHeader carries the secret_token registered with setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

type MessageDispatcher interface {
	Handle(ctx context.Context, chatID int64, raw string) string
}

type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramHandler receives webhook updates. Only requests that echo the
// configured secret reach the dispatcher.
type TelegramHandler struct {
	dispatcher MessageDispatcher
	sender     MessageSender
	secret     []byte
}

func NewTelegramHandler(dispatcher MessageDispatcher, sender MessageSender, secret string) *TelegramHandler {
	return &TelegramHandler{dispatcher: dispatcher, sender: sender, secret: []byte(secret)}
}

func (h *TelegramHandler) authorized(c *gin.Context) bool {
	got := c.GetHeader(SecretTokenHeader)
	if len(h.secret) == 0 || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), h.secret) == 1
}

func (h *TelegramHandler) Webhook(c *gin.Context) {
	if !h.authorized(c) {
		slog.Warn("Telegram update rejected", "remote_addr", c.ClientIP(), "request_id", c.GetString("request_id"))
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		slog.Error("Failed to parse update", "error", err)
		c.Status(http.StatusBadRequest)
		return
	}
	if update.Message != nil {
		chatID := update.Message.Chat.ID
		reply := h.dispatcher.Handle(c.Request.Context(), chatID, update.Message.Text)
		if _, err := h.sender.Send(tgbotapi.NewMessage(chatID, reply)); err != nil {
			slog.Error("Failed to send reply", "error", err, "chat_id", chatID)
		}
	}
	c.Status(http.StatusOK)
}
