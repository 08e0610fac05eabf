package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewResetHandler returns a handler for the operator-only /reset command,
// which zeroes a user's free-message counter: "/reset <user-id>".
func NewResetHandler(deps HandlerDeps) bot.HandlerFunc {
	return resetHandler{deps}.Handle
}

type resetHandler struct {
	deps HandlerDeps
}

func (h resetHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "reset")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	fields := strings.Fields(update.Message.Text)
	if len(fields) != 2 {
		h.reply(ctx, b, chatID, "Usage: /reset <user-id>")
		return
	}

	userID, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || userID <= 0 {
		h.reply(ctx, b, chatID, fmt.Sprintf("Invalid user id %q", fields[1]))
		return
	}

	if err := h.deps.Store.ResetMessageCount(ctx, userID); err != nil {
		log.ErrorContext(ctx, "Failed to reset message count", "error", err, "user_id", userID)
		h.reply(ctx, b, chatID, fmt.Sprintf("Reset failed for %d", userID))
		return
	}

	log.InfoContext(ctx, "Message count reset by operator", "user_id", userID)
	h.reply(ctx, b, chatID, fmt.Sprintf("Counter reset for %d", userID))
}

func (h resetHandler) reply(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send reset reply", "error", err, "chat_id", chatID)
	}
}
