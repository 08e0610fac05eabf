package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/lingvohub/lingvobot/internal/locale"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	log.InfoContext(ctx, "Handling /start command", "user_id", userID, "session_locale", h.deps.SessionLocale)

	if err := h.deps.Store.UpsertUser(ctx, userID, h.deps.SessionLocale); err != nil {
		log.ErrorContext(ctx, "Failed to upsert user on /start", "error", err, "user_id", userID)
	}

	cat := locale.Catalog(h.deps.SessionLocale)
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   cat.Welcome,
		ReplyMarkup: &models.ReplyKeyboardMarkup{
			Keyboard:       [][]models.KeyboardButton{{{Text: cat.MenuButton}}},
			ResizeKeyboard: true,
		},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send welcome message", "error", err, "chat_id", update.Message.Chat.ID)
	}
}
