package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/lingvohub/lingvobot/internal/locale"
)

// NewPaySupportHandler returns a handler for the /paysupport command, which
// opens the payment-issue escalation flow.
func NewPaySupportHandler(deps HandlerDeps) bot.HandlerFunc {
	return escalationHandler{deps: deps, payment: true}.Handle
}

// NewSupportHandler returns a handler for the /support command, which opens
// the general support escalation flow.
func NewSupportHandler(deps HandlerDeps) bot.HandlerFunc {
	return escalationHandler{deps: deps, payment: false}.Handle
}

type escalationHandler struct {
	deps    HandlerDeps
	payment bool
}

func (h escalationHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "escalation")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Escalation handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	cat := locale.Catalog(h.deps.SessionLocale)

	var prompt string
	if h.payment {
		h.deps.Support.BeginPaymentIssue(userID)
		prompt = cat.AskPayment
	} else {
		h.deps.Support.BeginSupportIssue(userID)
		prompt = cat.AskSupport
	}

	log.InfoContext(ctx, "Escalation opened", "user_id", userID, "payment", h.payment,
		"session_locale", h.deps.SessionLocale)

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   prompt,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send escalation prompt", "error", err, "chat_id", update.Message.Chat.ID)
	}
}
