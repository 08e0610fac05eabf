package handlers

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/lingvohub/lingvobot/internal/database"
	"github.com/lingvohub/lingvobot/internal/locale"
	"github.com/lingvohub/lingvobot/internal/quota"
	"github.com/lingvohub/lingvobot/internal/support"
)

const sendMessageTimeout = 10 * time.Second

// NewChatHandler returns the session's default handler. Everything that is
// not a registered command lands here: pre-checkout queries, payment
// notifications, operator replies, escalation submissions, and ordinary chat
// messages, checked in that order.
func NewChatHandler(deps HandlerDeps) bot.HandlerFunc {
	return chatHandler{deps}.Handle
}

type chatHandler struct {
	deps HandlerDeps
}

func (h chatHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "chat")

	if update.PreCheckoutQuery != nil {
		h.handlePreCheckout(ctx, b, update.PreCheckoutQuery)
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.DebugContext(ctx, "Ignoring update with nil message or sender", "update_id", update.ID)
		return
	}

	if msg.SuccessfulPayment != nil {
		h.handleSuccessfulPayment(ctx, b, msg)
		return
	}

	if msg.Text == "" {
		log.DebugContext(ctx, "Ignoring non-text message", "user_id", msg.From.ID)
		return
	}

	if msg.From.ID == h.deps.Config.Support.OperatorID {
		if userID, text, ok := support.ParseOperatorReply(msg.Text); ok {
			h.handleOperatorReply(ctx, b, msg.Chat.ID, userID, text)
			return
		}
	}

	if h.handleEscalationSubmit(ctx, b, msg) {
		return
	}

	h.handleChatMessage(ctx, b, msg)
}

func (h chatHandler) handlePreCheckout(ctx context.Context, b *bot.Bot, query *models.PreCheckoutQuery) {
	log := h.deps.Logger.With("handler", "chat")

	ok := h.deps.Payment.ValidateCheckout(ctx, query.From.ID, query.InvoicePayload)
	_, err := b.AnswerPreCheckoutQuery(ctx, &bot.AnswerPreCheckoutQueryParams{
		PreCheckoutQueryID: query.ID,
		OK:                 ok,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to answer pre-checkout query", "error", err, "query_id", query.ID)
	}
}

func (h chatHandler) handleSuccessfulPayment(ctx context.Context, b *bot.Bot, msg *models.Message) {
	log := h.deps.Logger.With("handler", "chat")
	pay := msg.SuccessfulPayment

	applied, err := h.deps.Payment.Confirm(ctx, msg.From.ID, msg.From.Username,
		int64(pay.TotalAmount), pay.Currency, pay.TelegramPaymentChargeID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to confirm payment", "error", err, "user_id", msg.From.ID)
		return
	}
	if !applied {
		// Replayed notification; the user was already thanked once.
		return
	}

	cat := locale.Catalog(h.deps.SessionLocale)
	h.send(ctx, b, msg.Chat.ID, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: cat.PaymentThanks})
}

func (h chatHandler) handleOperatorReply(ctx context.Context, b *bot.Bot, operatorChatID, userID int64, text string) {
	log := h.deps.Logger.With("handler", "chat")

	if err := h.deps.Router.Deliver(ctx, userID, text); err != nil {
		log.ErrorContext(ctx, "Failed to deliver operator reply", "error", err, "target_user_id", userID)
		h.send(ctx, b, operatorChatID, &bot.SendMessageParams{
			ChatID: operatorChatID,
			Text:   "Delivery failed: " + err.Error(),
		})
		return
	}

	h.send(ctx, b, operatorChatID, &bot.SendMessageParams{ChatID: operatorChatID, Text: "Delivered."})
}

// handleEscalationSubmit consumes the message when the user is in an issue
// collection state. Returns false when the message belongs to the chat flow.
func (h chatHandler) handleEscalationSubmit(ctx context.Context, b *bot.Bot, msg *models.Message) bool {
	log := h.deps.Logger.With("handler", "chat")
	userID := msg.From.ID

	category, consumed, err := h.deps.Support.Submit(ctx, userID, msg.From.Username, h.deps.SessionLocale, msg.Text)
	if err != nil {
		log.ErrorContext(ctx, "Failed to record escalation", "error", err, "user_id", userID)
		cat := locale.Catalog(h.deps.SessionLocale)
		h.send(ctx, b, msg.Chat.ID, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: cat.GenericError})
		return true
	}
	if !consumed {
		return false
	}

	// The operator reads issues in their own language; a failed translation
	// forwards the original text.
	issue := msg.Text
	if h.deps.SessionLocale != h.deps.Config.Support.OperatorLocale {
		translated, err := h.deps.GeminiClient.Translate(ctx, msg.Text, h.deps.Config.Support.OperatorLocale)
		if err != nil {
			log.WarnContext(ctx, "Issue translation failed, forwarding original", "error", err, "user_id", userID)
		} else {
			issue = translated
		}
	}

	forward := support.FormatForward(category, userID, msg.From.Username, issue)
	h.send(ctx, b, h.deps.Config.Support.OperatorID, &bot.SendMessageParams{
		ChatID: h.deps.Config.Support.OperatorID,
		Text:   forward,
	})

	cat := locale.Catalog(h.deps.SessionLocale)
	h.send(ctx, b, msg.Chat.ID, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: cat.SupportAck})
	return true
}

func (h chatHandler) handleChatMessage(ctx context.Context, b *bot.Bot, msg *models.Message) {
	log := h.deps.Logger.With("handler", "chat")
	userID := msg.From.ID
	cat := locale.Catalog(h.deps.SessionLocale)

	// The menu button is a prompt to type, not a message for the model.
	if msg.Text == cat.MenuButton {
		return
	}

	// Passive capture: the support log keeps recent context and the locale
	// used for operator reply routing, also for users about to hit the wall.
	h.deps.Support.ObserveIdle(ctx, userID, msg.From.Username, h.deps.SessionLocale, msg.Text)

	// Serialize the whole exchange per user so a burst of messages cannot
	// interleave quota checks or history writes.
	unlock := h.deps.Quota.Lock(userID)
	defer unlock()

	decision, err := h.deps.Quota.Check(ctx, userID, h.deps.SessionLocale)
	if err != nil {
		log.ErrorContext(ctx, "Quota check failed", "error", err, "user_id", userID)
		h.send(ctx, b, msg.Chat.ID, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: cat.GenericError})
		return
	}

	if decision == quota.Deny {
		h.sendPaywall(ctx, b, msg.Chat.ID, userID)
		return
	}

	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: msg.Chat.ID, Action: models.ChatActionTyping})

	history, err := h.deps.Store.GetRecentMessages(ctx, userID, h.deps.Config.Quota.HistoryWindow)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load history, continuing without it", "error", err, "user_id", userID)
		history = nil
	}

	reply, err := h.deps.GeminiClient.Complete(ctx, history, msg.Text, h.deps.SessionLocale)
	if err != nil {
		log.ErrorContext(ctx, "Completion failed", "error", err, "user_id", userID)
		h.send(ctx, b, msg.Chat.ID, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: cat.GenericError})
		return
	}

	h.send(ctx, b, msg.Chat.ID, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: reply})

	// The exchange is persisted only after a successful model turn so a
	// failed request never pollutes the history window.
	now := time.Unix(int64(msg.Date), 0)
	h.saveExchange(ctx, userID, msg.Text, reply, now)
}

func (h chatHandler) sendPaywall(ctx context.Context, b *bot.Bot, chatID, userID int64) {
	cat := locale.Catalog(h.deps.SessionLocale)
	h.send(ctx, b, chatID, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   cat.LimitReached,
		ReplyMarkup: &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{{
				{Text: cat.BuyButton, URL: h.deps.Payment.PurchaseURL(userID)},
			}},
		},
	})
}

func (h chatHandler) saveExchange(ctx context.Context, userID int64, userText, reply string, at time.Time) {
	log := h.deps.Logger.With("handler", "chat")

	err := h.deps.Store.SaveMessage(ctx, &database.Message{
		UserID:    userID,
		Content:   userText,
		Origin:    database.OriginUser,
		Timestamp: at,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to save user message", "error", err, "user_id", userID)
	}

	err = h.deps.Store.SaveMessage(ctx, &database.Message{
		UserID:    userID,
		Content:   reply,
		Origin:    database.OriginAssistant,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to save assistant message", "error", err, "user_id", userID)
	}
}

func (h chatHandler) send(ctx context.Context, b *bot.Bot, chatID int64, params *bot.SendMessageParams) {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	if _, err := b.SendMessage(sendCtx, params); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
}
