// Package handlers contains Telegram bot command and message handlers for
// one chat session, along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// OperatorOnly creates a middleware that restricts a handler to the
// configured operator. Messages from anyone else are silently dropped so the
// operator command surface stays invisible to end users.
func OperatorOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				next(ctx, bot, update)
				return
			}

			if update.Message.From.ID != deps.Config.Support.OperatorID {
				deps.Logger.WarnContext(ctx, "Operator command from non-operator ignored",
					"user_id", update.Message.From.ID, "session_locale", deps.SessionLocale)
				return
			}

			next(ctx, bot, update)
		}
	}
}
