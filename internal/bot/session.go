// Package bot implements per-market chat sessions, their supervisor, and the
// background maintenance scheduler.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"

	"github.com/lingvohub/lingvobot/internal/bot/handlers"
	"github.com/lingvohub/lingvobot/internal/logger"
)

// Session is one running chat front-end: a bot credential bound to a market
// locale, with its own handler set. All sessions share the store, the model
// client, and the support router.
type Session struct {
	locale string
	tg     *tgbot.Bot
	logger *slog.Logger
}

// NewSession creates a session for the given credential and locale and
// registers its handlers. The session is not yet polling; call Run.
func NewSession(token string, deps handlers.HandlerDeps) (*Session, error) {
	if token == "" {
		return nil, fmt.Errorf("session token cannot be empty")
	}

	log := deps.Logger.With("component", "session", "session_locale", deps.SessionLocale)

	opts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(deps.Logger, deps.SessionLocale)),
		tgbot.WithDefaultHandler(handlers.NewChatHandler(deps)),
	}

	tg, err := tgbot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot for locale %q: %w", deps.SessionLocale, err)
	}

	if err := registerHandlers(tg, log, handlers.RegisterAllCommands(deps)); err != nil {
		return nil, fmt.Errorf("failed to register handlers for locale %q: %w", deps.SessionLocale, err)
	}

	// The router delivers operator replies to this market through us.
	deps.Router.Register(deps.SessionLocale, func(ctx context.Context, userID int64, text string) error {
		_, err := tg.SendMessage(ctx, &tgbot.SendMessageParams{ChatID: userID, Text: text})
		return err
	})

	log.Info("Session created")
	return &Session{locale: deps.SessionLocale, tg: tg, logger: log}, nil
}

// Locale returns the market this session serves.
func (s *Session) Locale() string {
	return s.locale
}

// Run starts the session's update polling loop and blocks until the context
// is cancelled. A listener that stops on its own is reported as an error.
func (s *Session) Run(ctx context.Context) error {
	me, err := s.tg.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info for locale %q: %w", s.locale, err)
	}
	s.logger.Info("Session listener starting", "bot_id", me.ID, "bot_username", me.Username)

	s.tg.Start(ctx)
	s.logger.Info("Session listener stopped")

	if ctx.Err() == nil {
		return fmt.Errorf("session %q listener stopped unexpectedly", s.locale)
	}
	return nil
}

// applyMiddleware wraps a handler with middleware, first entry outermost.
func applyMiddleware(handler tgbot.HandlerFunc, mw []tgbot.Middleware) tgbot.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

func registerHandlers(b *tgbot.Bot, log *slog.Logger, registered map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return fmt.Errorf("bot instance cannot be nil")
	}

	for name, rh := range registered {
		if rh.Handler == nil {
			log.Warn("Skipping registration for nil handler", "pattern", rh.Pattern)
			continue
		}

		final := applyMiddleware(rh.Handler, rh.Middleware)
		b.RegisterHandler(rh.HandlerType, rh.Pattern, rh.MatchType, final)
		log.Debug("Registered handler", "command", name, "middleware_count", len(rh.Middleware))
	}

	log.Info("Registered session handlers", "count", len(registered))
	return nil
}
