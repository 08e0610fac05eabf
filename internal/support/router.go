package support

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"sync"

	"github.com/lingvohub/lingvobot/internal/gemini"
)

// operatorReplyPattern matches the operator's reply syntax, e.g.
// "reply:123456 your refund is on the way".
var operatorReplyPattern = regexp.MustCompile(`^reply:(\d+)\s+(.+)$`)

// ParseOperatorReply extracts the target user id and reply text from an
// operator message. Returns ok=false when the message is not a reply command.
func ParseOperatorReply(text string) (int64, string, bool) {
	m := operatorReplyPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, "", false
	}
	userID, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, "", false
	}
	return userID, m[2], true
}

// Sender delivers a text message to a user within one chat session.
type Sender func(ctx context.Context, userID int64, text string) error

// Router delivers operator replies to users. It resolves the target user's
// market from the support log, translates the operator's text into that
// market's language, and hands it to the session serving the market.
type Router struct {
	mu      sync.RWMutex
	senders map[string]Sender

	store          LocaleSource
	translator     gemini.Client
	operatorLocale string
	fallbackLocale string
	logger         *slog.Logger
}

// LocaleSource is the subset of the store the router needs.
type LocaleSource interface {
	LastSupportLocale(ctx context.Context, userID int64) (string, error)
}

// NewRouter creates an operator reply router.
func NewRouter(store LocaleSource, translator gemini.Client, operatorLocale, fallbackLocale string, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Router{
		senders:        make(map[string]Sender),
		store:          store,
		translator:     translator,
		operatorLocale: operatorLocale,
		fallbackLocale: fallbackLocale,
		logger:         logger.With("component", "support_router"),
	}
}

// Register binds a locale to the sender of the session serving that market.
// Sessions register themselves on startup.
func (r *Router) Register(locale string, send Sender) {
	r.mu.Lock()
	r.senders[locale] = send
	r.mu.Unlock()
	r.logger.Debug("Session sender registered", "locale", locale)
}

// Deliver routes one operator reply to the target user. The reply is
// translated unless the target market already speaks the operator's language.
func (r *Router) Deliver(ctx context.Context, userID int64, text string) error {
	locale, err := r.store.LastSupportLocale(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve market for user %d: %w", userID, err)
	}
	if locale == "" {
		r.logger.WarnContext(ctx, "No support history for reply target, using fallback locale",
			"user_id", userID, "fallback", r.fallbackLocale)
		locale = r.fallbackLocale
	}

	r.mu.RLock()
	send, ok := r.senders[locale]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no active session for locale %q (user %d)", locale, userID)
	}

	out := text
	if locale != r.operatorLocale {
		translated, err := r.translator.Translate(ctx, text, locale)
		if err != nil {
			// A failed translation should not strand the user; deliver the
			// original text instead.
			r.logger.WarnContext(ctx, "Translation failed, delivering original text",
				"user_id", userID, "locale", locale, "error", err)
		} else {
			out = translated
		}
	}

	if err := send(ctx, userID, out); err != nil {
		return fmt.Errorf("failed to deliver operator reply to user %d: %w", userID, err)
	}

	r.logger.InfoContext(ctx, "Operator reply delivered", "user_id", userID, "locale", locale)
	return nil
}
