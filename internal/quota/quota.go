// Package quota enforces the free-usage policy: every user gets a fixed
// number of free messages, after which access requires payment.
package quota

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/lingvohub/lingvobot/internal/database"
)

// Decision is the outcome of a quota check.
type Decision int

const (
	// Deny means the user exhausted the free allowance and is not paid.
	Deny Decision = iota
	// Allow means the message may proceed to the model.
	Allow
)

// Engine applies the free-limit policy on top of the store's atomic counter.
//
// The counter increments only for admitted messages: callers must hold the
// per-user lock (see Lock) across Check and the subsequent model exchange so
// a second message from the same user cannot interleave and slip past the
// limit.
type Engine struct {
	store     database.Store
	freeLimit int64
	locks     *keyedMutex
	logger    *slog.Logger
}

// NewEngine creates a quota engine with the given free-message limit.
func NewEngine(store database.Store, freeLimit int, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		store:     store,
		freeLimit: int64(freeLimit),
		locks:     newKeyedMutex(),
		logger:    logger.With("component", "quota"),
	}
}

// Lock serializes processing for one user and returns the unlock function.
// Handlers call this before Check and release it after the reply is sent.
func (e *Engine) Lock(userID int64) func() {
	return e.locks.lock(userID)
}

// Check decides whether the user may send one more message and, when the
// decision is Allow for a free-tier user, consumes one unit of the allowance.
// Paid and premium users are always admitted and never consume quota.
func (e *Engine) Check(ctx context.Context, userID int64, locale string) (Decision, error) {
	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return Deny, fmt.Errorf("quota check failed for user %d: %w", userID, err)
	}

	if user != nil && (user.IsPaid || user.IsPremium) {
		return Allow, nil
	}

	if user != nil && user.MessageCount >= e.freeLimit {
		e.logger.InfoContext(ctx, "Free limit reached", "user_id", userID, "count", user.MessageCount)
		return Deny, nil
	}

	count, err := e.store.IncrementMessageCount(ctx, userID, locale)
	if err != nil {
		return Deny, fmt.Errorf("quota increment failed for user %d: %w", userID, err)
	}

	e.logger.DebugContext(ctx, "Free message admitted", "user_id", userID, "count", count, "limit", e.freeLimit)
	return Allow, nil
}
