// Package support implements the escalation flow between end users and the
// human operator: a per-user state machine for collecting issue reports, a
// persistent support log, and routing of operator replies back to users.
package support

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/lingvohub/lingvobot/internal/database"
)

// State is a user's position in the escalation flow.
type State int

const (
	// Idle means no escalation is in progress; free text goes to the model.
	Idle State = iota
	// AwaitingPaymentIssue means the next free-text message describes a
	// payment problem.
	AwaitingPaymentIssue
	// AwaitingSupportIssue means the next free-text message describes a
	// general support question.
	AwaitingSupportIssue
)

// Category labels a submitted issue for the operator.
type Category string

const (
	CategoryPayment Category = "pay"
	CategorySupport Category = "support"
)

// Machine tracks escalation state per user. State is deliberately in-memory
// only: a restart drops pending escalations back to Idle, which is safe
// because the user just repeats the command.
type Machine struct {
	mu     sync.RWMutex
	states map[int64]State

	store  database.Store
	logger *slog.Logger
}

// NewMachine creates an escalation state machine backed by the given store.
func NewMachine(store database.Store, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Machine{
		states: make(map[int64]State),
		store:  store,
		logger: logger.With("component", "support"),
	}
}

// StateOf returns the user's current escalation state.
func (m *Machine) StateOf(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.states[userID]
}

// BeginPaymentIssue moves the user into the payment-issue collection state.
// Entering it from any state is allowed; the newest command wins.
func (m *Machine) BeginPaymentIssue(userID int64) {
	m.setState(userID, AwaitingPaymentIssue)
}

// BeginSupportIssue moves the user into the support-issue collection state.
func (m *Machine) BeginSupportIssue(userID int64) {
	m.setState(userID, AwaitingSupportIssue)
}

func (m *Machine) setState(userID int64, s State) {
	m.mu.Lock()
	m.states[userID] = s
	m.mu.Unlock()
	m.logger.Debug("Escalation state changed", "user_id", userID, "state", s)
}

// Submit consumes the user's issue text while in a collection state, records
// it in the support log, and returns the user to Idle. Returns the category
// of the submitted issue, or false when the user was not in a collection
// state.
func (m *Machine) Submit(ctx context.Context, userID int64, username, locale, text string) (Category, bool, error) {
	m.mu.Lock()
	state := m.states[userID]
	if state != AwaitingPaymentIssue && state != AwaitingSupportIssue {
		m.mu.Unlock()
		return "", false, nil
	}
	delete(m.states, userID)
	m.mu.Unlock()

	category := CategorySupport
	if state == AwaitingPaymentIssue {
		category = CategoryPayment
	}

	err := m.store.SaveSupportEntry(ctx, &database.SupportEntry{
		UserID:   userID,
		Username: username,
		Locale:   locale,
		Content:  fmt.Sprintf("[%s] %s", category, text),
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to log %s issue for user %d: %w", category, userID, err)
	}

	m.logger.Info("Issue submitted", "user_id", userID, "category", category)
	return category, true, nil
}

// ObserveIdle records a free-text message of an Idle user in the support log
// so the operator has recent context when a later escalation arrives. Failing
// to record it never blocks the conversation.
func (m *Machine) ObserveIdle(ctx context.Context, userID int64, username, locale, text string) {
	err := m.store.SaveSupportEntry(ctx, &database.SupportEntry{
		UserID:   userID,
		Username: username,
		Locale:   locale,
		Content:  text,
	})
	if err != nil {
		m.logger.WarnContext(ctx, "Failed to record support log entry", "user_id", userID, "error", err)
	}
}

// FormatForward builds the operator-facing line for a submitted issue.
func FormatForward(category Category, userID int64, username, text string) string {
	who := fmt.Sprintf("%d", userID)
	if username != "" {
		who = fmt.Sprintf("%d (@%s)", userID, username)
	}
	return fmt.Sprintf("%s from %s: %s", category, who, strings.TrimSpace(text))
}
