package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the persistence operations shared by all sessions and
// handlers. Every method is safe for concurrent use; atomicity of the
// message-count increment and idempotency of payment recording are enforced
// here rather than by callers.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetUser retrieves a user record. Returns nil, nil when absent.
	GetUser(ctx context.Context, userID int64) (*User, error)

	// UpsertUser creates the user record on first contact. An existing
	// record keeps its locale unless the new hint is non-empty.
	UpsertUser(ctx context.Context, userID int64, locale string) error

	// IncrementMessageCount atomically increments the user's message count,
	// creating the record with count=1 when absent, and returns the new count.
	IncrementMessageCount(ctx context.Context, userID int64, locale string) (int64, error)

	// ResetMessageCount sets the user's message count back to zero.
	ResetMessageCount(ctx context.Context, userID int64) error

	// SetPaid marks the user as paid or unpaid, creating the record if needed.
	SetPaid(ctx context.Context, userID int64, paid bool) error

	// SetPremium marks the user as premium, creating the record if needed.
	SetPremium(ctx context.Context, userID int64) error

	// SaveMessage appends one conversation entry.
	SaveMessage(ctx context.Context, message *Message) error

	// GetRecentMessages returns the most recent 'limit' entries for the user
	// in chronological order (oldest first).
	GetRecentMessages(ctx context.Context, userID int64, limit int) ([]Message, error)

	// SavePayment records a confirmed payment. Returns false without error
	// when the transaction id was already recorded.
	SavePayment(ctx context.Context, payment *Payment) (bool, error)

	// SaveSupportEntry appends one support log line.
	SaveSupportEntry(ctx context.Context, entry *SupportEntry) error

	// LastSupportLocale returns the locale of the user's most recent support
	// log entry, or "" when the user never appeared in the log.
	LastSupportLocale(ctx context.Context, userID int64) (string, error)

	// PruneSupportLog deletes support log entries created before the cutoff.
	PruneSupportLog(ctx context.Context, before time.Time) (int64, error)

	// RunSQLMaintenance performs database maintenance (VACUUM).
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore implements Store on top of sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) GetUser(ctx context.Context, userID int64) (*User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}

	var user User
	query := `SELECT user_id, locale, message_count, is_paid, is_premium, created_at, updated_at
	          FROM users WHERE user_id = ?`

	err := s.db.GetContext(ctx, &user, query, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No user record found", "user_id", userID)
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting user", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	return &user, nil
}

func (s *sqlxStore) UpsertUser(ctx context.Context, userID int64, locale string) error {
	if userID == 0 {
		return fmt.Errorf("user_id cannot be zero")
	}

	now := time.Now().UTC()
	query := `
        INSERT INTO users (user_id, locale, created_at, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            locale     = CASE WHEN excluded.locale <> '' THEN excluded.locale ELSE users.locale END,
            updated_at = excluded.updated_at;
    `

	if _, err := s.db.ExecContext(ctx, query, userID, locale, now, now); err != nil {
		s.logger.ErrorContext(ctx, "Error upserting user", "user_id", userID, "error", err)
		return fmt.Errorf("failed to upsert user %d: %w", userID, err)
	}

	s.logger.DebugContext(ctx, "User upserted", "user_id", userID, "locale", locale)
	return nil
}

// IncrementMessageCount is the single mutation path for the quota counter.
// The upsert-with-returning runs as one statement so two concurrent
// increments for the same user can never lose an update.
func (s *sqlxStore) IncrementMessageCount(ctx context.Context, userID int64, locale string) (int64, error) {
	if userID == 0 {
		return 0, fmt.Errorf("user_id cannot be zero")
	}

	now := time.Now().UTC()
	query := `
        INSERT INTO users (user_id, locale, message_count, created_at, updated_at)
        VALUES (?, ?, 1, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            message_count = users.message_count + 1,
            updated_at    = excluded.updated_at
        RETURNING message_count;
    `

	var count int64
	if err := s.db.GetContext(ctx, &count, query, userID, locale, now, now); err != nil {
		s.logger.ErrorContext(ctx, "Error incrementing message count", "user_id", userID, "error", err)
		return 0, fmt.Errorf("failed to increment message count for user %d: %w", userID, err)
	}

	s.logger.DebugContext(ctx, "Message count incremented", "user_id", userID, "count", count)
	return count, nil
}

func (s *sqlxStore) ResetMessageCount(ctx context.Context, userID int64) error {
	if userID == 0 {
		return fmt.Errorf("user_id cannot be zero")
	}

	query := `UPDATE users SET message_count = 0, updated_at = ? WHERE user_id = ?`
	if _, err := s.db.ExecContext(ctx, query, time.Now().UTC(), userID); err != nil {
		s.logger.ErrorContext(ctx, "Error resetting message count", "user_id", userID, "error", err)
		return fmt.Errorf("failed to reset message count for user %d: %w", userID, err)
	}

	s.logger.InfoContext(ctx, "Message count reset", "user_id", userID)
	return nil
}

func (s *sqlxStore) SetPaid(ctx context.Context, userID int64, paid bool) error {
	if userID == 0 {
		return fmt.Errorf("user_id cannot be zero")
	}

	now := time.Now().UTC()
	query := `
        INSERT INTO users (user_id, is_paid, created_at, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            is_paid    = excluded.is_paid,
            updated_at = excluded.updated_at;
    `

	if _, err := s.db.ExecContext(ctx, query, userID, paid, now, now); err != nil {
		s.logger.ErrorContext(ctx, "Error setting paid flag", "user_id", userID, "error", err)
		return fmt.Errorf("failed to set paid flag for user %d: %w", userID, err)
	}

	s.logger.InfoContext(ctx, "Paid flag updated", "user_id", userID, "paid", paid)
	return nil
}

func (s *sqlxStore) SetPremium(ctx context.Context, userID int64) error {
	if userID == 0 {
		return fmt.Errorf("user_id cannot be zero")
	}

	now := time.Now().UTC()
	query := `
        INSERT INTO users (user_id, is_premium, created_at, updated_at)
        VALUES (?, 1, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            is_premium = 1,
            updated_at = excluded.updated_at;
    `

	if _, err := s.db.ExecContext(ctx, query, userID, now, now); err != nil {
		s.logger.ErrorContext(ctx, "Error setting premium flag", "user_id", userID, "error", err)
		return fmt.Errorf("failed to set premium flag for user %d: %w", userID, err)
	}

	s.logger.InfoContext(ctx, "Premium flag set", "user_id", userID)
	return nil
}

func (s *sqlxStore) SaveMessage(ctx context.Context, message *Message) error {
	if message == nil {
		return fmt.Errorf("cannot save nil message")
	}
	if message.UserID == 0 {
		return fmt.Errorf("message must have a non-zero user_id")
	}
	if message.Content == "" {
		return fmt.Errorf("message must have non-empty content")
	}
	if message.Origin != OriginUser && message.Origin != OriginAssistant {
		return fmt.Errorf("message has invalid origin %q", message.Origin)
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}
	message.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO messages (user_id, content, origin, timestamp, created_at)
        VALUES (:user_id, :content, :origin, :timestamp, :created_at);
    `

	result, err := s.db.NamedExecContext(ctx, query, message)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving message", "user_id", message.UserID, "error", err)
		return fmt.Errorf("failed to save message for user %d: %w", message.UserID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		//nolint:gosec // sequence ids never approach the uint boundary
		message.ID = uint(id)
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving message",
			"user_id", message.UserID, "error", err)
	}

	s.logger.DebugContext(ctx, "Message saved", "user_id", message.UserID, "message_id", message.ID, "origin", message.Origin)
	return nil
}

func (s *sqlxStore) GetRecentMessages(ctx context.Context, userID int64, limit int) ([]Message, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}
	if limit <= 0 {
		limit = 10
		s.logger.DebugContext(ctx, "Invalid limit provided, using default", "user_id", userID, "default_limit", limit)
	}

	var messages []Message
	query := `
        SELECT id, user_id, content, origin, timestamp, created_at
        FROM messages
        WHERE user_id = ?
        ORDER BY timestamp DESC, id DESC
        LIMIT ?;
    `

	if err := s.db.SelectContext(ctx, &messages, query, userID, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error getting recent messages", "user_id", userID, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to get recent messages for user %d: %w", userID, err)
	}

	// The query returns newest first; callers want chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// SavePayment inserts a ledger row unless the transaction id was already
// recorded. The unique index on transaction_id makes replays a no-op.
func (s *sqlxStore) SavePayment(ctx context.Context, payment *Payment) (bool, error) {
	if payment == nil {
		return false, fmt.Errorf("cannot save nil payment")
	}
	if payment.TransactionID == "" {
		return false, fmt.Errorf("payment must have a transaction id")
	}
	payment.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO payments (user_id, username, amount, currency, transaction_id, created_at)
        VALUES (:user_id, :username, :amount, :currency, :transaction_id, :created_at)
        ON CONFLICT(transaction_id) DO NOTHING;
    `

	result, err := s.db.NamedExecContext(ctx, query, payment)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving payment", "user_id", payment.UserID,
			"transaction_id", payment.TransactionID, "error", err)
		return false, fmt.Errorf("failed to save payment %s: %w", payment.TransactionID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not get affected row count for payment",
			"transaction_id", payment.TransactionID, "error", err)
		return false, fmt.Errorf("failed to confirm payment insert %s: %w", payment.TransactionID, err)
	}

	if affected == 0 {
		s.logger.InfoContext(ctx, "Duplicate payment ignored", "transaction_id", payment.TransactionID)
		return false, nil
	}

	s.logger.InfoContext(ctx, "Payment recorded", "user_id", payment.UserID,
		"transaction_id", payment.TransactionID, "amount", payment.Amount, "currency", payment.Currency)
	return true, nil
}

func (s *sqlxStore) SaveSupportEntry(ctx context.Context, entry *SupportEntry) error {
	if entry == nil {
		return fmt.Errorf("cannot save nil support entry")
	}
	if entry.UserID == 0 {
		return fmt.Errorf("support entry must have a non-zero user_id")
	}
	entry.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO support_log (user_id, username, locale, content, created_at)
        VALUES (:user_id, :username, :locale, :content, :created_at);
    `

	if _, err := s.db.NamedExecContext(ctx, query, entry); err != nil {
		s.logger.ErrorContext(ctx, "Error saving support entry", "user_id", entry.UserID, "error", err)
		return fmt.Errorf("failed to save support entry for user %d: %w", entry.UserID, err)
	}

	s.logger.DebugContext(ctx, "Support entry saved", "user_id", entry.UserID, "locale", entry.Locale)
	return nil
}

func (s *sqlxStore) LastSupportLocale(ctx context.Context, userID int64) (string, error) {
	if userID == 0 {
		return "", fmt.Errorf("user_id cannot be zero")
	}

	var loc string
	query := `SELECT locale FROM support_log WHERE user_id = ? ORDER BY id DESC LIMIT 1`

	err := s.db.GetContext(ctx, &loc, query, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting last support locale", "user_id", userID, "error", err)
		return "", fmt.Errorf("failed to get last support locale for user %d: %w", userID, err)
	}

	return loc, nil
}

func (s *sqlxStore) PruneSupportLog(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM support_log WHERE created_at < ?`

	result, err := s.db.ExecContext(ctx, query, before)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error pruning support log", "error", err)
		return 0, fmt.Errorf("failed to prune support log: %w", err)
	}

	count, _ := result.RowsAffected()
	s.logger.InfoContext(ctx, "Pruned support log", "deleted", count, "cutoff", before.Format(time.RFC3339))
	return count, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed")
	return nil
}
