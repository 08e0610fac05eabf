package database

import "time"

// Message origins. Every conversation entry is authored by exactly one side.
const (
	OriginUser      = "user"
	OriginAssistant = "assistant"
)

// User is the persistent record for one end-user, created lazily on first
// contact and never deleted by normal flow.
type User struct {
	UserID       int64     `db:"user_id"`
	Locale       string    `db:"locale"`
	MessageCount int64     `db:"message_count"`
	IsPaid       bool      `db:"is_paid"`
	IsPremium    bool      `db:"is_premium"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Message is one entry in a user's append-only conversation log.
type Message struct {
	ID        uint      `db:"id"`
	UserID    int64     `db:"user_id"`
	Content   string    `db:"content"`
	Origin    string    `db:"origin"`
	Timestamp time.Time `db:"timestamp"`
	CreatedAt time.Time `db:"created_at"`
}

// Payment is one confirmed payment ledger entry. Rows are immutable and
// unique per provider transaction id.
type Payment struct {
	ID            uint      `db:"id"`
	UserID        int64     `db:"user_id"`
	Username      string    `db:"username"`
	Amount        int64     `db:"amount"`
	Currency      string    `db:"currency"`
	TransactionID string    `db:"transaction_id"`
	CreatedAt     time.Time `db:"created_at"`
}

// SupportEntry is one line of the append-only support log kept for operator
// visibility and locale lookup during reply routing.
type SupportEntry struct {
	ID        uint      `db:"id"`
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	Locale    string    `db:"locale"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}
