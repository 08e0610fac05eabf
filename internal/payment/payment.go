// Package payment implements purchase references and idempotent confirmation
// of provider payment notifications.
package payment

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/lingvohub/lingvobot/internal/database"
)

// Service handles the payment side of the paywall: building purchase links,
// approving checkouts, and applying confirmed payments exactly once.
type Service struct {
	store    database.Store
	merchant string
	logger   *slog.Logger
}

// NewService creates a payment service for the given merchant bot username.
func NewService(store database.Store, merchantUsername string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store:    store,
		merchant: merchantUsername,
		logger:   logger.With("component", "payment"),
	}
}

// PurchaseURL builds the deep link shown on the paywall button. The user id
// rides along in the start parameter so the merchant bot can attribute the
// purchase.
func (s *Service) PurchaseURL(userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=pay_%d", s.merchant, userID)
}

// ValidateCheckout decides whether a pre-checkout query may proceed. All
// checkouts are approved; validity is settled at confirmation time.
func (s *Service) ValidateCheckout(ctx context.Context, userID int64, payload string) bool {
	s.logger.InfoContext(ctx, "Pre-checkout approved", "user_id", userID, "payload", payload)
	return true
}

// Confirm applies a successful payment notification. It records the ledger
// entry and unlocks the user; a replayed transaction id returns applied=false
// and changes nothing. Users never seen before are created on the spot.
func (s *Service) Confirm(ctx context.Context, userID int64, username string, amount int64, currency, transactionID string) (bool, error) {
	if err := s.store.UpsertUser(ctx, userID, ""); err != nil {
		return false, fmt.Errorf("failed to ensure user %d before payment: %w", userID, err)
	}

	applied, err := s.store.SavePayment(ctx, &database.Payment{
		UserID:        userID,
		Username:      username,
		Amount:        amount,
		Currency:      currency,
		TransactionID: transactionID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to record payment %s: %w", transactionID, err)
	}

	if !applied {
		s.logger.WarnContext(ctx, "Replayed payment notification ignored",
			"user_id", userID, "transaction_id", transactionID)
		return false, nil
	}

	if err := s.store.SetPaid(ctx, userID, true); err != nil {
		return false, fmt.Errorf("failed to mark user %d paid: %w", userID, err)
	}
	if err := s.store.SetPremium(ctx, userID); err != nil {
		return false, fmt.Errorf("failed to mark user %d premium: %w", userID, err)
	}

	s.logger.InfoContext(ctx, "Payment confirmed",
		"user_id", userID, "transaction_id", transactionID, "amount", amount, "currency", currency)
	return true, nil
}
