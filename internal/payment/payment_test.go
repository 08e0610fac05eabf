package payment_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingvohub/lingvobot/internal/database"
	"github.com/lingvohub/lingvobot/internal/payment"
)

func newTestService(t *testing.T) (*payment.Service, database.Store) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "payment.db")
	db, err := database.NewDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	store := database.NewStore(db, nil)
	return payment.NewService(store, "lingvopay_bot", nil), store
}

func TestPurchaseURL(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	assert.Equal(t, "https://t.me/lingvopay_bot?start=pay_12345", svc.PurchaseURL(12345))
}

func TestConfirmUnlocksUser(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()

	applied, err := svc.Confirm(ctx, 10, "alice", 499, "XTR", "txn-abc")
	require.NoError(t, err)
	assert.True(t, applied)

	user, err := store.GetUser(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.IsPaid)
	assert.True(t, user.IsPremium)
}

func TestConfirmReplayIsNoOp(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	applied, err := svc.Confirm(ctx, 10, "alice", 499, "XTR", "txn-abc")
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = svc.Confirm(ctx, 10, "alice", 499, "XTR", "txn-abc")
	require.NoError(t, err)
	assert.False(t, applied, "same transaction id must apply at most once")
}

func TestConfirmCreatesUnknownUser(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()

	// Payment notification arrives before the user ever sent a message.
	applied, err := svc.Confirm(ctx, 999, "ghost", 100, "XTR", "txn-ghost")
	require.NoError(t, err)
	assert.True(t, applied)

	user, err := store.GetUser(ctx, 999)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.IsPaid)
}

func TestValidateCheckoutAlwaysApproves(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	assert.True(t, svc.ValidateCheckout(context.Background(), 1, "pay_1"))
}
