package database_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingvohub/lingvobot/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.NewDB(dbPath)
	require.NoError(t, err, "opening test database should succeed")
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, nil)
}

func TestGetUserAbsent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.GetUser(ctx, 12345)
	require.NoError(t, err)
	assert.Nil(t, user, "absent user should return nil without error")
}

func TestUpsertUserPreservesLocale(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertUser(ctx, 1, "tr"))

	// An empty hint must not wipe the stored locale.
	require.NoError(t, store.UpsertUser(ctx, 1, ""))

	user, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "tr", user.Locale)

	// A non-empty hint updates it.
	require.NoError(t, store.UpsertUser(ctx, 1, "pt"))
	user, err = store.GetUser(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "pt", user.Locale)
}

func TestIncrementMessageCountConcurrent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	const workers = 20

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			_, err := store.IncrementMessageCount(ctx, 42, "en")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	user, err := store.GetUser(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, int64(workers), user.MessageCount, "no increment may be lost under concurrency")
}

func TestIncrementMessageCountCreatesUser(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	count, err := store.IncrementMessageCount(ctx, 7, "vi")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	user, err := store.GetUser(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "vi", user.Locale)
}

func TestResetMessageCount(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	for range 5 {
		_, err := store.IncrementMessageCount(ctx, 9, "en")
		require.NoError(t, err)
	}

	require.NoError(t, store.ResetMessageCount(ctx, 9))

	user, err := store.GetUser(ctx, 9)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Zero(t, user.MessageCount)
}

func TestSetPaidAndPremium(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	// Both calls upsert, so they work for a user never seen before.
	require.NoError(t, store.SetPaid(ctx, 55, true))
	require.NoError(t, store.SetPremium(ctx, 55))

	user, err := store.GetUser(ctx, 55)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.IsPaid)
	assert.True(t, user.IsPremium)

	require.NoError(t, store.SetPaid(ctx, 55, false))
	user, err = store.GetUser(ctx, 55)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.False(t, user.IsPaid)
	assert.True(t, user.IsPremium, "premium flag is never cleared by SetPaid")
}

func TestGetRecentMessagesWindow(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	origins := []string{database.OriginUser, database.OriginAssistant}
	for i := range 20 {
		msg := &database.Message{
			UserID:    3,
			Content:   string(rune('a' + i)),
			Origin:    origins[i%2],
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, store.SaveMessage(ctx, msg))
	}

	got, err := store.GetRecentMessages(ctx, 3, 10)
	require.NoError(t, err)
	require.Len(t, got, 10)

	// Only the 10 most recent survive, oldest first.
	for i, msg := range got {
		assert.Equal(t, string(rune('a'+10+i)), msg.Content)
	}
}

func TestSaveMessageValidation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		msg  *database.Message
	}{
		{"nil message", nil},
		{"zero user id", &database.Message{Content: "hi", Origin: database.OriginUser}},
		{"empty content", &database.Message{UserID: 1, Origin: database.OriginUser}},
		{"bad origin", &database.Message{UserID: 1, Content: "hi", Origin: "system"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, store.SaveMessage(ctx, tc.msg))
		})
	}
}

func TestSavePaymentIdempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	payment := &database.Payment{
		UserID:        11,
		Username:      "alice",
		Amount:        499,
		Currency:      "XTR",
		TransactionID: "txn-001",
	}

	applied, err := store.SavePayment(ctx, payment)
	require.NoError(t, err)
	assert.True(t, applied, "first confirmation must apply")

	replay := &database.Payment{
		UserID:        11,
		Username:      "alice",
		Amount:        499,
		Currency:      "XTR",
		TransactionID: "txn-001",
	}
	applied, err = store.SavePayment(ctx, replay)
	require.NoError(t, err)
	assert.False(t, applied, "replayed transaction id must be a no-op")
}

func TestLastSupportLocale(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	loc, err := store.LastSupportLocale(ctx, 77)
	require.NoError(t, err)
	assert.Empty(t, loc, "user without support history has no locale")

	require.NoError(t, store.SaveSupportEntry(ctx, &database.SupportEntry{
		UserID: 77, Username: "bob", Locale: "ar", Content: "first",
	}))
	require.NoError(t, store.SaveSupportEntry(ctx, &database.SupportEntry{
		UserID: 77, Username: "bob", Locale: "tr", Content: "second",
	}))

	loc, err = store.LastSupportLocale(ctx, 77)
	require.NoError(t, err)
	assert.Equal(t, "tr", loc, "most recent entry wins")
}

func TestPruneSupportLog(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSupportEntry(ctx, &database.SupportEntry{
		UserID: 5, Locale: "en", Content: "old enough to prune",
	}))

	deleted, err := store.PruneSupportLog(ctx, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	loc, err := store.LastSupportLocale(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, loc)
}
