package support_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingvohub/lingvobot/internal/database"
	"github.com/lingvohub/lingvobot/internal/support"
)

func newTestMachine(t *testing.T) (*support.Machine, database.Store) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "support.db")
	db, err := database.NewDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	store := database.NewStore(db, nil)
	return support.NewMachine(store, nil), store
}

func TestSubmitFromIdleIsNotConsumed(t *testing.T) {
	t.Parallel()

	machine, _ := newTestMachine(t)

	_, consumed, err := machine.Submit(context.Background(), 1, "alice", "en", "hello")
	require.NoError(t, err)
	assert.False(t, consumed, "Idle users' text belongs to the chat flow")
}

func TestPaymentIssueFlow(t *testing.T) {
	t.Parallel()

	machine, store := newTestMachine(t)
	ctx := context.Background()

	machine.BeginPaymentIssue(5)
	assert.Equal(t, support.AwaitingPaymentIssue, machine.StateOf(5))

	category, consumed, err := machine.Submit(ctx, 5, "bob", "tr", "card declined")
	require.NoError(t, err)
	assert.True(t, consumed)
	assert.Equal(t, support.CategoryPayment, category)
	assert.Equal(t, support.Idle, machine.StateOf(5), "submission returns the user to Idle")

	loc, err := store.LastSupportLocale(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "tr", loc)
}

func TestSupportIssueFlow(t *testing.T) {
	t.Parallel()

	machine, _ := newTestMachine(t)

	machine.BeginSupportIssue(6)
	category, consumed, err := machine.Submit(context.Background(), 6, "", "vi", "how do I reset?")
	require.NoError(t, err)
	assert.True(t, consumed)
	assert.Equal(t, support.CategorySupport, category)
}

func TestNewestCommandWins(t *testing.T) {
	t.Parallel()

	machine, _ := newTestMachine(t)

	machine.BeginPaymentIssue(7)
	machine.BeginSupportIssue(7)
	assert.Equal(t, support.AwaitingSupportIssue, machine.StateOf(7))

	category, consumed, err := machine.Submit(context.Background(), 7, "", "en", "question")
	require.NoError(t, err)
	assert.True(t, consumed)
	assert.Equal(t, support.CategorySupport, category)
}

func TestObserveIdleFeedsLocaleLookup(t *testing.T) {
	t.Parallel()

	machine, store := newTestMachine(t)
	ctx := context.Background()

	machine.ObserveIdle(ctx, 8, "carol", "ar", "just chatting")

	loc, err := store.LastSupportLocale(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, "ar", loc)
}

func TestFormatForward(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pay from 5 (@bob): card declined",
		support.FormatForward(support.CategoryPayment, 5, "bob", "card declined"))
	assert.Equal(t, "support from 6: no username here",
		support.FormatForward(support.CategorySupport, 6, "", " no username here "))
}
