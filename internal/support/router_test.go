package support_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingvohub/lingvobot/internal/database"
	"github.com/lingvohub/lingvobot/internal/support"
)

func TestParseOperatorReply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantID   int64
		wantText string
		wantOK   bool
	}{
		{"valid reply", "reply:123456 your refund is processed", 123456, "your refund is processed", true},
		{"no space after id", "reply:123456", 0, "", false},
		{"not a reply", "hello there", 0, "", false},
		{"non-numeric id", "reply:abc hi", 0, "", false},
		{"id with trailing text", "reply:42 ok", 42, "ok", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			id, text, ok := support.ParseOperatorReply(tc.input)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantID, id)
			assert.Equal(t, tc.wantText, text)
		})
	}
}

type staticLocaleSource struct {
	locales map[int64]string
}

func (s *staticLocaleSource) LastSupportLocale(_ context.Context, userID int64) (string, error) {
	return s.locales[userID], nil
}

type fakeTranslator struct {
	fail bool
}

func (f *fakeTranslator) Complete(_ context.Context, _ []database.Message, _, _ string) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeTranslator) Translate(_ context.Context, text, targetLocale string) (string, error) {
	if f.fail {
		return "", errors.New("translation backend down")
	}
	return fmt.Sprintf("[%s] %s", targetLocale, text), nil
}

func TestDeliverTranslatesForForeignMarket(t *testing.T) {
	t.Parallel()

	source := &staticLocaleSource{locales: map[int64]string{10: "tr"}}
	router := support.NewRouter(source, &fakeTranslator{}, "en", "en", nil)

	var got string
	router.Register("tr", func(_ context.Context, userID int64, text string) error {
		got = fmt.Sprintf("%d:%s", userID, text)
		return nil
	})

	require.NoError(t, router.Deliver(context.Background(), 10, "your issue is fixed"))
	assert.Equal(t, "10:[tr] your issue is fixed", got)
}

func TestDeliverSkipsTranslationForOperatorLocale(t *testing.T) {
	t.Parallel()

	source := &staticLocaleSource{locales: map[int64]string{11: "en"}}
	router := support.NewRouter(source, &fakeTranslator{}, "en", "en", nil)

	var got string
	router.Register("en", func(_ context.Context, _ int64, text string) error {
		got = text
		return nil
	})

	require.NoError(t, router.Deliver(context.Background(), 11, "all good"))
	assert.Equal(t, "all good", got, "operator-locale markets get the original text")
}

func TestDeliverFallsBackWithoutHistory(t *testing.T) {
	t.Parallel()

	source := &staticLocaleSource{locales: map[int64]string{}}
	router := support.NewRouter(source, &fakeTranslator{}, "en", "en", nil)

	delivered := false
	router.Register("en", func(_ context.Context, _ int64, _ string) error {
		delivered = true
		return nil
	})

	require.NoError(t, router.Deliver(context.Background(), 404, "are you there?"))
	assert.True(t, delivered, "unknown users are reached via the fallback locale session")
}

func TestDeliverFailedTranslationSendsOriginal(t *testing.T) {
	t.Parallel()

	source := &staticLocaleSource{locales: map[int64]string{12: "pt"}}
	router := support.NewRouter(source, &fakeTranslator{fail: true}, "en", "en", nil)

	var got string
	router.Register("pt", func(_ context.Context, _ int64, text string) error {
		got = text
		return nil
	})

	require.NoError(t, router.Deliver(context.Background(), 12, "original text"))
	assert.Equal(t, "original text", got)
}

func TestDeliverNoSessionForLocale(t *testing.T) {
	t.Parallel()

	source := &staticLocaleSource{locales: map[int64]string{13: "ru"}}
	router := support.NewRouter(source, &fakeTranslator{}, "en", "en", nil)

	err := router.Deliver(context.Background(), 13, "hello")
	assert.Error(t, err, "a market without a running session cannot receive replies")
}
