package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hint string
		want string
	}{
		{"exact match", "tr", "tr"},
		{"regional variant", "pt-BR", "pt"},
		{"arabic region", "ar-SA", "ar"},
		{"empty hint", "", "en"},
		{"garbage hint", "not a tag!!", "en"},
		{"unsupported language", "ja", "en"},
		{"case insensitive", "TR", "tr"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Resolve(tc.hint))
		})
	}
}

func TestSupported(t *testing.T) {
	t.Parallel()

	for _, code := range order {
		assert.True(t, Supported(code), "configured locale %q must have catalog strings", code)
	}
	assert.False(t, Supported("ja"))
}

func TestCatalogFallsBackToDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Catalog(DefaultLocale), Catalog("unknown"))
	assert.NotEmpty(t, Catalog("vi").Welcome)
}

func TestCatalogComplete(t *testing.T) {
	t.Parallel()

	for code, s := range catalog {
		assert.NotEmpty(t, s.Welcome, "locale %s missing welcome", code)
		assert.NotEmpty(t, s.LimitReached, "locale %s missing limit message", code)
		assert.NotEmpty(t, s.BuyButton, "locale %s missing buy button", code)
		assert.NotEmpty(t, s.GenericError, "locale %s missing generic error", code)
	}
}
