package gemini

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rate limited", &genai.APIError{Code: 429, Message: "quota exceeded"}, ErrGatewayThrottled},
		{"server error", &genai.APIError{Code: 500, Message: "internal"}, ErrGatewayNetwork},
		{"unavailable", &genai.APIError{Code: 503, Message: "overloaded"}, ErrGatewayNetwork},
		{"bad request", &genai.APIError{Code: 400, Message: "invalid argument"}, ErrGatewayInvalidResponse},
		{"plain transport error", errors.New("dial tcp: connection refused"), ErrGatewayNetwork},
		{"wrapped api error", fmt.Errorf("call failed: %w", &genai.APIError{Code: 429}), ErrGatewayThrottled},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := classifyError(tc.err)
			assert.ErrorIs(t, got, tc.want)
			assert.ErrorIs(t, got, tc.err, "original error must stay in the chain")
		})
	}
}

func TestLanguageName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Turkish", languageName("tr"))
	assert.Equal(t, "Brazilian Portuguese", languageName("pt"))
	assert.Equal(t, "English", languageName("en"))
	assert.Equal(t, "English", languageName("xx"), "unknown locales steer to English")
}
