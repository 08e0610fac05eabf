package handlers

import (
	"context"
	"io"
	"log/slog"
	"testing"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"

	"github.com/lingvohub/lingvobot/internal/config"
)

func testDeps(operatorID int64) HandlerDeps {
	return HandlerDeps{
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:        &config.Config{Support: config.SupportConfig{OperatorID: operatorID}},
		SessionLocale: "en",
	}
}

func messageUpdate(fromID int64) *models.Update {
	return &models.Update{
		Message: &models.Message{
			From: &models.User{ID: fromID},
			Chat: models.Chat{ID: fromID},
			Text: "/reset 42",
		},
	}
}

func TestOperatorOnlyPassesOperator(t *testing.T) {
	t.Parallel()

	called := false
	next := func(_ context.Context, _ *tgbot.Bot, _ *models.Update) { called = true }

	mw := OperatorOnly(testDeps(100))
	mw(next)(context.Background(), nil, messageUpdate(100))

	assert.True(t, called)
}

func TestOperatorOnlyDropsOthers(t *testing.T) {
	t.Parallel()

	called := false
	next := func(_ context.Context, _ *tgbot.Bot, _ *models.Update) { called = true }

	mw := OperatorOnly(testDeps(100))
	mw(next)(context.Background(), nil, messageUpdate(200))

	assert.False(t, called, "non-operator messages must be dropped silently")
}

func TestRegisterAllCommands(t *testing.T) {
	t.Parallel()

	handlers := RegisterAllCommands(testDeps(100))

	for _, cmd := range []string{"/start", "/support", "/paysupport", "/reset"} {
		assert.Contains(t, handlers, cmd)
		assert.NotNil(t, handlers[cmd].Handler, "command %s must have a handler", cmd)
	}

	assert.NotEmpty(t, handlers["/reset"].Middleware, "/reset is operator-only")
	assert.Empty(t, handlers["/start"].Middleware)
}
