package handlers

import (
	"log/slog"

	"github.com/lingvohub/lingvobot/internal/config"
	"github.com/lingvohub/lingvobot/internal/database"
	"github.com/lingvohub/lingvobot/internal/gemini"
	"github.com/lingvohub/lingvobot/internal/payment"
	"github.com/lingvohub/lingvobot/internal/quota"
	"github.com/lingvohub/lingvobot/internal/support"
)

// HandlerDeps provides dependencies for the handlers of one chat session.
// SessionLocale is the market the session serves; it decides the catalog
// strings and the language the model answers in.
type HandlerDeps struct {
	Logger        *slog.Logger
	Config        *config.Config
	Store         database.Store
	GeminiClient  gemini.Client
	Quota         *quota.Engine
	Payment       *payment.Service
	Support       *support.Machine
	Router        *support.Router
	SessionLocale string
}
