// Package main contains the entrypoint for the multi-market chat gateway.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lingvohub/lingvobot/internal/bot"
	"github.com/lingvohub/lingvobot/internal/bot/handlers"
	"github.com/lingvohub/lingvobot/internal/config"
	"github.com/lingvohub/lingvobot/internal/database"
	"github.com/lingvohub/lingvobot/internal/gemini"
	"github.com/lingvohub/lingvobot/internal/locale"
	"github.com/lingvohub/lingvobot/internal/logger"
	"github.com/lingvohub/lingvobot/internal/payment"
	"github.com/lingvohub/lingvobot/internal/quota"
	"github.com/lingvohub/lingvobot/internal/support"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all components, starts the session supervisor, and returns
// an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	// Local development keeps secrets in .env; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	gemClient, err := gemini.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize Gemini client", "error", err)
		return 1
	}

	quotaEngine := quota.NewEngine(store, cfg.Quota.FreeLimit, log)
	paymentSvc := payment.NewService(store, cfg.Payment.MerchantUsername, log)
	supportMachine := support.NewMachine(store, log)
	router := support.NewRouter(store, gemClient,
		cfg.Support.OperatorLocale, cfg.Support.FallbackLocale, log)

	var sessions []*bot.Session
	for _, sc := range cfg.Sessions {
		sessionLocale := locale.Resolve(sc.Locale)

		if sc.Token == "" {
			log.Warn("Skipping session without token", "locale", sessionLocale)
			continue
		}

		deps := handlers.HandlerDeps{
			Logger:        log,
			Config:        cfg,
			Store:         store,
			GeminiClient:  gemClient,
			Quota:         quotaEngine,
			Payment:       paymentSvc,
			Support:       supportMachine,
			Router:        router,
			SessionLocale: sessionLocale,
		}

		session, err := bot.NewSession(sc.Token, deps)
		if err != nil {
			// An invalid credential disables that market only.
			log.Error("Skipping session with invalid credential", "locale", sessionLocale, "error", err)
			continue
		}
		sessions = append(sessions, session)
	}

	if len(sessions) == 0 {
		log.Error("No runnable sessions, nothing to do")
		return 1
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, store)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	supervisor := bot.NewSupervisor(log, sessions, sched)

	log.Info("Starting gateway...", "sessions", len(sessions))
	runErr := supervisor.Run(ctx)
	log.Info("Run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Gateway stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Gateway stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
