package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Supervisor runs all configured sessions plus the maintenance scheduler.
// A failing session is logged and taken out of rotation without disturbing
// its siblings; the process exits only on context cancellation or a
// scheduler failure.
type Supervisor struct {
	logger    *slog.Logger
	sessions  []*Session
	scheduler *Scheduler
}

// NewSupervisor creates a supervisor over the given sessions and scheduler.
func NewSupervisor(logger *slog.Logger, sessions []*Session, scheduler *Scheduler) *Supervisor {
	return &Supervisor{
		logger:    logger.With("component", "supervisor"),
		sessions:  sessions,
		scheduler: scheduler,
	}
}

// Run starts every session and the scheduler, then blocks until the context
// is cancelled or a component fails.
func (s *Supervisor) Run(ctx context.Context) error {
	if len(s.sessions) == 0 {
		return fmt.Errorf("no sessions to run")
	}

	s.logger.Info("Starting supervisor", "sessions", len(s.sessions))

	g, gCtx := errgroup.WithContext(ctx)

	for _, session := range s.sessions {
		g.Go(func() error {
			if err := session.Run(gCtx); err != nil {
				// One dead market must not take down the others.
				s.logger.Error("Session terminated", "locale", session.Locale(), "error", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		if err := s.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		s.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := s.scheduler.Stop(); err != nil {
			s.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	s.logger.Info("Supervisor running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("Supervisor stopped due to error", "error", err)
		return err
	}

	s.logger.Info("Supervisor stopped gracefully.")
	return nil
}
