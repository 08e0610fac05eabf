package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/lingvohub/lingvobot/internal/config"
	"github.com/lingvohub/lingvobot/internal/database"
)

// TaskFunc is one scheduled maintenance task.
type TaskFunc func(ctx context.Context) error

// Scheduler runs periodic maintenance using gocron: SQLite housekeeping and
// support log retention, both on the configured cron schedule.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	cfg       *config.SchedulerConfig
	tasks     map[string]TaskFunc
	mu        sync.Mutex
	running   bool
}

// NewScheduler creates a scheduler with the standard maintenance task set.
func NewScheduler(logger *slog.Logger, cfg *config.SchedulerConfig, store database.Store) (*Scheduler, error) {
	log := logger.With("component", "scheduler")

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	retention := time.Duration(cfg.SupportLogRetention) * 24 * time.Hour

	tasks := map[string]TaskFunc{
		"sql_maintenance": func(ctx context.Context) error {
			return store.RunSQLMaintenance(ctx)
		},
		"support_log_prune": func(ctx context.Context) error {
			cutoff := time.Now().UTC().Add(-retention)
			_, err := store.PruneSupportLog(ctx, cutoff)
			return err
		},
	}

	return &Scheduler{
		scheduler: s,
		logger:    log,
		cfg:       cfg,
		tasks:     tasks,
	}, nil
}

// Start schedules the maintenance tasks and begins ticking.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	for taskName, taskFunc := range s.tasks {
		_, err := s.scheduler.NewJob(
			gocron.CronJob(s.cfg.MaintenanceSchedule, false),
			gocron.NewTask(
				func(ctx context.Context, name string, task TaskFunc) {
					s.logger.Info("Running scheduled task", "task_name", name)
					start := time.Now()
					if taskErr := task(ctx); taskErr != nil {
						s.logger.Error("Scheduled task failed", "task_name", name, "error", taskErr)
					}
					s.logger.Info("Finished scheduled task", "task_name", name, "duration", time.Since(start))
				},
				context.Background(),
				taskName,
				taskFunc,
			),
			gocron.WithName(taskName),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule task %q: %w", taskName, err)
		}

		s.logger.Info("Scheduled task", "task_name", taskName, "schedule", s.cfg.MaintenanceSchedule)
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "tasks_scheduled", len(s.tasks))

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs to complete.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.logger.Info("Scheduler is not running, nothing to stop.")
		return nil
	}

	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped gracefully.")
	}

	s.running = false
	return err
}
