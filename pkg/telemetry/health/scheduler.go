package health

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the checker on a cron schedule.
type Scheduler struct {
	checker  *Checker
	schedule string
	onResult func(HealthStatus)
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a scheduler running checker on schedule, which is a
// standard cron expression or a descriptor such as "@every 30s". onResult,
// when non-nil, is called after every round.
func NewScheduler(checker *Checker, schedule string, onResult func(HealthStatus)) (*Scheduler, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid health schedule %q: %w", schedule, err)
	}

	return &Scheduler{
		checker:  checker,
		schedule: schedule,
		onResult: onResult,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "health.scheduler"),
	}, nil
}

// Start runs the checks once, then on every tick of the schedule until ctx
// is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunNow(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule health checks: %w", err)
	}

	s.RunNow(ctx)

	s.cron.Start()
	s.running = true

	s.logger.Info("health scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunNow runs one round of checks.
func (s *Scheduler) RunNow(ctx context.Context) HealthStatus {
	status := s.checker.Check(ctx)

	if status.Healthy {
		s.logger.Debug("health check passed")
	} else {
		s.logger.Warn("health check failed", "error", status.Error())
	}

	if s.onResult != nil {
		s.onResult(status)
	}
	return status
}

// Stop stops the scheduler and waits for a running round to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("health scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled check time.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
