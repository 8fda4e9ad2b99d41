package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"mercator-hq/chatrelay/pkg/calls"
)

// RecordGauge receives the stored record count after each run.
type RecordGauge interface {
	SetStoredRecords(count int64)
}

// Scheduler runs store maintenance on a cron schedule.
type Scheduler struct {
	store    calls.Storage
	schedule string
	gauge    RecordGauge
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a maintenance scheduler. gauge may be nil.
func NewScheduler(store calls.Storage, schedule string, gauge RecordGauge) *Scheduler {
	return &Scheduler{
		store:    store,
		schedule: schedule,
		gauge:    gauge,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "calls.maintenance"),
	}
}

// Start schedules the maintenance job. An empty schedule disables it.
//
// Common cron expressions:
//   - "0 * * * *"    - Hourly
//   - "*/15 * * * *" - Every 15 minutes
//   - "0 3 * * *"    - Daily at 3 AM
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("maintenance schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule maintenance: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("maintenance scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunOnce performs one maintenance cycle. Failures are logged; a failed
// checkpoint does not prevent the record count from being published.
func (s *Scheduler) RunOnce(ctx context.Context) {
	start := time.Now()

	if cp, ok := s.store.(calls.Checkpointer); ok {
		if err := cp.Checkpoint(ctx); err != nil {
			s.logger.Error("WAL checkpoint failed", "error", err)
		}
	}

	count, err := s.store.Count(ctx, nil)
	if err != nil {
		s.logger.Error("record count failed", "error", err)
		return
	}
	if s.gauge != nil {
		s.gauge.SetStoredRecords(count)
	}

	s.logger.Debug("maintenance completed",
		"stored_records", count,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Stop stops the scheduler and waits for any running job to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("maintenance scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled run time, or nil if nothing is scheduled.
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
