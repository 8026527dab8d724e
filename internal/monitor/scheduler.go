package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the monitor on a fixed interval in watch mode.
type Scheduler struct {
	cron    *cron.Cron
	monitor *Monitor
	log     *slog.Logger
}

// NewScheduler creates a Scheduler invoking one run every interval.
func NewScheduler(m *Monitor, interval time.Duration, log *slog.Logger) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:    c,
		monitor: m,
		log:     log,
	}

	if _, err := c.AddFunc("@every "+interval.String(), s.runCheck); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled checks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for a running check to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runCheck() {
	ctx := context.Background()
	s.log.Info("scheduled check starting")

	res := s.monitor.RunOnce(ctx)
	if res.Available && !res.Delivered {
		s.log.Error("tickets detected but no alert was delivered")
	}
}
