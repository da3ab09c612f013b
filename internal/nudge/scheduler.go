package nudge

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SweepFunc enqueues or runs one sweep pass over active users
type SweepFunc func(ctx context.Context) error

// Scheduler drives periodic nudge sweeps and weekly report generation
// on cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler creates a stopped scheduler
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: logger,
	}
}

// AddJob registers a sweep on a cron spec (e.g. "0 * * * *"). Each run
// gets its own timeout-bounded context.
func (s *Scheduler) AddJob(spec, name string, timeout time.Duration, fn SweepFunc) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			s.logger.Error("scheduled_job_failed",
				zap.String("job", name),
				zap.Error(err),
				zap.Duration("elapsed", time.Since(start)),
			)
			return
		}
		s.logger.Info("scheduled_job_complete",
			zap.String("job", name),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
	return err
}

// Start begins running registered jobs
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
