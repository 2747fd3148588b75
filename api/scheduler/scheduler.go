package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RetentionSpec runs the purge daily at 3 AM UTC
const RetentionSpec = "0 3 * * *"

// Purger removes read notifications older than the given age
type Purger interface {
	PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Scheduler handles periodic background jobs
type Scheduler struct {
	cron      *cron.Cron
	Purger    Purger
	Retention time.Duration
}

// NewScheduler creates a new scheduler instance
func NewScheduler(purger Purger, retention time.Duration) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		Purger:    purger,
		Retention: retention,
	}
}

// Start begins the scheduler with all registered jobs. A non-positive
// retention keeps notifications forever and registers nothing.
func (s *Scheduler) Start() error {
	if s.Retention > 0 {
		if _, err := s.cron.AddFunc(RetentionSpec, s.PurgeNotifications); err != nil {
			zap.S().Errorw("failed to register notification retention job", "error", err)
			return err
		}
	}
	s.cron.Start()
	zap.S().Infow("scheduler started", "jobs", len(s.cron.Entries()), "retention", s.Retention)
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("scheduler stopped")
}

// PurgeNotifications deletes read notifications past the retention window
func (s *Scheduler) PurgeNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := s.Purger.PurgeRead(ctx, s.Retention)
	if err != nil {
		zap.S().Errorw("failed to purge read notifications", "error", err)
		return
	}
	zap.S().Infow("purged read notifications", "count", n, "olderThan", s.Retention)
}
