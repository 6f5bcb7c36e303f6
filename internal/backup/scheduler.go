// Runs snapshot uploads on a cron schedule.

package backup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sarkari/portal/internal/storage"
)

// Scheduler wraps robfig/cron and uploads a snapshot on every tick.
type Scheduler struct {
	cron     *cron.Cron
	uploader *Uploader
	repo     storage.Repository
	spec     string
	now      func() time.Time
}

// NewScheduler creates a Scheduler firing on spec, e.g. "@every 24h".
func NewScheduler(uploader *Uploader, repo storage.Repository, spec string, now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{cron: cron.New(), uploader: uploader, repo: repo, spec: spec, now: now}
}

// Start registers the job, starts the scheduler and takes one snapshot right
// away in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	slog.InfoContext(ctx, "Backup scheduler started", "schedule", s.spec, "bucket", s.uploader.bucket)
	go s.run(ctx)
	return nil
}

// Stop stops the scheduler and waits for a running upload to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce takes and uploads one snapshot.
func (s *Scheduler) RunOnce(ctx context.Context) (string, error) {
	snap, err := Take(ctx, s.repo, s.now())
	if err != nil {
		return "", err
	}
	return s.uploader.Upload(ctx, snap)
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	key, err := s.RunOnce(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Backup failed", "err", err)
		return
	}
	slog.InfoContext(ctx, "Backup uploaded", "key", key, "dur", time.Since(start).Round(time.Millisecond))
}
