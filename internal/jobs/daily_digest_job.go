// Package jobs holds scheduled background tasks of the bakery backend.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"bakery/internal/models"

	"github.com/robfig/cron/v3"
)

// OrderCounter reports how many orders were placed per status since a moment.
type OrderCounter interface {
	CountByStatusSince(ctx context.Context, since time.Time) (map[models.OrderStatus]int64, error)
}

// DigestNotifier receives the aggregated counts.
type DigestNotifier interface {
	NotifyDigest(counts map[models.OrderStatus]int64, since time.Time)
}

// DailyDigestJob sends the admin chat a summary of the last day's orders.
type DailyDigestJob struct {
	orders   OrderCounter
	notifier DigestNotifier
	schedule string
	window   time.Duration
	cron     *cron.Cron
	now      func() time.Time
	logger   *slog.Logger
}

// NewDailyDigestJob creates the job. schedule is a standard five-field cron
// expression evaluated in local time.
func NewDailyDigestJob(orders OrderCounter, notifier DigestNotifier, schedule string, logger *slog.Logger) *DailyDigestJob {
	return &DailyDigestJob{
		orders:   orders,
		notifier: notifier,
		schedule: schedule,
		window:   24 * time.Hour,
		cron:     cron.New(),
		now:      time.Now,
		logger:   logger.With("component", "daily_digest_job"),
	}
}

// Start registers the digest with the scheduler. An empty schedule disables it.
func (j *DailyDigestJob) Start() error {
	if j.schedule == "" {
		j.logger.Info("daily digest disabled")
		return nil
	}

	_, err := j.cron.AddFunc(j.schedule, func() {
		if err := j.RunOnce(context.Background()); err != nil {
			j.logger.Error("daily digest failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("daily digest job started", "schedule", j.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running digest to finish.
func (j *DailyDigestJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("daily digest job stopped")
}

// RunOnce counts the orders of the last window and hands them to the notifier.
func (j *DailyDigestJob) RunOnce(ctx context.Context) error {
	since := j.now().Add(-j.window)
	counts, err := j.orders.CountByStatusSince(ctx, since)
	if err != nil {
		return err
	}

	j.notifier.NotifyDigest(counts, since)
	j.logger.Info("daily digest queued", "since", since)
	return nil
}
