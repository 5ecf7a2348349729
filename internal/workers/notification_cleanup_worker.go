package workers

import (
	"context"
	"time"

	"pharmacy_backend/internal/logger"
	"pharmacy_backend/internal/repositories"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const cleanupWorkerName = "notification_cleanup"

// NotificationCleanupWorker removes read notifications past the retention
// window. Unread notifications are never swept.
type NotificationCleanupWorker struct {
	db        *gorm.DB
	repo      repositories.NotificationRepository
	retention time.Duration
	schedule  string
	now       func() time.Time

	cron *cron.Cron
}

func NewNotificationCleanupWorker(db *gorm.DB, repo repositories.NotificationRepository, retention time.Duration, schedule string) *NotificationCleanupWorker {
	if schedule == "" {
		schedule = "@daily"
	}
	return &NotificationCleanupWorker{
		db:        db,
		repo:      repo,
		retention: retention,
		schedule:  schedule,
		now:       time.Now,
	}
}

// Start registers the sweep on the cron schedule. A zero retention disables it.
func (w *NotificationCleanupWorker) Start(ctx context.Context) error {
	if w.retention <= 0 {
		logger.Info("notification cleanup disabled", "worker", cleanupWorkerName)
		return nil
	}

	w.cron = cron.New()
	if _, err := w.cron.AddFunc(w.schedule, func() { w.RunOnce(ctx) }); err != nil {
		return err
	}
	w.cron.Start()

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	logger.Info("notification cleanup scheduled", "worker", cleanupWorkerName, "schedule", w.schedule)
	return nil
}

// Stop waits for a running sweep to finish.
func (w *NotificationCleanupWorker) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
}

// RunOnce performs a single sweep and returns the number of rows removed.
func (w *NotificationCleanupWorker) RunOnce(ctx context.Context) int64 {
	cutoff := w.now().Add(-w.retention)

	removed, err := w.repo.DeleteReadOlderThan(w.db.WithContext(ctx), cutoff)
	logger.WorkerLog(cleanupWorkerName, "delete_read_older_than", err)
	if err != nil {
		return 0
	}
	if removed > 0 {
		logger.Info("removed old read notifications", "worker", cleanupWorkerName, "count", removed)
	}
	return removed
}
