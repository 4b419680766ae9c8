package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/extortion-watch/extortion-report-api/databases"
)

// Scheduler handles periodic background jobs
type Scheduler struct {
	cron      *cron.Cron
	ADB       databases.EmergencyAlertDatabase
	retention time.Duration
}

// New creates a new scheduler instance
func New(aDB databases.EmergencyAlertDatabase, retention time.Duration) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		ADB:       aDB,
		retention: retention,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Purge stale emergency alerts daily at 3 AM UTC
	_, err := s.cron.AddFunc("0 3 * * *", s.purgeStaleAlerts)
	if err != nil {
		zap.S().Errorw("failed to register alert purge job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("alert retention scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("alert retention scheduler stopped")
}

// purgeStaleAlerts removes emergency alerts older than the retention
// window. Alerts are time critical; once stale they only clutter the
// dashboard.
func (s *Scheduler) purgeStaleAlerts() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.retention)
	err := s.ADB.DeleteMany(ctx, bson.M{
		"alert.createdAt": bson.M{"$lt": primitive.NewDateTimeFromTime(cutoff)},
	})
	if err != nil {
		zap.S().Errorw("failed to purge stale alerts", "error", err)
		return
	}

	zap.S().Infow("stale alerts purged", "cutoff", cutoff)
}
