// Package jobs runs the background maintenance tasks.
package jobs

import (
	"time" // Lockout math

	"topup_store/internal/domain" // Importing domain models

	"github.com/robfig/cron/v3"  // Cron scheduler
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Scheduler owns the cron instance and its database handle
type Scheduler struct {
	cron *cron.Cron
	db   *gorm.DB
}

// NewScheduler creates the scheduler
func NewScheduler(db *gorm.DB) *Scheduler {
	return &Scheduler{cron: cron.New(), db: db}
}

// Start registers and launches the background jobs
func (s *Scheduler) Start() {
	// Sweep expired ad lockouts every minute so locked users unlock on time
	// even if they never poll their status
	s.cron.AddFunc("* * * * *", func() {
		if err := s.sweepAdLockouts(); err != nil {
			logrus.WithError(err).Error("[CRON] Lockout sweep failed")
		}
	})
	s.cron.Start()
	logrus.Info("Background scheduler started")
}

// Stop halts the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logrus.Info("Background scheduler stopped")
}

// sweepAdLockouts clears the daily ad counter for every user whose lockout
// window has fully elapsed
func (s *Scheduler) sweepAdLockouts() error {
	var settings domain.AppSettings
	resetHours := 24 // Default when no settings row exists
	if err := s.db.First(&settings, 1).Error; err == nil && settings.ResetHours > 0 {
		resetHours = settings.ResetHours
	}
	cutoff := time.Now().Add(-time.Duration(resetHours) * time.Hour).UnixMilli()
	res := s.db.Model(&domain.User{}).
		Where("limit_reached_at IS NOT NULL AND limit_reached_at <= ?", cutoff).
		Updates(map[string]any{"ads_count": 0, "limit_reached_at": nil})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		logrus.WithField("users", res.RowsAffected).Info("[CRON] Ad lockouts cleared")
	}
	return nil
}
