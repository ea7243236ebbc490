package scheduler

import (
	"context"
	"fmt"

	"github.com/cinestelar/cinarr/internal/config"
	"github.com/cinestelar/cinarr/internal/controllers"
	"github.com/cinestelar/cinarr/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron      *cron.Cron
	engine    *controllers.ScanEngine
	db        *models.Database
	schedule  string
	threshold int
	scanLimit int
	logger    *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(engine *controllers.ScanEngine, db *models.Database, cfg *config.Config, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		engine:    engine,
		db:        db,
		schedule:  cfg.BulkScanSchedule,
		threshold: cfg.BulkEmptyThreshold,
		scanLimit: cfg.BulkScanLimit,
		logger:    logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runBulkScan()
	})
	if err != nil {
		return fmt.Errorf("failed to add bulk scan job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runBulkScan executes an unattended catch-up scan from the checkpoint.
// The bulk threshold is higher than the interactive one so a quiet
// stretch of deleted messages does not end the run early.
func (s *Scheduler) runBulkScan() {
	s.logger.Info("Running scheduled bulk scan")
	ctx := context.Background()

	result := s.engine.Run(ctx, controllers.ScanOptions{
		Kind:           models.ScanKindMovie,
		EmptyThreshold: s.threshold,
		MaxMessages:    s.scanLimit,
	})

	s.logger.WithFields(logrus.Fields{
		"indexed": result.Indexed,
		"skipped": result.Skipped,
		"errors":  result.Errors,
	}).Info("Bulk scan job completed")
}
