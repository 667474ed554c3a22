package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nhfg/crm-backend/pkg/integrationlog"
)

// CronManager manages scheduled jobs
type CronManager struct {
	cron          *cron.Cron
	logs          *integrationlog.Service
	retentionDays int
	logger        *log.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(logs *integrationlog.Service, retentionDays int, logger *log.Logger) *CronManager {
	if logger == nil {
		logger = log.Default()
	}

	return &CronManager{
		cron:          cron.New(),
		logs:          logs,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	cm.logger.Println("Setting up cron jobs...")

	// Daily at 3 AM: purge integration logs past the retention window
	_, err := cm.cron.AddFunc("0 3 * * *", func() {
		cm.logger.Println("🕐 Running daily integration log purge...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		deleted, err := cm.logs.Purge(ctx, cm.retentionDays)
		if err != nil {
			cm.logger.Printf("❌ Failed to purge integration logs: %v", err)
			return
		}

		cm.logger.Printf("✅ Integration log purge completed (%d entries removed)", deleted)
	})
	if err != nil {
		return err
	}

	cm.logger.Println("✅ Cron jobs configured")
	return nil
}

// Start begins the cron scheduler
func (cm *CronManager) Start() {
	cm.cron.Start()
	cm.logger.Println("✅ Cron scheduler started")
}

// Stop halts the cron scheduler
func (cm *CronManager) Stop() {
	ctx := cm.cron.Stop()
	<-ctx.Done()
	cm.logger.Println("Cron scheduler stopped")
}
