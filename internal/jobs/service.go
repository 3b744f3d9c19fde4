package jobs

import (
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"VereinsKasse/internal/config"
	"VereinsKasse/internal/serviceiface"
)

type JobsService struct {
	config map[string]interface{}
	db     *pgxpool.Pool
}

func NewJobsService(cfg map[string]interface{}, db *pgxpool.Pool) serviceiface.Service {
	return &JobsService{
		config: cfg,
		db:     db,
	}
}

func (s *JobsService) Name() string {
	return "jobs"
}

func (s *JobsService) Start() error {
	log.Println("Starting jobs service...")

	scanConfig := NewDefaultReminderScanConfig()

	// Override scan config from services.yaml if provided
	if s.config != nil {
		if schedule, ok := s.config["reminder_schedule"].(string); ok && schedule != "" {
			scanConfig.Schedule = schedule
		}
		switch batchSize := s.config["batch_size"].(type) {
		case int:
			if batchSize > 0 {
				scanConfig.BatchSize = batchSize
			}
		case float64:
			if batchSize > 0 {
				scanConfig.BatchSize = int(batchSize)
			}
		}
		if tz, ok := s.config["timezone"].(string); ok && tz != "" {
			scanConfig.TimeZone = tz
		}
	}

	if err := RunReminderScheduler(scanConfig, s.db); err != nil {
		return fmt.Errorf("failed to start reminder scheduler: %v", err)
	}

	log.Println("Jobs service started — Reminder Scheduler scheduled")
	return nil
}

func (s *JobsService) Stop() error {
	log.Println("Jobs service stopped.")
	return nil
}

// ReminderScanConfig controls the overdue-fee scan.
type ReminderScanConfig struct {
	Schedule  string
	TimeZone  string
	BatchSize int
}

func NewDefaultReminderScanConfig() *ReminderScanConfig {
	return &ReminderScanConfig{
		Schedule:  config.DefaultReminderSchedule,
		TimeZone:  config.DefaultTimeZone,
		BatchSize: config.ReminderBatchSize,
	}
}
