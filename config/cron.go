package config

import (
	"pos.GO/cron/jobs"
)

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

// CronJobs builds the job table. Resolved at call time, after LoadEnv,
// so a SYNC_INTERVAL from .env reaches the schedule.
func CronJobs() map[string]CronJob {
	return map[string]CronJob{
		"syncjob": {Schedule: "@every " + GetEnv("SYNC_INTERVAL", "30s"), Job: jobs.SyncJob},
		// Add more jobs here
	}
}
