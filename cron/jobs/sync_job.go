// Package jobs holds the cron job functions referenced by config.CronJobs.
package jobs

import (
	"context"
	"log"

	"pos.GO/service/sync"
)

// SyncJob runs one push-then-pull sync cycle on the default worker.
// Safe to fire before bootstrap finishes and while a previous cycle is
// still in flight.
func SyncJob(args ...string) {
	w := sync.Default()
	if w == nil {
		log.Println("[cron] syncjob: worker not initialized yet, skipping")
		return
	}
	res := w.RunOnce(context.Background())
	if res.Skipped {
		return
	}
	if res.Pushed > 0 || res.Pulled > 0 {
		log.Printf("[cron] syncjob: pushed=%d pulled=%d", res.Pushed, res.Pulled)
	}
}
