// File: /jobs/feed_sync_job.go
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"eventdojo-api/services"
)

// FeedSyncJob runs the feed ingestion engine on a cron schedule. Each run is
// independent; a failed run only affects the freshness of ingested listings.
type FeedSyncJob struct {
	feedService *services.FeedService
	schedule    string
	cron        *cron.Cron
	wg          sync.WaitGroup
}

func NewFeedSyncJob(db *gorm.DB, schedule string) *FeedSyncJob {
	return &FeedSyncJob{
		feedService: services.NewFeedService(db),
		schedule:    schedule,
		cron:        cron.New(),
	}
}

// Start registers the schedule and begins running syncs. The first sync runs
// immediately so a fresh deployment has listings before the first tick.
func (j *FeedSyncJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.run); err != nil {
		return fmt.Errorf("invalid feed sync schedule %q: %w", j.schedule, err)
	}

	// The immediate run is outside the cron's bookkeeping, so track it
	// ourselves for Stop.
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.run()
	}()

	j.cron.Start()
	fmt.Printf("Feed sync job started (schedule %s)\n", j.schedule)
	return nil
}

// Stop halts the schedule and waits for an in-flight run to finish, the
// immediate first run included.
func (j *FeedSyncJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.wg.Wait()
	fmt.Println("Feed sync job stopped")
}

func (j *FeedSyncJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	results := j.feedService.SyncFeeds(ctx, nil)

	failed := 0
	for _, r := range results {
		if !r.OK {
			failed++
		}
	}
	fmt.Printf("Feed sync run completed: %d feeds, %d failed\n", len(results), failed)
}
