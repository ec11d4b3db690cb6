package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/addonkit/addonkit/storage"
)

// Janitor periodically reclaims expired rows from the SQLite store shared
// by all caches of a plugin.
type Janitor struct {
	scheduler gocron.Scheduler
}

// StartJanitor schedules expiry sweeps on the store every interval. A
// non-positive interval defaults to one hour.
func StartJanitor(store *storage.SQLiteStore, interval time.Duration) (*Janitor, error) {
	if interval <= 0 {
		interval = time.Hour
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("cache: create scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			n, err := store.DeleteExpired(ctx)
			if err != nil {
				slog.Error("Cache sweep failed", "error", err)
				return
			}
			if n > 0 {
				slog.Debug("Cache sweep reclaimed entries", "count", n)
			}
		}),
		gocron.WithName("cache-janitor"),
	)
	if err != nil {
		return nil, fmt.Errorf("cache: schedule sweep: %w", err)
	}
	s.Start()
	return &Janitor{scheduler: s}, nil
}

// Stop shuts the janitor down, waiting for a running sweep.
func (j *Janitor) Stop() error {
	return j.scheduler.Shutdown()
}
