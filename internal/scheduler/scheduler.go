// Package scheduler runs the background maintenance the board service needs:
// pruning expired sessions and compacting the KV database.
package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/localweather/cityboard/internal/session"
	"github.com/localweather/cityboard/internal/storage"
)

// Maintenance periodically prunes expired sessions and vacuums storage.
type Maintenance struct {
	scheduler *gocron.Scheduler
	sessions  *session.Manager
	kv        *storage.SQLiteKV
	interval  time.Duration
}

// New creates a Maintenance job runner. kv may be nil when storage is
// in-memory; vacuuming is skipped then.
func New(sessions *session.Manager, kv *storage.SQLiteKV, interval time.Duration) *Maintenance {
	return &Maintenance{
		scheduler: gocron.NewScheduler(time.UTC),
		sessions:  sessions,
		kv:        kv,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (m *Maintenance) Start() error {
	minutes := int(m.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := m.scheduler.Every(minutes).Minutes().Do(func() {
		pruned, err := m.sessions.PruneExpired()
		if err != nil {
			log.Printf("maintenance: session prune failed: %v", err)
		} else if pruned > 0 {
			log.Printf("maintenance: pruned %d expired sessions", pruned)
		}

		if m.kv != nil {
			if err := m.kv.Vacuum(); err != nil {
				log.Printf("maintenance: vacuum failed: %v", err)
			}
		}
	})
	if err != nil {
		return err
	}

	m.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (m *Maintenance) Stop() {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
}
