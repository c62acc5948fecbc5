// Package scheduler implements background refresh of the displayed place
package scheduler

import (
	"time"

	"weatherdesk.app/pkg/logger"
)

// Refresher is the subset of the fetch pipeline the scheduler drives.
type Refresher interface {
	LoadLastPlace()
}

// Scheduler periodically re-triggers a load of the last selected place so
// the displayed reading stays within the cache TTL. Stale-completion
// handling in the pipeline makes an overlapping user-driven load safe.
type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	log       *logger.Logger
	stopCh    chan struct{}
}

// NewScheduler creates a refresh scheduler.
func NewScheduler(refresher Refresher, interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		refresher: refresher,
		interval:  interval,
		log:       log,
		stopCh:    make(chan struct{}),
	}
}

// Start begins periodic refreshes. The first refresh fires one full
// interval after start; startup itself already loads the last place.
func (s *Scheduler) Start() {
	go s.run()
}

// Stop ends the refresh loop. Safe to call once.
func (s *Scheduler) Stop() {
	close(s.stopCh)
}

func (s *Scheduler) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.log.Info("refreshing last selected place")
			s.refresher.LoadLastPlace()
		case <-s.stopCh:
			return
		}
	}
}
