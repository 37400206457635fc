package services

import (
	"context"
	"log"
	"time"
)

// CleanupScheduler periodically retries session deletions the provider
// refused earlier. Retries are unbounded: a link stays in the pending set,
// its counter growing, until the provider confirms the delete.
type CleanupScheduler struct {
	deletions *DeletionService
	interval  time.Duration
	stopChan  chan struct{}
}

func NewCleanupScheduler(deletions *DeletionService, interval time.Duration) *CleanupScheduler {
	return &CleanupScheduler{
		deletions: deletions,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

func (s *CleanupScheduler) Start() {
	go s.loop()
	log.Printf("Deletion cleanup scheduler started (every %s)", s.interval)
}

func (s *CleanupScheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *CleanupScheduler) loop() {
	// Run on startup as well as by interval.
	s.run()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.run()
		}
	}
}

func (s *CleanupScheduler) run() {
	if err := s.deletions.CleanupFailedDeletions(context.Background()); err != nil {
		log.Printf("deletion cleanup: %v", err)
	}
}
