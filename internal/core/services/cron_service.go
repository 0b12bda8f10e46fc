package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// CronService sweeps expired login attempts out of the attempt store so
// database-backed counters do not grow without bound.
type CronService struct {
	cron     *cron.Cron
	attempts AttemptStore
	window   time.Duration
}

// NewCronService creates a new cron service
func NewCronService(attempts AttemptStore, windowMinutes int) *CronService {
	return &CronService{
		cron:     cron.New(),
		attempts: attempts,
		window:   time.Duration(windowMinutes) * time.Minute,
	}
}

// Start schedules the sweep to run every five minutes
func (s *CronService) Start() {
	_, err := s.cron.AddFunc("@every 5m", s.sweep)
	if err != nil {
		log.Printf("Failed to schedule attempt sweep: %v", err)
		return
	}
	s.cron.Start()
}

// Stop stops the scheduler
func (s *CronService) Stop() {
	s.cron.Stop()
}

func (s *CronService) sweep() {
	cutoff := time.Now().Add(-s.window)
	if err := s.attempts.Sweep(context.Background(), cutoff); err != nil {
		log.Printf("Login attempt sweep failed: %v", err)
	}
}
