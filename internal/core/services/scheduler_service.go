package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"townhall-docflow/internal/adapters/persistence/repositories"
)

// SchedulerService runs the periodic maintenance jobs: deadline reminders
// and expired refresh token cleanup.
type SchedulerService struct {
	store        repositories.DocumentStore
	tokenRepo    repositories.RefreshTokenRepository
	notify       *NotificationService
	deadlineDays int
	cron         *cron.Cron
}

// NewSchedulerService creates a new scheduler service
func NewSchedulerService(
	store repositories.DocumentStore,
	tokenRepo repositories.RefreshTokenRepository,
	notify *NotificationService,
	deadlineDays int,
) *SchedulerService {
	if deadlineDays <= 0 {
		deadlineDays = 3
	}
	return &SchedulerService{
		store:        store,
		tokenRepo:    tokenRepo,
		notify:       notify,
		deadlineDays: deadlineDays,
		cron:         cron.New(),
	}
}

// Start registers and launches the cron jobs
func (s *SchedulerService) Start() error {
	// Deadline sweep every morning at 07:00
	if _, err := s.cron.AddFunc("0 7 * * *", s.remindDeadlines); err != nil {
		return err
	}
	// Token cleanup nightly at 03:00
	if _, err := s.cron.AddFunc("0 3 * * *", s.cleanupTokens); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("🚀 SchedulerService started")
	return nil
}

// Stop stops the cron scheduler and waits for running jobs
func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 SchedulerService stopped")
}

// remindDeadlines notifies about open documents whose deadline falls within
// the reminder window
func (s *SchedulerService) remindDeadlines() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().AddDate(0, 0, s.deadlineDays)
	docs, err := s.store.ListDeadlineApproaching(ctx, cutoff)
	if err != nil {
		log.Printf("❌ Deadline sweep failed: %v", err)
		return
	}

	for _, doc := range docs {
		if s.notify != nil {
			s.notify.NotifyDeadlineApproaching(doc)
		}
	}
	if len(docs) > 0 {
		log.Printf("⏰ Deadline reminders queued for %d documents", len(docs))
	}
}

func (s *SchedulerService) cleanupTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.tokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("❌ Refresh token cleanup failed: %v", err)
	}
}
