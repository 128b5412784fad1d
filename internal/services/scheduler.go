package services

import (
	"context"
	"fmt"
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/config"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// CampaignSweeper completes campaigns whose end date has passed
type CampaignSweeper interface {
	CompleteEndedCampaigns(ctx context.Context) (int, error)
}

// TokenCleaner purges expired and revoked refresh tokens
type TokenCleaner interface {
	Cleanup()
}

// Scheduler runs the periodic maintenance jobs
type Scheduler struct {
	sched gocron.Scheduler
}

func NewScheduler(cfg config.SchedulerConfig, campaigns CampaignSweeper, tokens TokenCleaner) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	// Every interval: complete campaigns past their end date
	_, err = sched.NewJob(
		gocron.DurationJob(cfg.CampaignSweepInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			completed, err := campaigns.CompleteEndedCampaigns(ctx)
			if err != nil {
				logrus.Errorf("[Scheduler] Campaign sweep failed: %v", err)
				return
			}
			if completed > 0 {
				logrus.Infof("[Scheduler] Completed %d ended campaigns", completed)
			}
		}),
		gocron.WithName("campaign-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule campaign sweep: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(cfg.TokenCleanupInterval),
		gocron.NewTask(tokens.Cleanup),
		gocron.WithName("token-cleanup"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule token cleanup: %w", err)
	}

	return &Scheduler{sched: sched}, nil
}

// Start begins running the jobs in the background
func (s *Scheduler) Start() {
	s.sched.Start()
	logrus.Info("Scheduler started")
}

// Stop waits for running jobs and shuts the scheduler down
func (s *Scheduler) Stop() error {
	if err := s.sched.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	logrus.Info("Scheduler stopped")
	return nil
}
