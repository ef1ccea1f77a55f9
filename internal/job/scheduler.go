package job

import (
	"context"
	"log/slog"
	"subscription-tracker/internal/config"
	"subscription-tracker/internal/repository"
	"time"

	"github.com/robfig/cron/v3"
)

const sweepTimeout = time.Minute

// Scheduler runs the periodic maintenance jobs.
type Scheduler struct {
	cron                 *cron.Cron
	cfg                  config.Jobs
	userSubscriptionRepo repository.UserSubscriptionRepository
	logger               *slog.Logger
	now                  func() time.Time
}

func NewScheduler(cfg config.Jobs, userSubscriptionRepo repository.UserSubscriptionRepository, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))

	return &Scheduler{
		cron:                 cron.New(cron.WithChain(cron.Recover(cronLogger))),
		cfg:                  cfg,
		userSubscriptionRepo: userSubscriptionRepo,
		logger:               logger,
		now:                  func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	if !s.cfg.ExpiryEnabled || s.cfg.ExpirySpec == "" {
		s.logger.Info("expiry sweep disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.ExpirySpec, s.sweep); err != nil {
		return err
	}
	s.logger.Info("scheduled expiry sweep", "schedule", s.cfg.ExpirySpec)

	s.cron.Start()
	return nil
}

// Stop stops the scheduler; the returned context is done once running jobs
// have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := s.ExpireDue(ctx); err != nil {
		s.logger.Error("expiry sweep failed", "error", err)
	}
}

// ExpireDue marks active user subscriptions past their expiry as expired.
func (s *Scheduler) ExpireDue(ctx context.Context) (int64, error) {
	expired, err := s.userSubscriptionRepo.ExpireDue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.logger.Info("user subscriptions expired", "count", expired)
	}
	return expired, nil
}
