package ideas

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/incdrops/server/internal/logger"
	"github.com/robfig/cron/v3"
)

type historyPruner interface {
	PruneHistory(ctx context.Context) (int64, error)
}

// trims every account's history on a cron schedule
type CleanupService struct {
	repo     historyPruner
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
}

// creates a new cleanup service, schedule is a standard cron spec or a
// descriptor such as @daily
func NewCleanupService(repo historyPruner, schedule string) (*CleanupService, error) {
	s := &CleanupService{
		repo:     repo,
		schedule: schedule,
		timeout:  time.Minute,
		cron:     cron.New(),
	}

	if _, err := s.cron.AddFunc(schedule, s.prune); err != nil {
		return nil, fmt.Errorf("invalid history prune schedule %q: %w", schedule, err)
	}

	return s, nil
}

// starts the scheduler in its own goroutine
func (s *CleanupService) Start() {
	logger.Info("starting history cleanup service", "schedule", s.schedule)
	s.cron.Start()
}

// stops the scheduler and waits for a running prune to finish
func (s *CleanupService) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("history cleanup service stopped")
}

func (s *CleanupService) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	removed, err := s.repo.PruneHistory(ctx)
	if err != nil {
		logger.ErrorErr(err, "failed to prune generation history")
		return
	}

	if removed > 0 {
		logger.Info("pruned generation history", "removed", removed)
	}
}
