package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type terminatedPurger interface {
	PurgeTerminated(ctx context.Context, cutoff time.Time) (int64, error)
}

type staleMessageSweeper interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Job collects the leftovers of terminated accounts and dead conversations.
// Account rows survive a grace period after soft delete so accidental
// terminations can be undone by support.
type Job struct {
	purger           terminatedPurger
	messages         staleMessageSweeper
	grace            time.Duration
	messageRetention time.Duration
	now              func() time.Time
	logger           *zap.Logger
}

func New(purger terminatedPurger, messages staleMessageSweeper, grace, messageRetention time.Duration, logger *zap.Logger) *Job {
	if grace <= 0 {
		grace = 30 * 24 * time.Hour
	}
	if messageRetention <= 0 {
		messageRetention = 90 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		purger:           purger,
		messages:         messages,
		grace:            grace,
		messageRetention: messageRetention,
		now:              time.Now,
		logger:           logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	now := j.now().UTC()

	if j.purger != nil {
		cutoff := now.Add(-j.grace)
		purged, err := j.purger.PurgeTerminated(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("purge terminated accounts: %w", err)
		}
		if purged > 0 {
			j.logger.Info("purged terminated accounts", zap.Int64("accounts", purged))
		}
	}

	if j.messages != nil {
		cutoff := now.Add(-j.messageRetention)
		deleted, err := j.messages.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("sweep stale messages: %w", err)
		}
		if deleted > 0 {
			j.logger.Info("swept stale messages", zap.Int64("messages", deleted))
		}
	}

	return nil
}

// Start runs the job on a fixed interval until the context is cancelled.
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Warn("cleanup pass failed", zap.Error(err))
			}
		}
	}
}
