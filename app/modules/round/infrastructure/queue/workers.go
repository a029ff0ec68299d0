package roundqueue

import (
	"context"
	"log/slog"
	"time"

	"github.com/riverqueue/river"

	rounddb "github.com/fairway-collective/links-backend/app/modules/round/infrastructure/repositories"
)

// ExpireRoundWorker deletes a round that still has no score cells when its
// expiry deadline passes. Rounds with at least one score are left alone.
type ExpireRoundWorker struct {
	river.WorkerDefaults[ExpireRoundArgs]
	repo   rounddb.Repository
	logger *slog.Logger
}

// NewExpireRoundWorker creates a worker for scheduled round expiry jobs.
func NewExpireRoundWorker(repo rounddb.Repository, logger *slog.Logger) *ExpireRoundWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpireRoundWorker{repo: repo, logger: logger}
}

// Work removes the round when it is still scoreless.
func (w *ExpireRoundWorker) Work(ctx context.Context, job *river.Job[ExpireRoundArgs]) error {
	deleted, err := w.repo.DeleteIfAbandoned(ctx, nil, job.Args.RoundID)
	if err != nil {
		return err
	}
	if deleted {
		w.logger.InfoContext(ctx, "Removed abandoned round",
			slog.Int64("round_id", job.Args.RoundID),
		)
	}
	return nil
}

// SweepAbandonedWorker is the hourly catch-all: it finds stale scoreless
// rounds directly, so a lost expiry job cannot leave one behind forever.
type SweepAbandonedWorker struct {
	river.WorkerDefaults[SweepAbandonedArgs]
	repo         rounddb.Repository
	logger       *slog.Logger
	abandonAfter time.Duration
}

// NewSweepAbandonedWorker creates the periodic sweep worker.
func NewSweepAbandonedWorker(repo rounddb.Repository, logger *slog.Logger, abandonAfter time.Duration) *SweepAbandonedWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if abandonAfter <= 0 {
		abandonAfter = 24 * time.Hour
	}
	return &SweepAbandonedWorker{repo: repo, logger: logger, abandonAfter: abandonAfter}
}

// Work deletes every scoreless round older than the abandon window.
func (w *SweepAbandonedWorker) Work(ctx context.Context, job *river.Job[SweepAbandonedArgs]) error {
	cutoff := time.Now().Add(-w.abandonAfter)
	ids, err := w.repo.ListAbandoned(ctx, nil, cutoff)
	if err != nil {
		return err
	}

	removed := 0
	for _, id := range ids {
		deleted, err := w.repo.DeleteIfAbandoned(ctx, nil, id)
		if err != nil {
			return err
		}
		if deleted {
			removed++
		}
	}

	if removed > 0 {
		w.logger.InfoContext(ctx, "Swept abandoned rounds", slog.Int("count", removed))
	}
	return nil
}
