package roundqueue

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"

	rounddb "github.com/fairway-collective/links-backend/app/modules/round/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/observability/attr"
)

// Metrics records queue operation outcomes.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// QueueService defines the contract for round maintenance job scheduling.
type QueueService interface {
	// ScheduleRoundExpiry queues a job that removes the round at runAt if it
	// still has no scores by then.
	ScheduleRoundExpiry(ctx context.Context, roundID int64, runAt time.Time) error
	// CancelRoundExpiry cancels any pending expiry job for a round.
	CancelRoundExpiry(ctx context.Context, roundID int64) error
	// HealthCheck verifies the queue service is healthy.
	HealthCheck(ctx context.Context) error
	// Start starts the queue service.
	Start(ctx context.Context) error
	// Stop stops the queue service.
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service handles round maintenance jobs using River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	db      *bun.DB
	metrics Metrics
}

// NewService creates a River-backed queue service for round maintenance.
// River requires pgx, so the service opens its own pool from the DSN while
// job-table lookups reuse the shared bun handle.
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, metrics Metrics, repo rounddb.Repository, abandonAfter time.Duration) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	ctxLogger.Info("Initializing round queue service")

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		ctxLogger.Error("Failed to parse DSN for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		ctxLogger.Error("Failed to create pgx pool for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewExpireRoundWorker(repo, ctxLogger))
	river.AddWorker(workers, NewSweepAbandonedWorker(repo, ctxLogger, abandonAfter))

	// The hourly sweep backs up the per-round expiry jobs.
	periodicJobs := []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(time.Hour),
			func() (river.JobArgs, *river.InsertOpts) {
				return SweepAbandonedArgs{}, &river.InsertOpts{Queue: QueueRounds}
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	}

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 50},
			QueueRounds:        {MaxWorkers: 25},
		},
		Workers:      workers,
		PeriodicJobs: periodicJobs,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	service := &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		db:      bunDB,
		metrics: metrics,
	}

	duration := time.Since(start)
	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	metrics.RecordOperationDuration(ctx, "initialize_service", "river", duration)

	ctxLogger.Info("Round queue service initialized successfully")
	return service, nil
}

// Start starts the River queue service.
func (s *Service) Start(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "start_service", "river")

	s.logger.Info("Starting round queue service")

	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service", "river")
		return fmt.Errorf("failed to start River client: %w", err)
	}

	duration := time.Since(start)
	s.metrics.RecordOperationSuccess(ctx, "start_service", "river")
	s.metrics.RecordOperationDuration(ctx, "start_service", "river", duration)

	s.logger.Info("Round queue service started successfully")
	return nil
}

// Stop stops the River queue service and releases its pool.
func (s *Service) Stop(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "stop_service", "river")

	s.logger.Info("Stopping round queue service")

	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", "river")
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.pool.Close()

	duration := time.Since(start)
	s.metrics.RecordOperationSuccess(ctx, "stop_service", "river")
	s.metrics.RecordOperationDuration(ctx, "stop_service", "river", duration)

	s.logger.Info("Round queue service stopped successfully")
	return nil
}

// ScheduleRoundExpiry queues the job that removes the round if it is still
// scoreless at runAt. ByArgs uniqueness prevents duplicate scheduling for
// the same round.
func (s *Service) ScheduleRoundExpiry(ctx context.Context, roundID int64, runAt time.Time) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "schedule_round_expiry", "river")

	ctxLogger := s.logger.With(
		attr.Int64("round_id", roundID),
		attr.String("operation", "schedule_round_expiry"),
	)

	jobResult, err := s.client.Insert(ctx, ExpireRoundArgs{RoundID: roundID}, &river.InsertOpts{
		Queue:       QueueRounds,
		ScheduledAt: runAt,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		ctxLogger.Error("Failed to schedule round expiry job", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "schedule_round_expiry", "river")
		return fmt.Errorf("failed to schedule round expiry job: %w", err)
	}

	duration := time.Since(start)
	s.metrics.RecordOperationSuccess(ctx, "schedule_round_expiry", "river")
	s.metrics.RecordOperationDuration(ctx, "schedule_round_expiry", "river", duration)

	ctxLogger.Info("Round expiry job scheduled",
		attr.Int64("job_id", jobResult.Job.ID),
	)
	return nil
}

// CancelRoundExpiry cancels pending expiry jobs for a round. Called when a
// round is deleted so the job does not fire for nothing.
func (s *Service) CancelRoundExpiry(ctx context.Context, roundID int64) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "cancel_round_expiry", "river")

	ctxLogger := s.logger.With(
		attr.Int64("round_id", roundID),
		attr.String("operation", "cancel_round_expiry"),
	)

	type riverJobRow struct {
		ID   int64  `bun:"id"`
		Kind string `bun:"kind"`
	}

	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind").
		Where("kind = ?", "round_expiry").
		Where("state IN (?, ?)", "available", "scheduled").
		Where("args->>'round_id' = ?", strconv.FormatInt(roundID, 10)).
		Scan(ctx, &jobs)
	if err != nil {
		ctxLogger.Error("Failed to query jobs for cancellation", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "cancel_round_expiry", "river")
		return fmt.Errorf("failed to query jobs for cancellation: %w", err)
	}

	cancelled := 0
	for _, job := range jobs {
		if _, err := s.client.JobCancel(ctx, job.ID); err != nil {
			ctxLogger.Warn("Failed to cancel job",
				attr.Int64("job_id", job.ID),
				attr.Error(err),
			)
			continue
		}
		cancelled++
	}

	duration := time.Since(start)
	s.metrics.RecordOperationSuccess(ctx, "cancel_round_expiry", "river")
	s.metrics.RecordOperationDuration(ctx, "cancel_round_expiry", "river", duration)

	if cancelled > 0 {
		ctxLogger.Info("Cancelled round expiry jobs", attr.Int("count", cancelled))
	}
	return nil
}

// HealthCheck verifies the queue service is healthy.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}

	var count int
	err := s.db.NewSelect().
		Table("river_job").
		ColumnExpr("COUNT(*)").
		Scan(ctx, &count)
	if err != nil {
		s.logger.Error("Queue service health check failed", attr.Error(err))
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}
