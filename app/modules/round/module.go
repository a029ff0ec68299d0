package round

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"

	"github.com/fairway-collective/links-backend/app/eventbus"
	coursedb "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories"
	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	roundservice "github.com/fairway-collective/links-backend/app/modules/round/application"
	roundhandlers "github.com/fairway-collective/links-backend/app/modules/round/infrastructure/handlers"
	roundqueue "github.com/fairway-collective/links-backend/app/modules/round/infrastructure/queue"
	rounddb "github.com/fairway-collective/links-backend/app/modules/round/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/observability"
	"github.com/fairway-collective/links-backend/app/shared/observability/attr"
	"github.com/fairway-collective/links-backend/app/shared/utils"
	"github.com/fairway-collective/links-backend/config"
)

// Module represents the round module: scorecards, scoring, imports, and the
// maintenance queue that removes abandoned rounds.
type Module struct {
	config        *config.Config
	observability *observability.Observability
	repo          rounddb.Repository
	service       roundservice.Service
	handlers      *roundhandlers.RoundHandlers
	queue         *roundqueue.Service
	cancelFunc    context.CancelFunc
	logger        *slog.Logger
}

// NewModule creates a new round module, builds its maintenance queue, and
// registers its routes on the authenticated API router.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	api chi.Router,
	db *bun.DB,
	courseRepo coursedb.Repository,
	playerRepo playerdb.Repository,
	eventBus eventbus.EventBus,
	helpers utils.Helpers,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "Initializing round module")

	repo := rounddb.NewRepository(db)
	metrics := obs.Registry.OperationMetrics

	queue, err := roundqueue.NewService(ctx, db, logger, cfg.Postgres.DSN, metrics, repo, cfg.Rounds.AbandonAfter)
	if err != nil {
		return nil, fmt.Errorf("failed to create round queue service: %w", err)
	}

	service := roundservice.NewRoundService(repo, courseRepo, playerRepo, eventBus, helpers, queue, cfg.Rounds.AbandonAfter, logger, metrics, tracer, db)
	handlers := roundhandlers.NewRoundHandlers(service, logger, tracer)

	api.Route("/rounds", func(r chi.Router) {
		r.Get("/", handlers.HandleListRounds)
		r.Post("/", handlers.HandleStartRound)
		r.Post("/import", handlers.HandleImportScorecard)
		r.Get("/{roundID}", handlers.HandleGetRound)
		r.Delete("/{roundID}", handlers.HandleDeleteRound)
		r.Post("/{roundID}/scores", handlers.HandleSubmitScore)
		r.Post("/{roundID}/participants", handlers.HandleAddParticipants)
	})

	return &Module{
		config:        cfg,
		observability: obs,
		repo:          repo,
		service:       service,
		handlers:      handlers,
		queue:         queue,
		logger:        logger,
	}, nil
}

// GetService returns the round service for use by other modules.
func (m *Module) GetService() roundservice.Service {
	return m.service
}

// GetRepository returns the round repository for cross-module lookups.
func (m *Module) GetRepository() rounddb.Repository {
	return m.repo
}

// QueueHealthCheck reports whether the maintenance queue can reach its
// tables.
func (m *Module) QueueHealthCheck(ctx context.Context) error {
	return m.queue.HealthCheck(ctx)
}

// Run starts the maintenance queue and keeps the module alive until the
// context is canceled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting round module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if err := m.queue.Start(ctx); err != nil {
		m.logger.ErrorContext(ctx, "Failed to start round queue", attr.Error(err))
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Round module goroutine stopped")
}

// Close stops the maintenance queue and the module.
func (m *Module) Close() error {
	m.logger.Info("Stopping round module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if m.queue != nil {
		if err := m.queue.Stop(context.Background()); err != nil {
			m.logger.Error("Failed to stop round queue", attr.Error(err))
		}
	}

	m.logger.Info("Round module stopped")
	return nil
}
