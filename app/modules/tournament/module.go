package tournament

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"

	"github.com/fairway-collective/links-backend/app/eventbus"
	coursedb "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories"
	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	roundservice "github.com/fairway-collective/links-backend/app/modules/round/application"
	tournamentservice "github.com/fairway-collective/links-backend/app/modules/tournament/application"
	tournamenthandlers "github.com/fairway-collective/links-backend/app/modules/tournament/infrastructure/handlers"
	tournamentdb "github.com/fairway-collective/links-backend/app/modules/tournament/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/observability"
	"github.com/fairway-collective/links-backend/app/shared/utils"
	"github.com/fairway-collective/links-backend/config"
)

// Module represents the tournament module: multi-group events played on one
// course, with invites, pause control, and a cross-group leaderboard.
type Module struct {
	config        *config.Config
	observability *observability.Observability
	repo          tournamentdb.Repository
	service       tournamentservice.Service
	handlers      *tournamenthandlers.TournamentHandlers
	cancelFunc    context.CancelFunc
	logger        *slog.Logger
}

// NewModule creates a new tournament module and registers its routes on the
// authenticated API router. Group rounds are started and joined through the
// round service, so the round module must be wired first.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	api chi.Router,
	db *bun.DB,
	courseRepo coursedb.Repository,
	playerRepo playerdb.Repository,
	roundService roundservice.Service,
	eventBus eventbus.EventBus,
	helpers utils.Helpers,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "Initializing tournament module")

	repo := tournamentdb.NewRepository(db)
	metrics := obs.Registry.OperationMetrics
	service := tournamentservice.NewTournamentService(repo, courseRepo, playerRepo, roundService, eventBus, helpers, logger, metrics, tracer, db)
	handlers := tournamenthandlers.NewTournamentHandlers(service, logger, tracer)

	api.Route("/tournaments", func(r chi.Router) {
		r.Get("/", handlers.HandleListTournaments)
		r.Post("/", handlers.HandleCreateTournament)
		r.Get("/invites", handlers.HandleListInvites)
		r.Post("/invites/{inviteID}/accept", handlers.HandleAcceptInvite)
		r.Post("/invites/{inviteID}/decline", handlers.HandleDeclineInvite)
		r.Get("/{tournamentID}", handlers.HandleGetTournament)
		r.Patch("/{tournamentID}", handlers.HandleUpdateTournament)
		r.Delete("/{tournamentID}", handlers.HandleDeleteTournament)
		r.Get("/{tournamentID}/leaderboard", handlers.HandleGetLeaderboard)
		r.Post("/{tournamentID}/rounds", handlers.HandleStartGroupRound)
		r.Post("/{tournamentID}/rounds/{roundID}/join", handlers.HandleJoinGroupRound)
		r.Post("/{tournamentID}/pause", handlers.HandlePauseTournament)
		r.Post("/{tournamentID}/resume", handlers.HandleResumeTournament)
		r.Post("/{tournamentID}/finish", handlers.HandleFinishTournament)
		r.Post("/{tournamentID}/invites", handlers.HandleCreateInvite)
	})

	return &Module{
		config:        cfg,
		observability: obs,
		repo:          repo,
		service:       service,
		handlers:      handlers,
		logger:        logger,
	}, nil
}

// GetService returns the tournament service for use by other modules.
func (m *Module) GetService() tournamentservice.Service {
	return m.service
}

// GetRepository returns the tournament repository for cross-module lookups.
func (m *Module) GetRepository() tournamentdb.Repository {
	return m.repo
}

// Run keeps the module alive until the context is canceled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting tournament module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Tournament module goroutine stopped")
}

// Close stops the tournament module.
func (m *Module) Close() error {
	m.logger.Info("Stopping tournament module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	m.logger.Info("Tournament module stopped")
	return nil
}
