package player

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"

	playerservice "github.com/fairway-collective/links-backend/app/modules/player/application"
	playerhandlers "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/handlers"
	playerjwt "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/jwt"
	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/observability"
	"github.com/fairway-collective/links-backend/config"
)

// Module represents the player module: identity resolution, profiles, stats.
type Module struct {
	config        *config.Config
	observability *observability.Observability
	repo          playerdb.Repository
	service       playerservice.Service
	handlers      *playerhandlers.PlayerHandlers
	middleware    func(http.Handler) http.Handler
	cancelFunc    context.CancelFunc
	logger        *slog.Logger
}

// NewModule creates a new player module. Routes are registered separately via
// RegisterRoutes because the identity middleware built here must be applied to
// the API router before any routes exist on it.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "Initializing player module")

	repo := playerdb.NewRepository(db)
	metrics := obs.Registry.OperationMetrics
	service := playerservice.NewPlayerService(repo, logger, metrics, tracer, db)
	handlers := playerhandlers.NewPlayerHandlers(service, logger, tracer)

	verifier := playerjwt.NewVerifier(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)
	middleware := playerhandlers.IdentityMiddleware(verifier, service, playerhandlers.IdentityConfig{
		DevMode: cfg.JWT.DevMode,
	}, logger)

	return &Module{
		config:        cfg,
		observability: obs,
		repo:          repo,
		service:       service,
		handlers:      handlers,
		middleware:    middleware,
		logger:        logger,
	}, nil
}

// IdentityMiddleware returns the request authentication middleware.
func (m *Module) IdentityMiddleware() func(http.Handler) http.Handler {
	return m.middleware
}

// RegisterRoutes attaches the player routes to the authenticated API router.
func (m *Module) RegisterRoutes(api chi.Router) {
	api.Route("/players", func(r chi.Router) {
		r.Get("/", m.handlers.HandleSearch)
		r.Get("/me", m.handlers.HandleGetMe)
		r.Patch("/me", m.handlers.HandleUpdateMe)
		r.Get("/{externalID}", m.handlers.HandleGetPlayer)
		r.Get("/{externalID}/stats", m.handlers.HandleGetStats)
		r.Get("/{externalID}/stats/chart", m.handlers.HandleGetStatsChart)
	})
}

// GetService returns the player service for use by other modules.
func (m *Module) GetService() playerservice.Service {
	return m.service
}

// GetRepository returns the player repository for cross-module lookups.
func (m *Module) GetRepository() playerdb.Repository {
	return m.repo
}

// Run keeps the module alive until the context is canceled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting player module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Player module goroutine stopped")
}

// Close stops the player module.
func (m *Module) Close() error {
	m.logger.Info("Stopping player module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	m.logger.Info("Player module stopped")
	return nil
}
