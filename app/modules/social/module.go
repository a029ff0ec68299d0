package social

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"

	"github.com/fairway-collective/links-backend/app/eventbus"
	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	socialservice "github.com/fairway-collective/links-backend/app/modules/social/application"
	socialhandlers "github.com/fairway-collective/links-backend/app/modules/social/infrastructure/handlers"
	socialrepo "github.com/fairway-collective/links-backend/app/modules/social/infrastructure/repositories"
	socialrouter "github.com/fairway-collective/links-backend/app/modules/social/infrastructure/router"
	"github.com/fairway-collective/links-backend/app/shared/observability"
	"github.com/fairway-collective/links-backend/app/shared/utils"
	"github.com/fairway-collective/links-backend/config"
)

// Module represents the social module: friendships, friend requests, and the
// activity feed projected from round traffic.
type Module struct {
	config        *config.Config
	observability *observability.Observability
	repo          socialrepo.Repository
	service       socialservice.Service
	handlers      *socialhandlers.SocialHandlers
	router        *socialrouter.SocialRouter
	cancelFunc    context.CancelFunc
	logger        *slog.Logger
}

// NewModule creates a new social module, registers its routes on the
// authenticated API router, and attaches the activity projection to the
// watermill router.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	api chi.Router,
	db *bun.DB,
	playerRepo playerdb.Repository,
	eventBus eventbus.EventBus,
	watermillRouter *message.Router,
	helpers utils.Helpers,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "Initializing social module")

	repo := socialrepo.NewRepository(db)
	metrics := obs.Registry.OperationMetrics
	service := socialservice.NewSocialService(repo, playerRepo, logger, metrics, tracer, db)
	handlers := socialhandlers.NewSocialHandlers(service, logger, tracer)

	api.Route("/friends", func(r chi.Router) {
		r.Get("/", handlers.HandleListFriends)
		r.Get("/activity", handlers.HandleGetActivity)
		r.Get("/requests", handlers.HandleListFriendRequests)
		r.Post("/requests", handlers.HandleSendFriendRequest)
		r.Post("/requests/{requestID}/accept", handlers.HandleAcceptFriendRequest)
		r.Post("/requests/{requestID}/decline", handlers.HandleDeclineFriendRequest)
		r.Delete("/{externalID}", handlers.HandleRemoveFriend)
	})

	var projectionRouter *socialrouter.SocialRouter
	if watermillRouter != nil && eventBus != nil {
		projectionRouter = socialrouter.NewSocialRouter(logger, watermillRouter, eventBus, eventBus, cfg, helpers, tracer, obs.Registry.HandlerMetrics)
		if err := projectionRouter.Configure(ctx, service); err != nil {
			return nil, fmt.Errorf("failed to configure social router: %w", err)
		}
	}

	return &Module{
		config:        cfg,
		observability: obs,
		repo:          repo,
		service:       service,
		handlers:      handlers,
		router:        projectionRouter,
		logger:        logger,
	}, nil
}

// GetService returns the social service for use by other modules.
func (m *Module) GetService() socialservice.Service {
	return m.service
}

// GetRepository returns the social repository for cross-module lookups.
func (m *Module) GetRepository() socialrepo.Repository {
	return m.repo
}

// Run keeps the module alive until the context is canceled. The projection
// handlers run on the shared watermill router, which the app starts.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting social module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Social module goroutine stopped")
}

// Close stops the social module. The shared watermill router is closed by
// the app, not here.
func (m *Module) Close() error {
	m.logger.Info("Stopping social module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	m.logger.Info("Social module stopped")
	return nil
}
