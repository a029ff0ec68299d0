// Package app is the composition root: it opens the database, connects the
// event bus, builds the watermill router, wires the five modules onto the
// HTTP server, and owns startup and shutdown order.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/fairway-collective/links-backend/app/eventbus"
	"github.com/fairway-collective/links-backend/app/modules/course"
	"github.com/fairway-collective/links-backend/app/modules/player"
	"github.com/fairway-collective/links-backend/app/modules/round"
	"github.com/fairway-collective/links-backend/app/modules/social"
	"github.com/fairway-collective/links-backend/app/modules/tournament"
	"github.com/fairway-collective/links-backend/app/server"
	"github.com/fairway-collective/links-backend/app/shared/observability"
	"github.com/fairway-collective/links-backend/app/shared/utils"
	"github.com/fairway-collective/links-backend/config"
)

// module is the lifecycle every domain module implements.
type module interface {
	Run(ctx context.Context, wg *sync.WaitGroup)
	Close() error
}

// App holds the wired application.
type App struct {
	Config          *config.Config
	Observability   *observability.Observability
	DB              *bun.DB
	EventBus        eventbus.EventBus
	WatermillRouter *message.Router
	HTTPServer      *server.Server

	PlayerModule     *player.Module
	CourseModule     *course.Module
	RoundModule      *round.Module
	TournamentModule *tournament.Module
	SocialModule     *social.Module

	logger  *slog.Logger
	modules []module
}

// Initialize wires every dependency. Modules are built in dependency order:
// player first because its identity middleware guards the API router, then
// course, round, tournament, and social.
func (a *App) Initialize(ctx context.Context, cfg *config.Config, obs *observability.Observability) error {
	a.Config = cfg
	a.Observability = obs
	a.logger = obs.Provider.Logger

	a.logger.InfoContext(ctx, "Initializing application")

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	a.DB = bun.NewDB(sqldb, pgdialect.New())
	if err := a.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	bus, err := eventbus.New(ctx, eventbus.Config{
		URL:      cfg.NATS.URL,
		NKeySeed: cfg.NATS.NKeySeed,
	}, a.logger, "links-backend", obs.Registry.EventBusMetrics, obs.Registry.Tracer)
	if err != nil {
		return fmt.Errorf("failed to connect event bus: %w", err)
	}
	a.EventBus = bus

	if err := eventbus.InitializeStreams(ctx, bus); err != nil {
		return err
	}

	watermillLogger := watermill.NewSlogLogger(a.logger)
	router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
	if err != nil {
		return fmt.Errorf("failed to create watermill router: %w", err)
	}
	metrics.NewPrometheusMetricsBuilder(obs.Registry.Prometheus, "links", "watermill").
		AddPrometheusRouterMetrics(router)
	a.WatermillRouter = router

	helpers := utils.NewHelpers()

	playerModule, err := player.NewModule(ctx, cfg, obs, a.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize player module: %w", err)
	}
	a.PlayerModule = playerModule

	health := server.NewHealthHandler(a.DB, bus, a.logger)
	a.HTTPServer = server.New(cfg.HTTP, a.logger, obs.Registry.HTTPMetrics, health, playerModule.IdentityMiddleware())
	api := a.HTTPServer.API()
	playerModule.RegisterRoutes(api)

	courseModule, err := course.NewModule(ctx, cfg, obs, api, a.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize course module: %w", err)
	}
	a.CourseModule = courseModule

	roundModule, err := round.NewModule(ctx, cfg, obs, api, a.DB,
		courseModule.GetRepository(), playerModule.GetRepository(), bus, helpers)
	if err != nil {
		return fmt.Errorf("failed to initialize round module: %w", err)
	}
	a.RoundModule = roundModule

	tournamentModule, err := tournament.NewModule(ctx, cfg, obs, api, a.DB,
		courseModule.GetRepository(), playerModule.GetRepository(), roundModule.GetService(), bus, helpers)
	if err != nil {
		return fmt.Errorf("failed to initialize tournament module: %w", err)
	}
	a.TournamentModule = tournamentModule

	socialModule, err := social.NewModule(ctx, cfg, obs, api, a.DB,
		playerModule.GetRepository(), bus, router, helpers)
	if err != nil {
		return fmt.Errorf("failed to initialize social module: %w", err)
	}
	a.SocialModule = socialModule

	a.modules = []module{playerModule, courseModule, roundModule, tournamentModule, socialModule}

	a.logger.InfoContext(ctx, "Application initialized")
	return nil
}

// Run starts the watermill router, the module goroutines, and the HTTP
// server, then blocks until the context is canceled and everything drains.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.WatermillRouter.Run(ctx); err != nil {
			a.logger.ErrorContext(ctx, "Watermill router stopped", slog.Any("error", err))
		}
	}()

	for _, m := range a.modules {
		wg.Add(1)
		go m.Run(ctx, &wg)
	}

	err := a.HTTPServer.Run(ctx)

	wg.Wait()
	return err
}

// Close shuts the application down in reverse of startup: modules first so
// in-flight work can still reach the bus and database, then the router, bus,
// and database.
func (a *App) Close() {
	for i := len(a.modules) - 1; i >= 0; i-- {
		if err := a.modules[i].Close(); err != nil {
			a.logger.Error("Failed to close module", slog.Any("error", err))
		}
	}

	if a.WatermillRouter != nil {
		if err := a.WatermillRouter.Close(); err != nil {
			a.logger.Error("Failed to close watermill router", slog.Any("error", err))
		}
	}

	if a.EventBus != nil {
		if err := a.EventBus.Close(); err != nil {
			a.logger.Error("Failed to close event bus", slog.Any("error", err))
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.logger.Error("Failed to close database", slog.Any("error", err))
		}
	}
}
