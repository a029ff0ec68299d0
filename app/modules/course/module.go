package course

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"

	courseservice "github.com/fairway-collective/links-backend/app/modules/course/application"
	coursehandlers "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/handlers"
	coursedb "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/observability"
	"github.com/fairway-collective/links-backend/config"
)

// Module represents the course module: the course catalog with holes and tees.
type Module struct {
	config        *config.Config
	observability *observability.Observability
	repo          coursedb.Repository
	service       courseservice.Service
	handlers      *coursehandlers.CourseHandlers
	cancelFunc    context.CancelFunc
	logger        *slog.Logger
}

// NewModule creates a new course module and registers its routes on the
// authenticated API router.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	api chi.Router,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "Initializing course module")

	repo := coursedb.NewRepository(db)
	metrics := obs.Registry.OperationMetrics
	service := courseservice.NewCourseService(repo, logger, metrics, tracer, db)
	handlers := coursehandlers.NewCourseHandlers(service, logger, tracer)

	api.Route("/courses", func(r chi.Router) {
		r.Get("/", handlers.HandleListCourses)
		r.Post("/", handlers.HandleCreateCourse)
		r.Get("/{courseID}", handlers.HandleGetCourse)
		r.Put("/{courseID}", handlers.HandleUpdateCourse)
		r.Delete("/{courseID}", handlers.HandleDeleteCourse)
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

// GetService returns the course service for use by other modules.
func (m *Module) GetService() courseservice.Service {
	return m.service
}

// GetRepository returns the course repository for cross-module lookups.
func (m *Module) GetRepository() coursedb.Repository {
	return m.repo
}

// Run keeps the module alive until the context is canceled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting course module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Course module goroutine stopped")
}

// Close stops the course module.
func (m *Module) Close() error {
	m.logger.Info("Stopping course module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	m.logger.Info("Course module stopped")
	return nil
}
