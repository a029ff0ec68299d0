// Package server stands up the REST listener: a chi router carrying the
// shared middleware chain, an unauthenticated health endpoint, and an
// authenticated /api/v1 group the modules register their routes on.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/fairway-collective/links-backend/app/shared/observability"
	"github.com/fairway-collective/links-backend/config"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP listener and the routers modules attach to.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	api        chi.Router
	logger     *slog.Logger
}

// New builds the router and listener. identityMW guards everything under
// /api/v1 except the health endpoint; health answers without credentials so
// probes work before any player exists.
func New(
	cfg config.HTTPConfig,
	logger *slog.Logger,
	metrics *observability.HTTPMetrics,
	health *HealthHandler,
	identityMW func(http.Handler) http.Handler,
) *Server {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(RequestLogger(logger))
	router.Use(chimiddleware.Recoverer)
	if metrics != nil {
		router.Use(MetricsMiddleware(metrics))
	}
	router.Use(CORSMiddleware(cfg.AllowedOrigins))
	router.Use(RateLimitMiddleware(NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)))

	var api chi.Router
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", health.Handle)
		api = r.Group(func(g chi.Router) {
			g.Use(identityMW)
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Address,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		router: router,
		api:    api,
		logger: logger,
	}
}

// API returns the authenticated router modules register their routes on.
func (s *Server) API() chi.Router {
	return s.api
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", slog.String("address", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return <-errCh
}
