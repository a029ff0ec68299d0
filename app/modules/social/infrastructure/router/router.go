package socialrouter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/trace"

	"github.com/fairway-collective/links-backend/app/eventbus"
	socialservice "github.com/fairway-collective/links-backend/app/modules/social/application"
	socialhandlers "github.com/fairway-collective/links-backend/app/modules/social/infrastructure/handlers"
	"github.com/fairway-collective/links-backend/app/shared/events"
	"github.com/fairway-collective/links-backend/app/shared/utils"
	"github.com/fairway-collective/links-backend/app/shared/utils/handlerwrapper"
	"github.com/fairway-collective/links-backend/config"
)

// SocialRouter subscribes the activity projection to round traffic.
type SocialRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	config     *config.Config
	helper     utils.Helpers
	tracer     trace.Tracer
	metrics    handlerwrapper.ReturningMetrics
}

// NewSocialRouter creates a new SocialRouter.
func NewSocialRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	config *config.Config,
	helper utils.Helpers,
	tracer trace.Tracer,
	metrics handlerwrapper.ReturningMetrics,
) *SocialRouter {
	return &SocialRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		config:     config,
		helper:     helper,
		tracer:     tracer,
		metrics:    metrics,
	}
}

// Configure sets up the router with the projection handlers.
func (r *SocialRouter) Configure(routerCtx context.Context, socialService socialservice.Service) error {
	handlers := socialhandlers.NewSocialEventHandlers(socialService, r.logger, r.tracer)

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		utils.NewMiddlewareHelper().CommonMetadataMiddleware("social"),
		middleware.Recoverer,
	)

	if err := r.RegisterHandlers(routerCtx, handlers); err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}
	return nil
}

type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
	helper     utils.Helpers
	metrics    handlerwrapper.ReturningMetrics
}

// registerHandler registers a pure transformation-pattern handler with typed payload.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "social." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"", // Watermill reads topic from message metadata when empty
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.helper,
			deps.metrics,
			handler,
		),
	)
}

// RegisterHandlers registers the projection handlers.
func (r *SocialRouter) RegisterHandlers(ctx context.Context, handlers socialhandlers.EventHandlers) error {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		helper:     r.helper,
		metrics:    r.metrics,
	}

	registerHandler(deps, events.RoundScoreSubmittedV1, handlers.HandleScoreSubmitted)
	registerHandler(deps, events.RoundCompletedV1, handlers.HandleRoundCompleted)

	return nil
}

// Close stops the router.
func (r *SocialRouter) Close() error {
	return r.Router.Close()
}
