package socialhandlers

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	socialservice "github.com/fairway-collective/links-backend/app/modules/social/application"
	socialdb "github.com/fairway-collective/links-backend/app/modules/social/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/events"
	"github.com/fairway-collective/links-backend/app/shared/utils/handlerwrapper"
)

// EventHandlers is the contract for the activity projection: round traffic
// in, recorded-activity confirmations out.
type EventHandlers interface {
	HandleScoreSubmitted(ctx context.Context, payload *events.ScoreSubmittedPayloadV1) ([]handlerwrapper.Result, error)
	HandleRoundCompleted(ctx context.Context, payload *events.RoundCompletedPayloadV1) ([]handlerwrapper.Result, error)
}

// SocialEventHandlers projects round events into activity feed rows.
type SocialEventHandlers struct {
	service socialservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewSocialEventHandlers creates a new SocialEventHandlers instance.
func NewSocialEventHandlers(service socialservice.Service, logger *slog.Logger, tracer trace.Tracer) *SocialEventHandlers {
	return &SocialEventHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleScoreSubmitted stores a birdie-or-better event for registered
// players. Replays produce no output; the unique key already holds the row.
func (h *SocialEventHandlers) HandleScoreSubmitted(ctx context.Context, payload *events.ScoreSubmittedPayloadV1) ([]handlerwrapper.Result, error) {
	recorded, err := h.service.RecordScoreActivity(ctx, payload)
	if err != nil {
		return nil, err
	}
	return toRecordedResults(recorded), nil
}

// HandleRoundCompleted stores personal-best events for each registered
// participant with a prior comparable round.
func (h *SocialEventHandlers) HandleRoundCompleted(ctx context.Context, payload *events.RoundCompletedPayloadV1) ([]handlerwrapper.Result, error) {
	recorded, err := h.service.RecordRoundCompletion(ctx, payload)
	if err != nil {
		return nil, err
	}
	return toRecordedResults(recorded), nil
}

func toRecordedResults(recorded []socialdb.ActivityEvent) []handlerwrapper.Result {
	results := make([]handlerwrapper.Result, 0, len(recorded))
	for _, event := range recorded {
		results = append(results, handlerwrapper.Result{
			Topic: events.ActivityRecordedV1,
			Payload: events.ActivityRecordedPayloadV1{
				RoundID:    event.RoundID,
				PlayerID:   event.PlayerID,
				HoleNumber: event.HoleNumber,
				Kind:       event.Kind,
			},
		})
	}
	return results
}

var _ EventHandlers = (*SocialEventHandlers)(nil)
