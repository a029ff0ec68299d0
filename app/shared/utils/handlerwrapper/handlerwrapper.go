// Package handlerwrapper adapts typed transformation handlers to watermill's
// message.HandlerFunc: unmarshal the payload, run the handler, and turn its
// results into outgoing messages that carry their topic in metadata.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fairway-collective/links-backend/app/shared/observability/attr"
	"github.com/fairway-collective/links-backend/app/shared/utils"
)

// Result is one outgoing message a handler wants published.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// ReturningMetrics records per-handler outcomes. A nil value disables recording.
type ReturningMetrics interface {
	RecordHandlerAttempt(ctx context.Context, handlerName string)
	RecordHandlerSuccess(ctx context.Context, handlerName string, duration time.Duration)
	RecordHandlerFailure(ctx context.Context, handlerName string)
}

// WrapTransformingTyped wraps a typed transformation handler into a watermill
// HandlerFunc. The handler receives the decoded payload and returns zero or
// more Results, each built into a message targeting its own topic.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	helpers utils.Helpers,
	metrics ReturningMetrics,
	handler func(ctx context.Context, payload *T) ([]Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := msg.Context()
		if correlationID := middleware.MessageCorrelationID(msg); correlationID != "" {
			ctx = attr.WithCorrelationID(ctx, correlationID)
		}

		if tracer != nil {
			var span trace.Span
			ctx, span = tracer.Start(ctx, handlerName, trace.WithAttributes(
				attribute.String("handler", handlerName),
				attribute.String("message_id", msg.UUID),
			))
			defer span.End()
		}

		if metrics != nil {
			metrics.RecordHandlerAttempt(ctx, handlerName)
		}
		start := time.Now()

		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, handlerName)
			}
			logger.ErrorContext(ctx, "Failed to unmarshal payload",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			return nil, fmt.Errorf("%s: failed to unmarshal payload: %w", handlerName, err)
		}

		results, err := handler(ctx, &payload)
		if err != nil {
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, handlerName)
			}
			logger.ErrorContext(ctx, "Handler failed",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.Error(err),
			)
			return nil, err
		}

		out := make([]*message.Message, 0, len(results))
		for _, res := range results {
			outMsg, createErr := helpers.CreateResultMessage(msg, res.Payload, res.Topic)
			if createErr != nil {
				if metrics != nil {
					metrics.RecordHandlerFailure(ctx, handlerName)
				}
				return nil, fmt.Errorf("%s: failed to create result message: %w", handlerName, createErr)
			}
			for k, v := range res.Metadata {
				outMsg.Metadata.Set(k, v)
			}
			outMsg.SetContext(ctx)
			out = append(out, outMsg)
		}

		if metrics != nil {
			metrics.RecordHandlerSuccess(ctx, handlerName, time.Since(start))
		}
		return out, nil
	}
}
