// Package utils holds the message construction helpers shared by every
// event-driven module.
package utils

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// TopicMetadataKey names the metadata entry carrying the publish subject for
// messages produced by transformation handlers. The event bus resolves it
// when the router hands it an empty topic.
const TopicMetadataKey = "topic"

// CausedByMetadataKey records the UUID of the message a result was derived from.
const CausedByMetadataKey = "caused_by"

// Helpers builds outgoing messages with correlation metadata carried over.
type Helpers interface {
	// CreateResultMessage builds a message derived from original, inheriting
	// its correlation ID and targeting topic.
	CreateResultMessage(original *message.Message, payload any, topic string) (*message.Message, error)
	// CreateNewMessage builds a fresh message with a new correlation ID.
	CreateNewMessage(payload any, topic string) (*message.Message, error)
	// UnmarshalPayload decodes a message payload into out.
	UnmarshalPayload(msg *message.Message, out any) error
}

type helpers struct{}

// NewHelpers returns the standard Helpers implementation.
func NewHelpers() Helpers {
	return helpers{}
}

func (helpers) CreateResultMessage(original *message.Message, payload any, topic string) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for %s: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(TopicMetadataKey, topic)

	if original != nil {
		msg.Metadata.Set(CausedByMetadataKey, original.UUID)
		if correlationID := middleware.MessageCorrelationID(original); correlationID != "" {
			middleware.SetCorrelationID(correlationID, msg)
		}
	}
	if middleware.MessageCorrelationID(msg) == "" {
		middleware.SetCorrelationID(watermill.NewUUID(), msg)
	}

	return msg, nil
}

func (h helpers) CreateNewMessage(payload any, topic string) (*message.Message, error) {
	return h.CreateResultMessage(nil, payload, topic)
}

func (helpers) UnmarshalPayload(msg *message.Message, out any) error {
	if err := json.Unmarshal(msg.Payload, out); err != nil {
		return fmt.Errorf("failed to unmarshal message %s: %w", msg.UUID, err)
	}
	return nil
}

// MiddlewareHelpers builds the router middleware shared by event routers.
type MiddlewareHelpers interface {
	CommonMetadataMiddleware(domain string) message.HandlerMiddleware
}

type middlewareHelper struct{}

// NewMiddlewareHelper returns the standard MiddlewareHelpers implementation.
func NewMiddlewareHelper() MiddlewareHelpers {
	return middlewareHelper{}
}

// CommonMetadataMiddleware stamps produced messages with the owning domain
// and processing time.
func (middlewareHelper) CommonMetadataMiddleware(domain string) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			produced, err := h(msg)
			if err != nil {
				return nil, err
			}
			now := time.Now().UTC().Format(time.RFC3339)
			for _, m := range produced {
				m.Metadata.Set("domain", domain)
				m.Metadata.Set("processed_at", now)
			}
			return produced, nil
		}
	}
}
