// Package eventbus connects the modules to NATS JetStream through watermill.
// The bus satisfies watermill's Publisher and Subscriber so routers can use
// it directly on both sides of a handler.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/nats-io/nkeys"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fairway-collective/links-backend/app/shared/observability"
	"github.com/fairway-collective/links-backend/app/shared/utils"
)

// Config holds the NATS connection settings.
type Config struct {
	URL string
	// NKeySeed authenticates the connection when set. The seed string is the
	// "SU..." form produced by nk -gen user.
	NKeySeed string
}

// EventBus is the messaging surface shared by services and watermill routers.
// Publish resolves the subject from message metadata when topic is empty, so
// transformation handlers can emit to multiple topics through one publisher.
type EventBus interface {
	message.Publisher
	message.Subscriber
	CreateStream(ctx context.Context, streamName string, subject string) error
	GetJetStream() jetstream.JetStream
	IsConnected() bool
}

type eventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	js         jetstream.JetStream
	natsConn   *nc.Conn
	logger     *slog.Logger
	metrics    *observability.EventBusMetrics
	tracer     trace.Tracer

	createdStreams map[string]bool
	streamMutex    sync.Mutex
}

// New connects to NATS and builds the watermill publisher and subscriber.
func New(
	ctx context.Context,
	cfg Config,
	logger *slog.Logger,
	appName string,
	metrics *observability.EventBusMetrics,
	tracer trace.Tracer,
) (EventBus, error) {
	natsOptions, err := connectOptions(cfg)
	if err != nil {
		return nil, err
	}

	natsConn, err := nc.Connect(cfg.URL, natsOptions...)
	if err != nil {
		logger.Error("Failed to connect to NATS", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		logger.Error("Failed to initialize JetStream", slog.Any("error", err))
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	marshaller := &nats.NATSMarshaler{}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         cfg.URL,
			Marshaler:   marshaller,
			NatsOptions: natsOptions,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		logger.Error("Failed to create watermill publisher", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:              cfg.URL,
			QueueGroupPrefix: appName,
			Unmarshaler:      marshaller,
			NatsOptions:      natsOptions,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		publisher.Close()
		logger.Error("Failed to create watermill subscriber", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create watermill subscriber: %w", err)
	}

	return &eventBus{
		publisher:      publisher,
		subscriber:     subscriber,
		js:             js,
		natsConn:       natsConn,
		logger:         logger,
		metrics:        metrics,
		tracer:         tracer,
		createdStreams: make(map[string]bool),
	}, nil
}

func connectOptions(cfg Config) ([]nc.Option, error) {
	opts := []nc.Option{nc.RetryOnFailedConnect(true)}
	if cfg.NKeySeed == "" {
		return opts, nil
	}

	keyPair, err := nkeys.FromSeed([]byte(cfg.NKeySeed))
	if err != nil {
		return nil, fmt.Errorf("failed to parse nkey seed: %w", err)
	}
	publicKey, err := keyPair.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive nkey public key: %w", err)
	}
	return append(opts, nc.Nkey(publicKey, keyPair.Sign)), nil
}

// Publish sends each message to topic, or to the subject named in the
// message's topic metadata when topic is empty.
func (eb *eventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		subject := topic
		if subject == "" {
			subject = msg.Metadata.Get(utils.TopicMetadataKey)
		}
		if subject == "" {
			return fmt.Errorf("message %s has no subject: empty topic and no topic metadata", msg.UUID)
		}

		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}

		if err := eb.publishOne(subject, msg); err != nil {
			return err
		}
	}
	return nil
}

func (eb *eventBus) publishOne(subject string, msg *message.Message) error {
	if eb.tracer != nil {
		_, span := eb.tracer.Start(msg.Context(), "eventbus.publish", trace.WithAttributes(
			attribute.String("subject", subject),
			attribute.String("message_id", msg.UUID),
		))
		defer span.End()
	}

	if err := eb.publisher.Publish(subject, msg); err != nil {
		if eb.metrics != nil {
			eb.metrics.RecordPublishFailure(subject)
		}
		eb.logger.Error("Failed to publish message",
			slog.String("subject", subject),
			slog.String("message_id", msg.UUID),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to publish message to %s: %w", subject, err)
	}

	if eb.metrics != nil {
		eb.metrics.RecordPublished(subject)
	}
	eb.logger.Debug("Message published",
		slog.String("subject", subject),
		slog.String("message_id", msg.UUID),
	)
	return nil
}

// Subscribe opens a JetStream subscription on topic.
func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.Info("Subscribing to subject", slog.String("subject", topic))

	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to subject %s: %w", topic, err)
	}

	if eb.metrics == nil {
		return messages, nil
	}

	counted := make(chan *message.Message)
	go func() {
		defer close(counted)
		for msg := range messages {
			eb.metrics.RecordConsumed(topic)
			counted <- msg
		}
	}()
	return counted, nil
}

// CreateStream ensures a stream exists covering subject, updating the subject
// list of an existing stream when needed.
func (eb *eventBus) CreateStream(ctx context.Context, streamName string, subject string) error {
	eb.streamMutex.Lock()
	defer eb.streamMutex.Unlock()

	if eb.createdStreams[streamName] {
		return nil
	}

	eb.logger.Info("Creating stream",
		slog.String("stream_name", streamName),
		slog.String("subject", subject),
	)

	stream, err := eb.js.Stream(ctx, streamName)
	if err != nil && err != jetstream.ErrStreamNotFound {
		return fmt.Errorf("failed to check if stream exists: %w", err)
	}

	if err == jetstream.ErrStreamNotFound {
		_, err = eb.js.CreateStream(ctx, jetstream.StreamConfig{
			Name:     streamName,
			Subjects: []string{subject},
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
		eb.logger.Info("Stream created", slog.String("stream_name", streamName))
	} else {
		streamInfo, err := stream.Info(ctx)
		if err != nil {
			return fmt.Errorf("failed to get stream info: %w", err)
		}

		found := false
		for _, existing := range streamInfo.Config.Subjects {
			if existing == subject {
				found = true
				break
			}
		}

		if !found {
			streamInfo.Config.Subjects = append(streamInfo.Config.Subjects, subject)
			if _, err := eb.js.UpdateStream(ctx, streamInfo.Config); err != nil {
				return fmt.Errorf("failed to update stream with new subject: %w", err)
			}
			eb.logger.Info("Stream updated with new subject",
				slog.String("stream_name", streamName),
				slog.String("subject", subject),
			)
		}
	}

	// Confirm the stream is visible before first use.
	retries := 5
	retryInterval := 100 * time.Millisecond
	for i := 0; i < retries; i++ {
		_, err = eb.js.Stream(ctx, streamName)
		if err == nil {
			break
		}
		if err != jetstream.ErrStreamNotFound {
			return fmt.Errorf("failed to check if stream exists: %w", err)
		}
		eb.logger.Warn("Stream not yet available, retrying",
			slog.String("stream_name", streamName),
			slog.Int("attempt", i+1),
		)
		time.Sleep(retryInterval)
	}
	if err != nil {
		return fmt.Errorf("failed to confirm stream creation after retries: %w", err)
	}

	eb.createdStreams[streamName] = true
	return nil
}

// GetJetStream exposes the JetStream context for stream administration.
func (eb *eventBus) GetJetStream() jetstream.JetStream {
	return eb.js
}

// IsConnected reports whether the underlying NATS connection is up.
func (eb *eventBus) IsConnected() bool {
	return eb.natsConn != nil && eb.natsConn.IsConnected()
}

// Close shuts down the watermill publisher and subscriber and the NATS
// connection.
func (eb *eventBus) Close() error {
	if eb.publisher != nil {
		if err := eb.publisher.Close(); err != nil {
			eb.logger.Error("Error closing NATS publisher", slog.Any("error", err))
		}
	}
	if eb.subscriber != nil {
		if err := eb.subscriber.Close(); err != nil {
			eb.logger.Error("Error closing NATS subscriber", slog.Any("error", err))
		}
	}
	if eb.natsConn != nil {
		eb.natsConn.Close()
	}
	return nil
}
