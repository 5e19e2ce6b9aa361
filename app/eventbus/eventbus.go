package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/Black-And-White-Club/trivia-ledger/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// ErrNoTopic is returned when a message is published without a topic argument or metadata.
var ErrNoTopic = errors.New("message has no topic")

// EventBus publishes and subscribes program events. A publish with an empty topic routes each
// message by its "topic" metadata, which is how handler results reach their destination.
type EventBus interface {
	message.Publisher
	message.Subscriber
	// EnsureStream makes sure a JetStream stream captures subjects.
	EnsureStream(ctx context.Context, name string, subjects ...string) error
	// Conn returns the underlying NATS connection, or nil for the in-memory bus.
	Conn() *nc.Conn
}

type eventBus struct {
	publisher      message.Publisher
	subscriber     message.Subscriber
	js             jetstream.JetStream
	natsConn       *nc.Conn
	logger         *slog.Logger
	createdStreams map[string]bool
	streamMutex    sync.Mutex
}

// NewEventBus connects to NATS and builds watermill publisher and subscriber on core NATS
// subjects. JetStream streams are layered on top to retain events.
func NewEventBus(ctx context.Context, natsURL, queueGroup string, logger *slog.Logger) (EventBus, error) {
	natsConn, err := nc.Connect(natsURL, nc.RetryOnFailedConnect(true), nc.Name(queueGroup))
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to NATS", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	wmLogger := watermill.NewSlogLogger(logger)
	marshaler := &wmnats.NATSMarshaler{}
	natsOptions := []nc.Option{nc.RetryOnFailedConnect(true)}

	publisher, err := wmnats.NewPublisher(wmnats.PublisherConfig{
		URL:         natsURL,
		Marshaler:   marshaler,
		NatsOptions: natsOptions,
		JetStream:   wmnats.JetStreamConfig{Disabled: true},
	}, wmLogger)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to create watermill publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(wmnats.SubscriberConfig{
		URL:              natsURL,
		QueueGroupPrefix: queueGroup,
		Unmarshaler:      marshaler,
		NatsOptions:      natsOptions,
		JetStream:        wmnats.JetStreamConfig{Disabled: true},
	}, wmLogger)
	if err != nil {
		natsConn.Close()
		publisher.Close()
		return nil, fmt.Errorf("failed to create watermill subscriber: %w", err)
	}

	return &eventBus{
		publisher:      publisher,
		subscriber:     subscriber,
		js:             js,
		natsConn:       natsConn,
		logger:         logger,
		createdStreams: make(map[string]bool),
	}, nil
}

// NewInMemory builds an EventBus over a watermill go channel. Streams are no-ops.
func NewInMemory(logger *slog.Logger) EventBus {
	ps := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NewSlogLogger(logger))
	return &eventBus{
		publisher:      ps,
		subscriber:     ps,
		logger:         logger,
		createdStreams: make(map[string]bool),
	}
}

func (eb *eventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
		t := topic
		if t == "" {
			t = msg.Metadata.Get(handlerwrapper.MetadataTopic)
		}
		if t == "" {
			return ErrNoTopic
		}
		msg.Metadata.Set(handlerwrapper.MetadataTopic, t)

		if err := eb.publisher.Publish(t, msg); err != nil {
			eb.logger.Error("Failed to publish message",
				slog.String("topic", t),
				slog.String("message_id", msg.UUID),
				slog.Any("error", err),
			)
			return fmt.Errorf("failed to publish to %s: %w", t, err)
		}
		eb.logger.Debug("Message published",
			slog.String("topic", t),
			slog.String("message_id", msg.UUID),
		)
	}
	return nil
}

func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.InfoContext(ctx, "Subscribing to topic", slog.String("topic", topic))
	return eb.subscriber.Subscribe(ctx, topic)
}

func (eb *eventBus) Conn() *nc.Conn {
	return eb.natsConn
}

func (eb *eventBus) EnsureStream(ctx context.Context, name string, subjects ...string) error {
	if eb.js == nil {
		return nil
	}

	eb.streamMutex.Lock()
	defer eb.streamMutex.Unlock()

	if eb.createdStreams[name] {
		return nil
	}

	stream, err := eb.js.Stream(ctx, name)
	switch {
	case errors.Is(err, jetstream.ErrStreamNotFound):
		if _, err := eb.js.CreateStream(ctx, jetstream.StreamConfig{
			Name:     name,
			Subjects: subjects,
		}); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", name, err)
		}
		eb.logger.InfoContext(ctx, "Stream created", slog.String("stream", name), slog.Any("subjects", subjects))
	case err != nil:
		return fmt.Errorf("failed to check stream %s: %w", name, err)
	default:
		info, err := stream.Info(ctx)
		if err != nil {
			return fmt.Errorf("failed to get stream info: %w", err)
		}
		missing := false
		for _, s := range subjects {
			if !slices.Contains(info.Config.Subjects, s) {
				info.Config.Subjects = append(info.Config.Subjects, s)
				missing = true
			}
		}
		if missing {
			if _, err := eb.js.UpdateStream(ctx, info.Config); err != nil {
				return fmt.Errorf("failed to update stream %s: %w", name, err)
			}
			eb.logger.InfoContext(ctx, "Stream updated with new subjects", slog.String("stream", name))
		}
	}

	eb.createdStreams[name] = true
	return nil
}

// Close closes all NATS and watermill resources.
func (eb *eventBus) Close() error {
	var errs []error
	if eb.publisher != nil {
		if err := eb.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	// The in-memory bus shares one pub/sub for both sides.
	if eb.subscriber != nil && any(eb.subscriber) != any(eb.publisher) {
		if err := eb.subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	if eb.natsConn != nil {
		eb.natsConn.Close()
	}
	return errors.Join(errs...)
}
