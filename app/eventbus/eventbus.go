// Package eventbus wraps the NATS JetStream connection behind watermill's
// publisher/subscriber interfaces so the router and services stay
// transport-agnostic.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	watermillnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/nats-io/nkeys"
)

// EventBus is the messaging surface handed to routers and services.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

type eventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	natsConn   *nc.Conn
	js         jetstream.JetStream
	logger     *slog.Logger
}

// NewEventBus connects to NATS, ensures the module streams exist, and returns
// a bus backed by watermill's JetStream publisher and subscriber. An empty
// nkeySeedFile means an unauthenticated connection.
func NewEventBus(ctx context.Context, natsURL string, nkeySeedFile string, logger *slog.Logger) (EventBus, error) {
	opts := []nc.Option{
		nc.RetryOnFailedConnect(true),
	}
	if nkeySeedFile != "" {
		opt, err := nkeyOption(nkeySeedFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}

	natsConn, err := nc.Connect(natsURL, opts...)
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

	if err := InitializeStreams(ctx, js, logger); err != nil {
		natsConn.Close()
		return nil, err
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	marshaller := &watermillnats.NATSMarshaler{}

	publisher, err := watermillnats.NewPublisher(
		watermillnats.PublisherConfig{
			URL:         natsURL,
			Marshaler:   marshaller,
			NatsOptions: opts,
			JetStream:   watermillnats.JetStreamConfig{AutoProvision: false},
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		logger.Error("Failed to create watermill publisher", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create watermill publisher: %w", err)
	}

	subscriber, err := watermillnats.NewSubscriber(
		watermillnats.SubscriberConfig{
			URL:         natsURL,
			Unmarshaler: marshaller,
			NatsOptions: opts,
			JetStream:   watermillnats.JetStreamConfig{AutoProvision: false},
		},
		watermillLogger,
	)
	if err != nil {
		publisher.Close()
		natsConn.Close()
		logger.Error("Failed to create watermill subscriber", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create watermill subscriber: %w", err)
	}

	return &eventBus{
		publisher:  publisher,
		subscriber: subscriber,
		natsConn:   natsConn,
		js:         js,
		logger:     logger,
	}, nil
}

// nkeyOption loads an nkey seed and builds the matching NATS auth option.
func nkeyOption(seedFile string) (nc.Option, error) {
	seed, err := os.ReadFile(seedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read nkey seed file: %w", err)
	}
	kp, err := nkeys.FromSeed(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse nkey seed: %w", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive nkey public key: %w", err)
	}
	return nc.Nkey(pub, func(nonce []byte) ([]byte, error) {
		return kp.Sign(nonce)
	}), nil
}

func (eb *eventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
	}
	if err := eb.publisher.Publish(topic, messages...); err != nil {
		eb.logger.Error("Failed to publish message",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.Info("Subscribing to topic", slog.String("topic", topic))
	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	return messages, nil
}

func (eb *eventBus) Close() error {
	var firstErr error
	if err := eb.publisher.Close(); err != nil {
		firstErr = err
	}
	if err := eb.subscriber.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	eb.natsConn.Close()
	return firstErr
}
