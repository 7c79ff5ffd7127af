// Package nats provides JetStream support for durable, persistent messaging.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/gavelworks/gavel-stack/common/events"
	"github.com/gavelworks/gavel-stack/common/messaging"
)

// JetStreamClient extends Client with JetStream persistence capabilities.
// Durable consumers created through it get bounded redelivery: a handler
// failure NAKs the message for retry, and the final failed attempt reroutes
// the envelope to the subject's fault channel instead of retrying forever.
type JetStreamClient struct {
	*Client
	js jetstream.JetStream
}

// StreamConfig defines a JetStream stream configuration.
type StreamConfig struct {
	// Name is the stream name.
	Name string

	// Subjects are the subjects this stream captures.
	Subjects []string

	// MaxAge is the maximum age of messages in the stream.
	MaxAge time.Duration

	// MaxBytes is the maximum total size of the stream.
	MaxBytes int64

	// MaxMsgs is the maximum number of messages in the stream.
	MaxMsgs int64

	// Retention policy (LimitsPolicy, InterestPolicy, WorkQueuePolicy).
	Retention jetstream.RetentionPolicy

	// Storage type (FileStorage, MemoryStorage).
	Storage jetstream.StorageType
}

// ConsumerConfig defines a JetStream consumer configuration.
type ConsumerConfig struct {
	// Name is the durable consumer name.
	Name string

	// FilterSubject filters which messages this consumer receives.
	FilterSubject string

	// AckWait is time to wait for acknowledgment before redelivery.
	AckWait time.Duration

	// MaxDeliver is the attempt budget. Exhausting it is the only path
	// that produces a fault-channel message.
	MaxDeliver int

	// MaxAckPending is maximum unacknowledged messages.
	MaxAckPending int

	// RetryDelay is the NAK delay between failed attempts.
	RetryDelay time.Duration
}

// DefaultConsumerConfig returns sensible defaults for a consumer.
// MaxAckPending of 1 keeps consumption serial, which preserves publish
// order for events on the same subject (and therefore the same entity).
func DefaultConsumerConfig(name, filterSubject string) ConsumerConfig {
	return ConsumerConfig{
		Name:          name,
		FilterSubject: filterSubject,
		AckWait:       30 * time.Second,
		MaxDeliver:    3,
		MaxAckPending: 1,
		RetryDelay:    5 * time.Second,
	}
}

// NewJetStreamClient creates a JetStream-enabled client.
func NewJetStreamClient(cfg Config) (*JetStreamClient, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(client.conn)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &JetStreamClient{
		Client: client,
		js:     js,
	}, nil
}

// CreateOrUpdateStream creates or updates a stream.
func (c *JetStreamClient) CreateOrUpdateStream(ctx context.Context, cfg StreamConfig) (jetstream.Stream, error) {
	streamCfg := jetstream.StreamConfig{
		Name:      cfg.Name,
		Subjects:  cfg.Subjects,
		MaxAge:    cfg.MaxAge,
		MaxBytes:  cfg.MaxBytes,
		MaxMsgs:   cfg.MaxMsgs,
		Retention: cfg.Retention,
		Storage:   cfg.Storage,
	}

	stream, err := c.js.CreateOrUpdateStream(ctx, streamCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create/update stream %s: %w", cfg.Name, err)
	}

	return stream, nil
}

// CreateOrUpdateConsumer creates or updates a durable consumer.
func (c *JetStreamClient) CreateOrUpdateConsumer(ctx context.Context, streamName string, cfg ConsumerConfig) (jetstream.Consumer, error) {
	consumerCfg := jetstream.ConsumerConfig{
		Name:          cfg.Name,
		Durable:       cfg.Name,
		FilterSubject: cfg.FilterSubject,
		AckWait:       cfg.AckWait,
		MaxDeliver:    cfg.MaxDeliver,
		MaxAckPending: cfg.MaxAckPending,
		AckPolicy:     jetstream.AckExplicitPolicy,
	}

	stream, err := c.js.Stream(ctx, streamName)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream %s: %w", streamName, err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, consumerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create/update consumer %s: %w", cfg.Name, err)
	}

	return consumer, nil
}

// PublishSync publishes a message and waits for stream acknowledgment.
func (c *JetStreamClient) PublishSync(ctx context.Context, subject string, data []byte) (*jetstream.PubAck, error) {
	return c.js.Publish(ctx, subject, data)
}

// Consume starts consuming messages from a durable consumer with the given
// handler and retry policy. A handler error before the final attempt NAKs
// the message for redelivery after cfg.RetryDelay. On the final attempt the
// original envelope is republished on the subject's fault channel with the
// error classification attached, and the message is acknowledged so it never
// redelivers. Returns a stop function.
func (c *JetStreamClient) Consume(ctx context.Context, streamName string, cfg ConsumerConfig, handler messaging.MessageHandler) (func(), error) {
	consumer, err := c.CreateOrUpdateConsumer(ctx, streamName, cfg)
	if err != nil {
		return nil, err
	}

	consumeCtx, cancel := context.WithCancel(ctx)

	cons, err := consumer.Consume(func(msg jetstream.Msg) {
		m := &messaging.Message{
			Subject:   msg.Subject(),
			Data:      msg.Data(),
			Timestamp: time.Now(),
			Attempt:   1,
		}

		if meta, err := msg.Metadata(); err == nil {
			m.Attempt = int(meta.NumDelivered)
			m.Timestamp = meta.Timestamp
		}

		if headers := msg.Headers(); headers != nil {
			m.Metadata = make(map[string]string)
			for k := range headers {
				m.Metadata[k] = headers.Get(k)
			}
		}

		finishDelivery(consumeCtx, msg, m, handler(consumeCtx, m), cfg, c.publishFault)
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	return func() {
		cancel()
		cons.Stop()
	}, nil
}

// acker is the slice of jetstream.Msg needed to settle one delivery.
type acker interface {
	Ack() error
	NakWithDelay(delay time.Duration) error
}

// publishFunc publishes raw data on a subject with stream acknowledgment.
type publishFunc func(ctx context.Context, subject string, data []byte) error

func (c *JetStreamClient) publishFault(ctx context.Context, subject string, data []byte) error {
	_, err := c.PublishSync(ctx, subject, data)
	return err
}

// finishDelivery settles one delivery attempt against the retry policy.
// Success acks. A handler error NAKs for redelivery while attempts remain;
// on the final attempt the envelope is routed to the fault channel and the
// message is acked only once that publish succeeded, so a fault is never
// lost and exhausting the attempt budget stays the only path that produces
// one.
func finishDelivery(ctx context.Context, msg acker, m *messaging.Message, handlerErr error, cfg ConsumerConfig, publish publishFunc) {
	if handlerErr == nil {
		_ = msg.Ack()
		return
	}

	if cfg.MaxDeliver > 0 && m.Attempt >= cfg.MaxDeliver {
		if err := routeToFaultChannel(ctx, publish, m, handlerErr); err != nil {
			log.Printf("fault routing for %s failed, leaving message for redelivery: %v", m.Subject, err)
			_ = msg.NakWithDelay(cfg.RetryDelay)
			return
		}
		_ = msg.Ack()
		return
	}

	_ = msg.NakWithDelay(cfg.RetryDelay)
}

// routeToFaultChannel wraps the failed message's envelope with the error
// classification and publishes it on the fault subject for the compensator.
func routeToFaultChannel(ctx context.Context, publish publishFunc, m *messaging.Message, handlerErr error) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Data, &env); err != nil {
		// Not a recognizable envelope. Quote the raw bytes so the fault
		// envelope still marshals and the payload stays inspectable.
		quoted, _ := json.Marshal(string(m.Data))
		env = events.Envelope{Payload: quoted, OccurredAt: m.Timestamp}
	}

	fault := env.AsFault(events.CategoryOf(handlerErr), handlerErr.Error())
	data, err := json.Marshal(fault)
	if err != nil {
		return fmt.Errorf("marshal fault envelope: %w", err)
	}

	subject := messaging.FaultSubject(m.Subject)
	if err := publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish fault to %s: %w", subject, err)
	}

	log.Printf("routed failed message to %s after %d attempts: %v", subject, m.Attempt, handlerErr)
	return nil
}

// Predefined stream configurations for Gavel.
var (
	// AuctionEventsStream captures auction lifecycle events.
	AuctionEventsStream = StreamConfig{
		Name:      "AUCTION_EVENTS",
		Subjects:  []string{"auction.>"},
		MaxAge:    24 * time.Hour,
		MaxBytes:  100 * 1024 * 1024, // 100MB
		MaxMsgs:   100000,
		Retention: jetstream.InterestPolicy,
		Storage:   jetstream.FileStorage,
	}

	// AuctionFaultsStream captures fault-channel messages awaiting
	// compensation or operator review.
	AuctionFaultsStream = StreamConfig{
		Name:      "AUCTION_FAULTS",
		Subjects:  []string{"fault.auction.>"},
		MaxAge:    7 * 24 * time.Hour,
		MaxBytes:  100 * 1024 * 1024, // 100MB
		MaxMsgs:   100000,
		Retention: jetstream.InterestPolicy,
		Storage:   jetstream.FileStorage,
	}
)
