// Package events publishes auction domain events to the bus.
//
// Publication happens after the authoritative store has committed, and never
// inside the same transaction. A publish failure therefore must not fail the
// client-visible write; instead the envelope is parked in a bounded deferred
// queue and retried with backoff until the bus recovers or the budget runs
// out, with every outcome logged and counted for reconciliation.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/gavelworks/gavel-stack/auction/internal/metrics"
	"github.com/gavelworks/gavel-stack/common/events"
	"github.com/gavelworks/gavel-stack/common/logging"
	"github.com/gavelworks/gavel-stack/common/messaging"
)

// Publisher emits exactly one domain event per logical auction change.
type Publisher interface {
	AuctionCreated(ctx context.Context, snap *events.AuctionSnapshot) error
	AuctionUpdated(ctx context.Context, snap *events.AuctionSnapshot) error
	AuctionDeleted(ctx context.Context, id string) error
}

// Bus is the slice of the JetStream client the publisher needs.
type Bus interface {
	PublishSync(ctx context.Context, subject string, data []byte) (*jetstream.PubAck, error)
}

const (
	defaultQueueSize   = 1024
	defaultMaxAttempts = 10
	defaultRetryWait   = 2 * time.Second
)

type deferred struct {
	subject string
	data    []byte
	entity  string
}

// EventPublisher publishes envelopes over JetStream with deferred retry.
type EventPublisher struct {
	bus         Bus
	log         *logging.Logger
	queue       chan deferred
	maxAttempts int
	retryWait   time.Duration
}

func NewEventPublisher(bus Bus, log *logging.Logger) *EventPublisher {
	return &EventPublisher{
		bus:         bus,
		log:         log,
		queue:       make(chan deferred, defaultQueueSize),
		maxAttempts: defaultMaxAttempts,
		retryWait:   defaultRetryWait,
	}
}

func (p *EventPublisher) AuctionCreated(ctx context.Context, snap *events.AuctionSnapshot) error {
	return p.publish(ctx, messaging.SubjectAuctionCreated, events.TypeAuctionCreated, snap.ID, snap)
}

func (p *EventPublisher) AuctionUpdated(ctx context.Context, snap *events.AuctionSnapshot) error {
	return p.publish(ctx, messaging.SubjectAuctionUpdated, events.TypeAuctionUpdated, snap.ID, snap)
}

func (p *EventPublisher) AuctionDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, messaging.SubjectAuctionDeleted, events.TypeAuctionDeleted, id, events.AuctionDeleted{ID: id})
}

func (p *EventPublisher) publish(ctx context.Context, subject string, eventType events.EventType, entityID string, payload any) error {
	env, err := events.NewEnvelope(eventType, entityID, payload)
	if err != nil {
		return err
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	if _, err := p.bus.PublishSync(ctx, subject, data); err != nil {
		metrics.PublishFailures.Inc()
		p.park(subject, entityID, data)
		return events.Categorize(events.CategoryPublish,
			fmt.Errorf("publish %s for %s deferred: %w", subject, entityID, err))
	}

	metrics.EventsPublished.WithLabelValues(string(eventType)).Inc()
	return nil
}

// park holds a failed envelope for the retry worker. The queue is bounded;
// when full the envelope is dropped and counted, and the read side recovers
// it on the next backfill from authoritative state.
func (p *EventPublisher) park(subject, entityID string, data []byte) {
	select {
	case p.queue <- deferred{subject: subject, data: data, entity: entityID}:
		metrics.PublishQueueDepth.Set(float64(len(p.queue)))
	default:
		metrics.PublishDropped.Inc()
		p.log.Error("deferred publish queue full, dropping envelope",
			logging.Subject(subject), logging.AuctionID(entityID))
	}
}

// Run drains the deferred queue until ctx is cancelled. Each envelope is
// retried with a fixed wait up to the attempt budget, then surfaced as a
// reconciliation item in the log.
func (p *EventPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-p.queue:
			metrics.PublishQueueDepth.Set(float64(len(p.queue)))
			p.retry(ctx, d)
		}
	}
}

func (p *EventPublisher) retry(ctx context.Context, d deferred) {
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.retryWait):
		}

		if _, err := p.bus.PublishSync(ctx, d.subject, d.data); err != nil {
			metrics.PublishRetries.Inc()
			p.log.Warn("deferred publish attempt failed",
				logging.Subject(d.subject), logging.AuctionID(d.entity),
				logging.Attempt(attempt), logging.Error(err))
			continue
		}

		p.log.Info("deferred publish succeeded",
			logging.Subject(d.subject), logging.AuctionID(d.entity), logging.Attempt(attempt))
		return
	}

	p.log.Error("deferred publish exhausted attempts, record needs reconciliation",
		logging.Subject(d.subject), logging.AuctionID(d.entity))
}
