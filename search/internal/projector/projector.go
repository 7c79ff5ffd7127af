// Package projector applies auction events to the search index.
//
// Projection is idempotent: created and updated events both upsert the full
// snapshot keyed by entity id, so redeliveries and create/update races
// converge on the same document. Snapshots older than the current document
// are dropped, so a deferred publish retried after later events cannot roll
// the index backwards. Deletes are terminal: once a document is tombstoned,
// later snapshots for the same id are ignored.
package projector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gavelworks/gavel-stack/common/events"
	"github.com/gavelworks/gavel-stack/common/logging"
	"github.com/gavelworks/gavel-stack/common/messaging"
	"github.com/gavelworks/gavel-stack/search/internal/metrics"
	"github.com/gavelworks/gavel-stack/search/internal/models"
	"github.com/gavelworks/gavel-stack/search/internal/storage"
)

type Projector struct {
	store storage.Store
	log   *logging.Logger
}

func New(store storage.Store, log *logging.Logger) *Projector {
	return &Projector{store: store, log: log}
}

// Handle processes one bus message. Errors are returned categorized so the
// bus can retry and, on the final attempt, classify the fault.
func (p *Projector) Handle(ctx context.Context, msg *messaging.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		return p.fail(events.CategoryValidation,
			fmt.Errorf("undecodable envelope on %s: %w", msg.Subject, err))
	}

	switch env.EventType {
	case events.TypeAuctionCreated, events.TypeAuctionUpdated:
		return p.applySnapshot(ctx, &env)
	case events.TypeAuctionDeleted:
		return p.applyDelete(ctx, &env)
	default:
		return p.fail(events.CategoryValidation,
			fmt.Errorf("unknown event type %q", env.EventType))
	}
}

func (p *Projector) applySnapshot(ctx context.Context, env *events.Envelope) error {
	snap, err := env.Snapshot()
	if err != nil {
		return p.fail(events.CategoryValidation, err)
	}

	if snap.ID == "" {
		return p.fail(events.CategoryValidation,
			errors.New("snapshot has no id"))
	}
	if snap.Model == "" {
		// The correctable category: the compensator rewrites the model and
		// republishes.
		return p.fail(events.CategoryValidation,
			fmt.Errorf("auction %s has empty model", snap.ID))
	}

	existing, err := p.store.Get(ctx, snap.ID)
	if err != nil && !errors.Is(err, storage.ErrItemNotFound) {
		return p.fail(events.CategoryStorage, err)
	}
	if existing != nil && existing.Deleted {
		metrics.ProjectionSkipped.Inc()
		p.log.InfoContext(ctx, "ignoring event for tombstoned auction",
			logging.AuctionID(snap.ID), logging.EventType(string(env.EventType)))
		return nil
	}
	if existing != nil && existing.UpdatedAt.After(snap.UpdatedAt) {
		// A redelivered or deferred snapshot older than the current
		// document; applying it would roll the read model backwards.
		metrics.ProjectionSkipped.Inc()
		p.log.InfoContext(ctx, "ignoring stale snapshot",
			logging.AuctionID(snap.ID), logging.EventType(string(env.EventType)))
		return nil
	}

	if err := p.store.Upsert(ctx, models.FromSnapshot(snap)); err != nil {
		return p.fail(events.CategoryStorage, err)
	}

	metrics.EventsProjected.WithLabelValues(string(env.EventType)).Inc()
	p.log.InfoContext(ctx, "projected auction",
		logging.AuctionID(snap.ID), logging.EventType(string(env.EventType)))
	return nil
}

func (p *Projector) applyDelete(ctx context.Context, env *events.Envelope) error {
	del, err := env.Deleted()
	if err != nil {
		return p.fail(events.CategoryValidation, err)
	}
	if del.ID == "" {
		return p.fail(events.CategoryValidation,
			errors.New("delete event has no id"))
	}

	if err := p.store.Tombstone(ctx, del.ID); err != nil {
		return p.fail(events.CategoryStorage, err)
	}

	metrics.EventsProjected.WithLabelValues(string(events.TypeAuctionDeleted)).Inc()
	p.log.InfoContext(ctx, "tombstoned auction", logging.AuctionID(del.ID))
	return nil
}

func (p *Projector) fail(category events.ErrorCategory, err error) error {
	metrics.ProjectionErrors.WithLabelValues(string(category)).Inc()
	return events.Categorize(category, err)
}
