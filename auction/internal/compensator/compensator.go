// Package compensator handles fault-channel messages for auction events.
//
// A fault wraps the original envelope plus the classification recorded by
// the consumer that gave up on it. Known-correctable categories get a single
// compensation attempt: the offending field is rewritten to a safe default
// and the corrected event is republished on the original subject. If the
// corrected event faults again it arrives here as a new, independent fault;
// there is no loop. Everything else is logged as unrecoverable.
package compensator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	auctionevents "github.com/gavelworks/gavel-stack/auction/internal/events"
	"github.com/gavelworks/gavel-stack/auction/internal/metrics"
	"github.com/gavelworks/gavel-stack/common/events"
	"github.com/gavelworks/gavel-stack/common/logging"
	"github.com/gavelworks/gavel-stack/common/messaging"
)

// SafeModel is the known-safe default written over an empty model field.
const SafeModel = "FooBar"

// Action corrects a faulted envelope. It returns the envelope to republish,
// or an error when the fault cannot be corrected after all.
type Action func(env *events.Envelope) (*events.Envelope, error)

// Compensator routes faults to compensation actions by error category.
// The action set is open: callers may register additional categories.
type Compensator struct {
	bus     auctionevents.Bus
	log     *logging.Logger
	actions map[events.ErrorCategory]Action
}

// New returns a Compensator with the default policy: validation faults are
// corrected by FixEmptyModel, everything else is unrecoverable.
func New(bus auctionevents.Bus, log *logging.Logger) *Compensator {
	c := &Compensator{
		bus:     bus,
		log:     log,
		actions: make(map[events.ErrorCategory]Action),
	}
	c.Register(events.CategoryValidation, FixEmptyModel)
	return c
}

// Register installs or replaces the action for a category.
func (c *Compensator) Register(category events.ErrorCategory, action Action) {
	c.actions[category] = action
}

// HandleFault processes one fault-channel message. It always returns nil
// for policy outcomes (compensated or unrecoverable); only infrastructure
// failures, like the republish itself failing, propagate so the bus can
// redeliver the fault.
func (c *Compensator) HandleFault(ctx context.Context, msg *messaging.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		c.log.Error("discarding undecodable fault message",
			logging.Subject(msg.Subject), logging.Error(err))
		metrics.FaultsUnrecoverable.Inc()
		return nil
	}

	if len(env.Exceptions) == 0 {
		c.log.Error("fault message carries no exception info",
			logging.Subject(msg.Subject), logging.AuctionID(env.EntityID))
		metrics.FaultsUnrecoverable.Inc()
		return nil
	}

	category := env.Exceptions[0].Category
	action, ok := c.actions[category]
	if !ok {
		c.unrecoverable(&env, fmt.Sprintf("no compensation for category %q: %s",
			category, env.Exceptions[0].Message))
		return nil
	}

	corrected, err := action(&env)
	if err != nil {
		c.unrecoverable(&env, err.Error())
		return nil
	}

	// Republish as a clean event on the original subject.
	corrected.Exceptions = nil
	data, err := json.Marshal(corrected)
	if err != nil {
		return fmt.Errorf("marshal corrected envelope: %w", err)
	}

	subject := strings.TrimPrefix(msg.Subject, messaging.FaultPrefix)
	if _, err := c.bus.PublishSync(ctx, subject, data); err != nil {
		return fmt.Errorf("republish corrected event to %s: %w", subject, err)
	}

	metrics.FaultsCompensated.Inc()
	c.log.InfoContext(ctx, "republished corrected event",
		logging.Subject(subject),
		logging.AuctionID(env.EntityID),
		logging.EventType(string(env.EventType)))
	return nil
}

func (c *Compensator) unrecoverable(env *events.Envelope, reason string) {
	metrics.FaultsUnrecoverable.Inc()
	c.log.Error("unrecoverable fault, operator attention required",
		logging.AuctionID(env.EntityID),
		logging.EventType(string(env.EventType)),
		logging.Error(fmt.Errorf("%s", reason)))
}

// FixEmptyModel rewrites an empty model field in the snapshot payload to
// SafeModel, leaving every other field untouched.
func FixEmptyModel(env *events.Envelope) (*events.Envelope, error) {
	snap, err := env.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("fault payload is not a snapshot: %w", err)
	}

	if snap.Model != "" {
		return nil, fmt.Errorf("model %q is not empty, nothing to correct", snap.Model)
	}
	snap.Model = SafeModel

	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal corrected snapshot: %w", err)
	}

	corrected := *env
	corrected.Payload = payload
	return &corrected, nil
}
