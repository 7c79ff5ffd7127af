// Package events defines the shared, versioned message shapes exchanged
// between the auction write side and its consumers. Producers and consumers
// both import this package so payloads never drift apart.
package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType identifies the kind of state change an envelope describes.
type EventType string

const (
	TypeAuctionCreated EventType = "auction.created"
	TypeAuctionUpdated EventType = "auction.updated"
	TypeAuctionDeleted EventType = "auction.deleted"
)

// Envelope is the wire format for every message on the bus.
// Exceptions is only populated on fault-channel messages and carries at
// least the first classified failure from the consumer that gave up.
type Envelope struct {
	EventType  EventType       `json:"event_type"`
	EntityID   string          `json:"entity_id"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
	Exceptions []ExceptionInfo `json:"exceptions,omitempty"`
}

// ExceptionInfo describes one classified consumer failure.
type ExceptionInfo struct {
	Category ErrorCategory `json:"category"`
	Message  string        `json:"message"`
}

// AuctionSnapshot is the full, self-consistent state of an auction at
// emission time. Created and Updated events always carry a complete
// snapshot, never a diff, so consumers can apply it without prior state.
type AuctionSnapshot struct {
	ID           string    `json:"id"`
	Seller       string    `json:"seller"`
	ReservePrice int       `json:"reserve_price"`
	AuctionEnd   time.Time `json:"auction_end"`
	Status       string    `json:"status"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Color        string    `json:"color"`
	Mileage      int       `json:"mileage"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuctionDeleted carries only the identifier. Deletes are tombstones; the
// read side needs nothing else to retire a document.
type AuctionDeleted struct {
	ID string `json:"id"`
}

// NewEnvelope marshals payload and wraps it for publishing.
func NewEnvelope(eventType EventType, entityID string, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Envelope{
		EventType:  eventType,
		EntityID:   entityID,
		Payload:    data,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// Snapshot decodes the payload as an AuctionSnapshot.
func (e *Envelope) Snapshot() (*AuctionSnapshot, error) {
	var snap AuctionSnapshot
	if err := json.Unmarshal(e.Payload, &snap); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", e.EventType, err)
	}
	return &snap, nil
}

// Deleted decodes the payload as an AuctionDeleted tombstone.
func (e *Envelope) Deleted() (*AuctionDeleted, error) {
	var del AuctionDeleted
	if err := json.Unmarshal(e.Payload, &del); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", e.EventType, err)
	}
	return &del, nil
}

// AsFault returns a copy of the envelope with the failure classification
// attached, ready for publishing on the fault channel. The original
// payload is preserved so a compensator can correct and republish it.
func (e *Envelope) AsFault(category ErrorCategory, message string) *Envelope {
	fault := *e
	fault.Exceptions = append([]ExceptionInfo{{Category: category, Message: message}}, e.Exceptions...)
	return &fault
}
