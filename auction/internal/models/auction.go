// Package models defines the auction service's authoritative entity and
// its request/response shapes.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gavelworks/gavel-stack/common/events"
)

// Auction statuses.
const (
	StatusLive     = "live"
	StatusFinished = "finished"
)

// Auction is the authoritative record. It is owned exclusively by this
// service; other components only ever see snapshots carried by events or
// DTOs.
type Auction struct {
	ID           uuid.UUID `json:"id"`
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

// Snapshot converts the record into the shared event/DTO shape.
func (a *Auction) Snapshot() *events.AuctionSnapshot {
	return &events.AuctionSnapshot{
		ID:           a.ID.String(),
		Seller:       a.Seller,
		ReservePrice: a.ReservePrice,
		AuctionEnd:   a.AuctionEnd,
		Status:       a.Status,
		Make:         a.Make,
		Model:        a.Model,
		Year:         a.Year,
		Color:        a.Color,
		Mileage:      a.Mileage,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// CreateAuctionRequest is the POST /auctions body.
type CreateAuctionRequest struct {
	ReservePrice int       `json:"reserve_price"`
	AuctionEnd   time.Time `json:"auction_end"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Color        string    `json:"color"`
	Mileage      int       `json:"mileage"`
}

// UpdateAuctionRequest is the PUT /auctions/{id} body. Nil fields are left
// unchanged (partial-update semantics); the resulting event still carries
// the full post-update snapshot.
type UpdateAuctionRequest struct {
	Make    *string `json:"make"`
	Model   *string `json:"model"`
	Year    *int    `json:"year"`
	Color   *string `json:"color"`
	Mileage *int    `json:"mileage"`
}

// ListAuctionsRequest filters GET /auctions.
type ListAuctionsRequest struct {
	// UpdatedAfter, when set, restricts results to records updated after
	// the given instant. Used by the read side for incremental backfill.
	UpdatedAfter *time.Time
}
