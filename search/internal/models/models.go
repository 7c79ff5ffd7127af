// Package models defines the search read model and its query shapes.
package models

import (
	"time"

	"github.com/gavelworks/gavel-stack/common/events"
)

// SearchItem is the projected auction document. It mirrors the event
// snapshot plus a tombstone flag: once Deleted is set the document never
// returns to the living set, regardless of stale updates still in flight.
type SearchItem struct {
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
	Deleted      bool      `json:"deleted"`
}

// FromSnapshot builds a living document from an event snapshot.
func FromSnapshot(snap *events.AuctionSnapshot) *SearchItem {
	return &SearchItem{
		ID:           snap.ID,
		Seller:       snap.Seller,
		ReservePrice: snap.ReservePrice,
		AuctionEnd:   snap.AuctionEnd,
		Status:       snap.Status,
		Make:         snap.Make,
		Model:        snap.Model,
		Year:         snap.Year,
		Color:        snap.Color,
		Mileage:      snap.Mileage,
		CreatedAt:    snap.CreatedAt,
		UpdatedAt:    snap.UpdatedAt,
	}
}

// SearchRequest filters GET /search.
type SearchRequest struct {
	// Query is matched full-text against make, model and color.
	Query string

	// Seller restricts results to one seller's auctions (exact match).
	Seller string

	// OrderBy is one of "make" (default) or "new" (most recently created).
	OrderBy string

	Page  int
	Limit int
}

// SearchResponse carries one page of living documents.
type SearchResponse struct {
	Results    []*SearchItem `json:"results"`
	Pagination Pagination    `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
