package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gavelworks/gavel-stack/auction/internal/models"
)

var ErrAuctionNotFound = errors.New("auction not found")

// Repository is the authoritative store for auctions. Only the auction
// service mutates it.
type Repository interface {
	Create(ctx context.Context, auction *models.Auction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Auction, error)
	List(ctx context.Context, req *models.ListAuctionsRequest) ([]*models.Auction, error)
	Update(ctx context.Context, auction *models.Auction) error
	Delete(ctx context.Context, id uuid.UUID) error
	Close()
}
