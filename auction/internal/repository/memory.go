package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/gavelworks/gavel-stack/auction/internal/models"
)

// InMemoryRepository is a map-backed Repository used in tests and local
// development without Postgres.
type InMemoryRepository struct {
	auctions map[uuid.UUID]*models.Auction
	mu       sync.RWMutex
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		auctions: make(map[uuid.UUID]*models.Auction),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, auction *models.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *auction
	r.auctions[auction.ID] = &cp
	return nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, exists := r.auctions[id]
	if !exists {
		return nil, ErrAuctionNotFound
	}
	cp := *auction
	return &cp, nil
}

func (r *InMemoryRepository) List(ctx context.Context, req *models.ListAuctionsRequest) ([]*models.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var auctions []*models.Auction
	for _, auction := range r.auctions {
		if req != nil && req.UpdatedAfter != nil && !auction.UpdatedAt.After(*req.UpdatedAfter) {
			continue
		}
		cp := *auction
		auctions = append(auctions, &cp)
	}

	sort.Slice(auctions, func(i, j int) bool {
		if auctions[i].Make != auctions[j].Make {
			return auctions[i].Make < auctions[j].Make
		}
		return auctions[i].ID.String() < auctions[j].ID.String()
	})

	return auctions, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, auction *models.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.auctions[auction.ID]; !exists {
		return ErrAuctionNotFound
	}
	cp := *auction
	r.auctions[auction.ID] = &cp
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.auctions[id]; !exists {
		return ErrAuctionNotFound
	}
	delete(r.auctions, id)
	return nil
}

func (r *InMemoryRepository) Close() {}
