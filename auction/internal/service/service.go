// Package service implements the write-side operations on auctions.
//
// Every successful mutation persists to the authoritative store first and
// then hands exactly one domain event to the bus. The two steps never share
// a transaction; a publish failure is logged and retried by the publisher
// but does not fail the client-visible write.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	auctionevents "github.com/gavelworks/gavel-stack/auction/internal/events"
	"github.com/gavelworks/gavel-stack/auction/internal/models"
	"github.com/gavelworks/gavel-stack/auction/internal/repository"
	"github.com/gavelworks/gavel-stack/common/events"
	"github.com/gavelworks/gavel-stack/common/logging"
)

var (
	ErrForbidden = errors.New("caller is not the auction's seller")
)

// ValidationError carries a caller-facing message for a 400 response.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type Service struct {
	repo      repository.Repository
	publisher auctionevents.Publisher
	log       *logging.Logger
}

func NewService(repo repository.Repository, publisher auctionevents.Publisher, log *logging.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, log: log}
}

// Create validates the input, persists a new auction owned by seller, and
// emits an AuctionCreated event carrying the full snapshot.
// The seller identity comes from the authenticated request, never from the
// request body.
func (s *Service) Create(ctx context.Context, seller string, req *models.CreateAuctionRequest) (*events.AuctionSnapshot, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate auction id: %w", err)
	}

	now := time.Now().UTC()
	auction := &models.Auction{
		ID:           id,
		Seller:       seller,
		ReservePrice: req.ReservePrice,
		AuctionEnd:   req.AuctionEnd,
		Status:       models.StatusLive,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		Color:        req.Color,
		Mileage:      req.Mileage,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, auction); err != nil {
		return nil, err
	}

	snap := auction.Snapshot()
	s.publishAfterPersist(ctx, func() error {
		return s.publisher.AuctionCreated(context.WithoutCancel(ctx), snap)
	}, snap.ID)

	return snap, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*events.AuctionSnapshot, error) {
	auction, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return auction.Snapshot(), nil
}

func (s *Service) List(ctx context.Context, req *models.ListAuctionsRequest) ([]*events.AuctionSnapshot, error) {
	auctions, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	snaps := make([]*events.AuctionSnapshot, 0, len(auctions))
	for _, auction := range auctions {
		snaps = append(snaps, auction.Snapshot())
	}
	return snaps, nil
}

// Update applies the non-nil patch fields to the seller's auction and emits
// an AuctionUpdated event with the full post-update snapshot, never a diff.
func (s *Service) Update(ctx context.Context, seller string, id uuid.UUID, req *models.UpdateAuctionRequest) (*events.AuctionSnapshot, error) {
	auction, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if auction.Seller != seller {
		return nil, ErrForbidden
	}

	if req.Make != nil {
		auction.Make = *req.Make
	}
	if req.Model != nil {
		auction.Model = *req.Model
	}
	if req.Year != nil {
		auction.Year = *req.Year
	}
	if req.Color != nil {
		auction.Color = *req.Color
	}
	if req.Mileage != nil {
		auction.Mileage = *req.Mileage
	}
	auction.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, auction); err != nil {
		return nil, err
	}

	snap := auction.Snapshot()
	s.publishAfterPersist(ctx, func() error {
		return s.publisher.AuctionUpdated(context.WithoutCancel(ctx), snap)
	}, snap.ID)

	return snap, nil
}

// Delete removes the seller's auction and emits an AuctionDeleted tombstone
// carrying only the identifier.
func (s *Service) Delete(ctx context.Context, seller string, id uuid.UUID) error {
	auction, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if auction.Seller != seller {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publishAfterPersist(ctx, func() error {
		return s.publisher.AuctionDeleted(context.WithoutCancel(ctx), id.String())
	}, id.String())

	return nil
}

// publishAfterPersist runs the publish step once the store has committed.
// The publish uses a context detached from request cancellation: a client
// disconnect after commit must still attempt delivery. Failures are the
// publisher's to retry; here they are only made observable.
func (s *Service) publishAfterPersist(ctx context.Context, publish func() error, auctionID string) {
	if err := publish(); err != nil {
		s.log.ErrorContext(ctx, "event publish failed after persist",
			logging.AuctionID(auctionID), logging.Error(err))
	}
}

func validateCreate(req *models.CreateAuctionRequest) error {
	if req.Make == "" {
		return invalid("make is required")
	}
	if req.Year < 1885 || req.Year > time.Now().Year()+1 {
		return invalid("year %d is out of range", req.Year)
	}
	if req.Mileage < 0 {
		return invalid("mileage must not be negative")
	}
	if req.ReservePrice < 0 {
		return invalid("reserve price must not be negative")
	}
	if req.AuctionEnd.IsZero() || !req.AuctionEnd.After(time.Now()) {
		return invalid("auction end must be in the future")
	}
	return nil
}
