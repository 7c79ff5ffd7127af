// Package service implements the search query surface over the projection
// store.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gavelworks/gavel-stack/search/internal/models"
	"github.com/gavelworks/gavel-stack/search/internal/storage"
)

// ErrInvalidRequest marks caller mistakes that map to a 400 response.
var ErrInvalidRequest = errors.New("invalid search request")

// Page size bounds, shared with the HTTP layer's query parsing.
const (
	DefaultLimit = 24
	MaxLimit     = 100
)

var validOrderBy = map[string]bool{
	"":     true,
	"make": true,
	"new":  true,
}

type Service struct {
	store storage.Store
}

func NewService(store storage.Store) *Service {
	return &Service{store: store}
}

// Search normalizes the request and queries the store. Tombstoned documents
// never appear in results.
func (s *Service) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	if !validOrderBy[req.OrderBy] {
		return nil, fmt.Errorf("%w: orderBy %q", ErrInvalidRequest, req.OrderBy)
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = DefaultLimit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}

	return s.store.Search(ctx, req)
}
