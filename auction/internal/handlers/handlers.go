package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gavelworks/gavel-stack/auction/internal/middleware"
	"github.com/gavelworks/gavel-stack/auction/internal/models"
	"github.com/gavelworks/gavel-stack/auction/internal/ratelimit"
	"github.com/gavelworks/gavel-stack/auction/internal/repository"
	"github.com/gavelworks/gavel-stack/auction/internal/service"
	"github.com/gavelworks/gavel-stack/common/httputil"
	"github.com/gavelworks/gavel-stack/common/logging"
	"github.com/gavelworks/gavel-stack/common/messaging"
)

type Handler struct {
	service *service.Service
	limiter ratelimit.RateLimiter
	bus     messaging.Client
	log     *logging.Logger
}

func NewHandler(service *service.Service, limiter ratelimit.RateLimiter, bus messaging.Client, log *logging.Logger) *Handler {
	return &Handler{service: service, limiter: limiter, bus: bus, log: log}
}

// HealthCheck handles health check requests. A lost bus connection reports
// degraded: the service can still serve reads but writes would stop
// propagating to the read model.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.bus != nil {
		if status := messaging.CheckClientHealth(r.Context(), h.bus); !status.Connected {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "degraded",
				"nats":   status,
			})
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// CreateAuction handles POST /auctions
func (h *Handler) CreateAuction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	seller := middleware.GetSeller(r.Context())
	if !h.allow(w, r, seller) {
		return
	}

	var req models.CreateAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := h.service.Create(r.Context(), seller, &req)
	if err != nil {
		h.writeServiceError(w, r, err, "create auction")
		return
	}

	w.Header().Set("Location", "/auctions/"+snap.ID)
	httputil.WriteJSON(w, http.StatusCreated, snap)
}

// GetAuction handles GET /auctions/:id
func (h *Handler) GetAuction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := h.auctionID(w, r)
	if !ok {
		return
	}

	snap, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "get auction")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, snap)
}

// ListAuctions handles GET /auctions
func (h *Handler) ListAuctions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req := &models.ListAuctionsRequest{}
	if date := r.URL.Query().Get("date"); date != "" {
		t, err := time.Parse(time.RFC3339, date)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "date must be RFC3339")
			return
		}
		req.UpdatedAfter = &t
	}

	snaps, err := h.service.List(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "list auctions")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, snaps)
}

// UpdateAuction handles PUT /auctions/:id
func (h *Handler) UpdateAuction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	seller := middleware.GetSeller(r.Context())
	if !h.allow(w, r, seller) {
		return
	}

	id, ok := h.auctionID(w, r)
	if !ok {
		return
	}

	var req models.UpdateAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := h.service.Update(r.Context(), seller, id, &req)
	if err != nil {
		h.writeServiceError(w, r, err, "update auction")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, snap)
}

// DeleteAuction handles DELETE /auctions/:id
func (h *Handler) DeleteAuction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	seller := middleware.GetSeller(r.Context())
	if !h.allow(w, r, seller) {
		return
	}

	id, ok := h.auctionID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), seller, id); err != nil {
		h.writeServiceError(w, r, err, "delete auction")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// auctionID extracts and parses the identifier from /auctions/:id paths.
func (h *Handler) auctionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := strings.TrimPrefix(r.URL.Path, "/auctions/")
	if raw == "" || strings.Contains(raw, "/") {
		httputil.WriteError(w, http.StatusBadRequest, "Auction ID required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid auction ID")
		return uuid.Nil, false
	}
	return id, true
}

// allow applies the per-seller write rate limit. A limiter failure is
// treated as allowed; losing redis must not take down writes.
func (h *Handler) allow(w http.ResponseWriter, r *http.Request, seller string) bool {
	allowed, err := h.limiter.Allow(r.Context(), seller)
	if err != nil {
		h.log.ErrorContext(r.Context(), "rate limiter unavailable",
			logging.Seller(seller), logging.Error(err))
		return true
	}
	if !allowed {
		h.log.WarnContext(r.Context(), "rate limit exceeded",
			logging.Seller(seller), logging.ClientIP(httputil.GetClientIP(r)))
		httputil.WriteError(w, http.StatusTooManyRequests, "Rate limit exceeded")
		return false
	}
	return true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		httputil.WriteError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, repository.ErrAuctionNotFound):
		httputil.WriteError(w, http.StatusNotFound, "Auction not found")
	case errors.Is(err, service.ErrForbidden):
		httputil.WriteError(w, http.StatusForbidden, "Not the auction's seller")
	default:
		h.log.ErrorContext(r.Context(), "request failed",
			logging.Path(r.URL.Path), logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to "+op)
	}
}
