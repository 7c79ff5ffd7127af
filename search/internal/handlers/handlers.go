package handlers

import (
	"errors"
	"net/http"

	"github.com/gavelworks/gavel-stack/common/httputil"
	"github.com/gavelworks/gavel-stack/common/logging"
	"github.com/gavelworks/gavel-stack/common/messaging"
	"github.com/gavelworks/gavel-stack/search/internal/metrics"
	"github.com/gavelworks/gavel-stack/search/internal/models"
	"github.com/gavelworks/gavel-stack/search/internal/service"
)

type Handler struct {
	service *service.Service
	bus     messaging.Client
	log     *logging.Logger
}

func NewHandler(service *service.Service, bus messaging.Client, log *logging.Logger) *Handler {
	return &Handler{service: service, bus: bus, log: log}
}

// HealthCheck handles health check requests. A lost bus connection reports
// degraded: queries still work but the index is no longer being updated.
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

// Search handles GET /search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	page := httputil.ParsePagination(r, service.DefaultLimit, service.MaxLimit)
	req := &models.SearchRequest{
		Query:   q.Get("q"),
		Seller:  q.Get("seller"),
		OrderBy: q.Get("orderBy"),
		Page:    page.Page,
		Limit:   page.Limit,
	}

	resp, err := h.service.Search(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			metrics.SearchRequests.WithLabelValues("4xx").Inc()
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		metrics.SearchRequests.WithLabelValues("5xx").Inc()
		h.log.ErrorContext(r.Context(), "search failed", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	metrics.SearchRequests.WithLabelValues("2xx").Inc()
	httputil.WriteJSON(w, http.StatusOK, resp)
}
