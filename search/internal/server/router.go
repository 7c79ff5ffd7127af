package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gavelworks/gavel-stack/common/middleware"
	"github.com/gavelworks/gavel-stack/search/internal/handlers"
)

// NewRouter assembles the search service routes. The surface is read-only.
// An empty allowedOrigins list permits any origin.
func NewRouter(handler *handlers.Handler, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", handler.HealthCheck)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/search", handler.Search)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	cors := middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
	})

	return middleware.RequestID(cors(mux))
}
