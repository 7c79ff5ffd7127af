package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gavelworks/gavel-stack/auction/internal/handlers"
	authmw "github.com/gavelworks/gavel-stack/auction/internal/middleware"
	"github.com/gavelworks/gavel-stack/common/middleware"
)

// NewRouter assembles the auction service routes. Reads are open; every
// mutation goes through the auth middleware. An empty allowedOrigins list
// permits any origin.
func NewRouter(handler *handlers.Handler, auth *authmw.AuthMiddleware, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", handler.HealthCheck)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/auctions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			auth.RequireAuth(handler.CreateAuction)(w, r)
		case http.MethodGet:
			handler.ListAuctions(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/auctions/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.GetAuction(w, r)
		case http.MethodPut:
			auth.RequireAuth(handler.UpdateAuction)(w, r)
		case http.MethodDelete:
			auth.RequireAuth(handler.DeleteAuction)(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	cors := middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
	})

	return middleware.RequestID(cors(mux))
}
