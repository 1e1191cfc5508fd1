package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Stock routes. The stats route must be registered before {symbol}.
	api.HandleFunc("/stocks", handler.ListStocks).Methods(http.MethodGet)
	api.HandleFunc("/stocks/stats/overview", handler.GetStats).Methods(http.MethodGet)
	api.HandleFunc("/stocks/refresh", handler.RefreshStocks).Methods(http.MethodPost)
	api.HandleFunc("/stocks/{symbol}", handler.GetStock).Methods(http.MethodGet)

	// Refresh audit log
	api.HandleFunc("/refresh/history", handler.RefreshHistory).Methods(http.MethodGet)

	return r
}
