package api

import (
	"net/http"

	"github.com/korjavin/nutrinorm/internal/auth"
)

// RegisterRoutes registers all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, apiKeys []string, h *Handler) {
	protected := auth.APIKeyMiddleware(apiKeys)

	// Public
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /metrics", h.Metrics)

	// Protected: X-API-Key header or api_key query parameter
	mux.Handle("GET /api/v1/food/barcode/{barcode}", protected(http.HandlerFunc(h.FoodByBarcode)))
	mux.Handle("GET /api/v1/food/search", protected(http.HandlerFunc(h.FoodSearch)))
	mux.Handle("POST /api/v1/normalize", protected(http.HandlerFunc(h.Normalize)))
	mux.Handle("GET /api/v1/corrections", protected(http.HandlerFunc(h.RecentCorrections)))
}
