// Package api serves normalized nutrition over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/korjavin/nutrinorm/internal/audit"
	"github.com/korjavin/nutrinorm/internal/metrics"
	"github.com/korjavin/nutrinorm/internal/nutrition"
	"github.com/korjavin/nutrinorm/internal/off"
	"github.com/korjavin/nutrinorm/internal/store"
)

const (
	defaultSearchLimit      = 20
	maxSearchLimit          = 100
	defaultCorrectionsLimit = 50
	maxCorrectionsLimit     = 500
	maxNormalizeBody        = 1 << 20
)

// Products is the read side of the product store.
type Products interface {
	Get(barcode string) (store.Product, bool, error)
	Search(q string, limit int) ([]store.Product, error)
}

// Corrections reads audited serving corrections.
type Corrections interface {
	Recent(ctx context.Context, limit int) ([]audit.Correction, error)
	CountByReason(ctx context.Context) (map[string]int64, error)
}

// Handler holds dependencies for HTTP handlers. Corrections may be nil when
// the data directory has no audit database.
type Handler struct {
	Products    Products
	Manifest    *store.Manifest
	Corrections Corrections

	reg           *metrics.Registry
	lookupHist    *metrics.Histogram
	searchHist    *metrics.Histogram
	normalizeHist *metrics.Histogram
	outcomes      *metrics.Counter
}

// NewHandler wires the handlers to their dependencies and registers their
// metrics in reg.
func NewHandler(p Products, m *store.Manifest, c Corrections, reg *metrics.Registry) *Handler {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &Handler{
		Products:      p,
		Manifest:      m,
		Corrections:   c,
		reg:           reg,
		lookupHist:    reg.Register("barcode_get", metrics.BucketsLookup),
		searchHist:    reg.Register("search", metrics.BucketsSearch),
		normalizeHist: reg.Register("normalize", metrics.BucketsNormalize),
		outcomes:      reg.Counter("normalize_outcomes"),
	}
}

// foodResponse is the JSON shape of one normalized product.
type foodResponse struct {
	Barcode string `json:"barcode,omitempty"`
	Name    string `json:"name"`
	Brand   string `json:"brand,omitempty"`
	nutrition.Normalized
	ServingOptions []nutrition.ServingOption `json:"serving_options"`
}

func newFoodResponse(barcode, name, brand string, n nutrition.Normalized) foodResponse {
	return foodResponse{
		Barcode:        barcode,
		Name:           name,
		Brand:          brand,
		Normalized:     n,
		ServingOptions: nutrition.BuildServingOptions(n.Serving, name),
	}
}

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Health returns a liveness check with manifest metadata.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if m := h.Manifest; m != nil {
		resp["schema_version"] = m.SchemaVersion
		resp["build_time"] = m.BuildTime
		resp["product_count"] = m.ProductCount
		resp["outcomes"] = m.Outcomes
	}
	resp["corrections_log"] = h.Corrections != nil
	if h.Corrections != nil {
		counts, err := h.Corrections.CountByReason(r.Context())
		if err != nil {
			slog.Warn("corrections count failed", "error", err)
		} else {
			resp["corrections_by_reason"] = counts
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Metrics serves latency percentiles and outcome counters.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reg.Snapshot())
}

// FoodByBarcode returns a stored product with its serving options.
func (h *Handler) FoodByBarcode(w http.ResponseWriter, r *http.Request) {
	defer h.lookupHist.Since(time.Now())

	barcode := r.PathValue("barcode")
	slog.Debug("food by barcode request", "barcode", barcode)

	p, found, err := h.Products.Get(barcode)
	if err != nil {
		slog.Error("barcode lookup failed", "barcode", barcode, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "no product with barcode "+barcode)
		return
	}
	writeJSON(w, http.StatusOK, newFoodResponse(p.Barcode, p.Name, p.Brand, p.Nutrition))
}

// FoodSearch searches stored products by name and brand.
func (h *Handler) FoodSearch(w http.ResponseWriter, r *http.Request) {
	defer h.searchHist.Since(time.Now())

	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "missing query parameter 'q'")
		return
	}
	limit := queryLimit(r, defaultSearchLimit, maxSearchLimit)
	slog.Debug("food search request", "query", q, "limit", limit)

	products, err := h.Products.Search(q, limit)
	if err != nil {
		slog.Error("search failed", "query", q, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}

	results := make([]foodResponse, len(products))
	for i, p := range products {
		results[i] = newFoodResponse(p.Barcode, p.Name, p.Brand, p.Nutrition)
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Normalize runs the engine on a posted Open Food Facts product, bare or
// wrapped in the API envelope.
func (h *Handler) Normalize(w http.ResponseWriter, r *http.Request) {
	defer h.normalizeHist.Since(time.Now())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxNormalizeBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", "")
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	p, err := off.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	raw := p.Record()
	n, err := nutrition.Normalize(raw)
	if errors.Is(err, nutrition.ErrInsufficientData) {
		h.outcomes.Inc("insufficient_data")
		writeError(w, http.StatusUnprocessableEntity, "insufficient_data", "nutrition unavailable for this product")
		return
	}
	if err != nil {
		slog.Error("normalize failed", "barcode", p.Code, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}

	h.outcomes.Inc(string(n.Outcome))
	if n.Serving.WasCorrected {
		slog.Info("serving corrected", "barcode", p.Code, "reason", n.Check.Reason, "detail", n.Check.Detail)
	}
	writeJSON(w, http.StatusOK, newFoodResponse(p.Code, raw.ProductName, raw.Brand, n))
}

// RecentCorrections lists the newest audited serving corrections.
func (h *Handler) RecentCorrections(w http.ResponseWriter, r *http.Request) {
	if h.Corrections == nil {
		writeError(w, http.StatusNotFound, "not_found", "no corrections log in this data directory")
		return
	}
	limit := queryLimit(r, defaultCorrectionsLimit, maxCorrectionsLimit)

	rows, err := h.Corrections.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("corrections query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	if rows == nil {
		rows = []audit.Correction{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"corrections": rows})
}

// queryLimit reads ?limit=, falling back to def for missing or invalid
// values and capping at ceiling.
func queryLimit(r *http.Request, def, ceiling int) int {
	limit := def
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if n, err := strconv.Atoi(ls); err == nil && n > 0 {
			limit = n
		}
	}
	return min(limit, ceiling)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
