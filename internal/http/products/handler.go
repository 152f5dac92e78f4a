package products

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/shelflife/internal/catalog"
	"github.com/MrJamesThe3rd/shelflife/internal/product"
)

type Handler struct {
	svc *catalog.Service
}

func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{barcode}", h.get)
	r.Put("/{barcode}", h.put)
}

type productResponse struct {
	Barcode       string           `json:"barcode"`
	Name          string           `json:"name,omitempty"`
	DisplayName   string           `json:"display_name"`
	Brand         string           `json:"brand,omitempty"`
	Quantity      string           `json:"quantity,omitempty"`
	QuantityValue *decimal.Decimal `json:"quantity_value,omitempty"`
	QuantityUnit  string           `json:"quantity_unit,omitempty"`
	ImageURL      string           `json:"image_url,omitempty"`
	Categories    string           `json:"categories,omitempty"`
	NutriScore    string           `json:"nutri_score,omitempty"`
}

type putProductRequest struct {
	Name          string           `json:"name"`
	Brand         string           `json:"brand"`
	Quantity      string           `json:"quantity"`
	QuantityValue *decimal.Decimal `json:"quantity_value"`
	QuantityUnit  string           `json:"quantity_unit"`
	ImageURL      string           `json:"image_url"`
	Categories    string           `json:"categories"`
	NutriScore    string           `json:"nutri_score"`
}

func toResponse(p *product.Product) productResponse {
	resp := productResponse{
		Barcode:      p.Barcode,
		Name:         p.Name,
		DisplayName:  p.DisplayName(),
		Brand:        p.Brand,
		Quantity:     p.Quantity,
		QuantityUnit: p.QuantityUnit,
		ImageURL:     p.ImageURL,
		Categories:   p.Categories,
		NutriScore:   p.NutriScore,
	}

	if p.QuantityValue.Valid {
		resp.QuantityValue = &p.QuantityValue.Decimal
	}

	return resp
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	barcode := strings.TrimSpace(chi.URLParam(r, "barcode"))

	p, err := h.svc.Lookup(r.Context(), barcode)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusBadGateway)

		return
	}

	writeJSON(w, http.StatusOK, toResponse(p))
}

// put records a product by hand, for barcodes Open Food Facts doesn't know.
func (h *Handler) put(w http.ResponseWriter, r *http.Request) {
	var req putProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p := &product.Product{
		Barcode:      strings.TrimSpace(chi.URLParam(r, "barcode")),
		Name:         strings.TrimSpace(req.Name),
		Brand:        req.Brand,
		Quantity:     req.Quantity,
		QuantityUnit: req.QuantityUnit,
		ImageURL:     req.ImageURL,
		Categories:   req.Categories,
		NutriScore:   strings.ToLower(req.NutriScore),
	}

	if req.QuantityValue != nil {
		p.QuantityValue = decimal.NewNullDecimal(*req.QuantityValue)
	}

	if p.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	if err := h.svc.Learn(r.Context(), p); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(p))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
