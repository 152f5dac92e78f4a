package items

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/http/auth"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
)

type Handler struct {
	svc   *item.Service
	clock func() time.Time
}

func NewHandler(svc *item.Service, clock func() time.Time) *Handler {
	if clock == nil {
		clock = time.Now
	}

	return &Handler{svc: svc, clock: clock}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
}

type createItemRequest struct {
	Username      string           `json:"username"`
	Barcode       string           `json:"barcode"`
	Name          string           `json:"name"`
	Brand         string           `json:"brand"`
	Quantity      string           `json:"quantity"`
	QuantityValue *decimal.Decimal `json:"quantity_value"`
	QuantityUnit  string           `json:"quantity_unit"`
	ImageURL      string           `json:"image_url"`
	Categories    string           `json:"categories"`
	NutriScore    string           `json:"nutri_score"`
	Expiry        string           `json:"expiry"`
	ExpiryRaw     string           `json:"expiry_raw"`
}

// username prefers the authenticated user over whatever the client sent.
func username(r *http.Request, fallback string) string {
	if u := auth.Username(r.Context()); u != "" {
		return u
	}

	return fallback
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var exp expiry.Date

	if s := strings.TrimSpace(req.Expiry); s != "" {
		d, err := expiry.ParseISO(s)
		if err != nil {
			http.Error(w, "invalid expiry, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		exp = d
	}

	params := item.AppendParams{
		Username:     username(r, req.Username),
		Barcode:      req.Barcode,
		Name:         req.Name,
		Brand:        req.Brand,
		Quantity:     req.Quantity,
		QuantityUnit: req.QuantityUnit,
		ImageURL:     req.ImageURL,
		Categories:   req.Categories,
		NutriScore:   req.NutriScore,
		Expiry:       exp,
		ExpiryRaw:    req.ExpiryRaw,
	}

	if req.QuantityValue != nil {
		params.QuantityValue = decimal.NewNullDecimal(*req.QuantityValue)
	}

	it, err := h.svc.Append(r.Context(), params)
	if err != nil {
		if errors.Is(err, item.ErrMissingBarcode) || errors.Is(err, item.ErrMissingExpiry) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		slog.Error("failed to append item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(it, expiry.DateOf(h.clock()))); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := item.ListFilter{}

	if u := username(r, r.URL.Query().Get("user")); u != "" {
		filter.Username = new(u)
	}

	if s := r.URL.Query().Get("expiring_by"); s != "" {
		if d, err := expiry.ParseISO(s); err == nil {
			filter.ExpiringBy = new(d)
		}
	}

	items, err := h.svc.List(r.Context(), filter)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(items, expiry.DateOf(h.clock()))); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	it, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if u := auth.Username(r.Context()); u != "" && it.Username != u {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(it, expiry.DateOf(h.clock()))); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
