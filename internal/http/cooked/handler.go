package cooked

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/shelflife/internal/cooked"
	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/freshness"
	"github.com/MrJamesThe3rd/shelflife/internal/http/auth"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
	"github.com/MrJamesThe3rd/shelflife/internal/ocr"
)

const maxImageSize = 10 << 20

type Handler struct {
	svc   *cooked.Service
	clock func() time.Time
}

func NewHandler(svc *cooked.Service, clock func() time.Time) *Handler {
	if clock == nil {
		clock = time.Now
	}

	return &Handler{svc: svc, clock: clock}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
}

type cookedResponse struct {
	ID               uuid.UUID       `json:"id"`
	Username         string          `json:"username,omitempty"`
	Barcode          string          `json:"barcode"`
	Name             string          `json:"name"`
	Category         string          `json:"category,omitempty"`
	Expiry           string          `json:"expiry"`
	ExpiryRaw        string          `json:"expiry_raw"`
	Storage          ocr.Storage     `json:"storage"`
	DaysAfterCooking int             `json:"days_after_cooking"`
	SavedAt          time.Time       `json:"saved_at"`
	Badge            freshness.Badge `json:"badge"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "missing image", http.StatusBadRequest)
		return
	}
	defer file.Close()

	storage, err := ocr.ParseStorage(strings.TrimSpace(r.FormValue("storage")))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cookedAt, err := parseCookedAt(r.FormValue("cookedAt"))
	if err != nil {
		http.Error(w, "invalid cookedAt, expected RFC 3339 or YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	username := auth.Username(r.Context())
	if username == "" {
		username = r.FormValue("username")
	}

	res, err := h.svc.Save(r.Context(), cooked.SaveParams{
		Username: username,
		Image:    file,
		Filename: header.Filename,
		Storage:  storage,
		CookedAt: cookedAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, cooked.ErrNoEstimate):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, item.ErrMissingExpiry), errors.Is(err, item.ErrMissingBarcode):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			slog.Error("failed to save cooked item", "error", err)
			http.Error(w, "cooked-food estimate unavailable", http.StatusBadGateway)
		}

		return
	}

	it := res.Item
	tier := freshness.Classify(it.Expiry, expiry.DateOf(h.clock()))

	resp := cookedResponse{
		ID:               it.ID,
		Username:         it.Username,
		Barcode:          it.Barcode,
		Name:             it.Name,
		Category:         it.Categories,
		Expiry:           it.Expiry.String(),
		ExpiryRaw:        it.ExpiryRaw,
		Storage:          storage,
		DaysAfterCooking: res.Estimate.DaysAfterCooking,
		SavedAt:          it.SavedAt,
		Badge:            freshness.BadgeFor(tier),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func parseCookedAt(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}

	d, err := expiry.ParseISO(s)
	if err != nil {
		return nil, err
	}

	return new(d.Time(time.UTC)), nil
}
