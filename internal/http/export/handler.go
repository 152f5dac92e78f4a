package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/export"
	"github.com/MrJamesThe3rd/shelflife/internal/http/auth"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
)

type Handler struct {
	svc   *export.Service
	clock func() time.Time
}

func NewHandler(svc *export.Service, clock func() time.Time) *Handler {
	if clock == nil {
		clock = time.Now
	}

	return &Handler{svc: svc, clock: clock}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.metadata)
	r.Get("/download", h.download)
}

type entryResponse struct {
	ID        uuid.UUID `json:"id"`
	Barcode   string    `json:"barcode"`
	Name      string    `json:"name,omitempty"`
	Expiry    string    `json:"expiry"`
	Tier      string    `json:"tier"`
	BadgeText string    `json:"badge_text"`
	Color     string    `json:"color"`
}

type exportMetadataResponse struct {
	Items  []entryResponse `json:"items"`
	Digest string          `json:"digest"`
}

// filter reads ?user= and ?expiring_by=; an authenticated user always wins.
func filter(r *http.Request) (item.ListFilter, error) {
	var f item.ListFilter

	u := auth.Username(r.Context())
	if u == "" {
		u = r.URL.Query().Get("user")
	}

	if u != "" {
		f.Username = new(u)
	}

	if s := r.URL.Query().Get("expiring_by"); s != "" {
		d, err := expiry.ParseISO(s)
		if err != nil {
			return f, err
		}

		f.ExpiringBy = new(d)
	}

	return f, nil
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	f, err := filter(r)
	if err != nil {
		http.Error(w, "invalid expiring_by, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	entries, err := h.svc.Export(r.Context(), f)
	if err != nil {
		slog.Error("failed to export items", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	resp := exportMetadataResponse{
		Items:  make([]entryResponse, 0, len(entries)),
		Digest: export.Digest(entries),
	}

	for _, e := range entries {
		resp.Items = append(resp.Items, entryResponse{
			ID:        e.Item.ID,
			Barcode:   e.Item.Barcode,
			Name:      e.Item.Name,
			Expiry:    e.Item.Expiry.String(),
			Tier:      e.Tier.Name(),
			BadgeText: e.Badge.Text,
			Color:     string(e.Badge.Color),
		})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	f, err := filter(r)
	if err != nil {
		http.Error(w, "invalid expiring_by, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	entries, err := h.svc.Export(r.Context(), f)
	if err != nil {
		slog.Error("failed to export items", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"shelf_%s.csv\"", h.clock().Format("20060102")))

	if err := export.WriteCSV(w, entries); err != nil {
		slog.Error("failed to write csv", "error", err)
	}
}
