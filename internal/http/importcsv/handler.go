package importcsv

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/shelflife/internal/http/auth"
	"github.com/MrJamesThe3rd/shelflife/internal/importer"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
)

const maxUpload = 10 << 20

type Handler struct {
	importSvc *importer.Service
}

func NewHandler(importSvc *importer.Service) *Handler {
	return &Handler{importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type itemResponse struct {
	ID      uuid.UUID `json:"id"`
	Barcode string    `json:"barcode"`
	Name    string    `json:"name,omitempty"`
	Expiry  string    `json:"expiry"`
	SavedAt time.Time `json:"saved_at"`
}

type rejectedResponse struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type importResponse struct {
	Profile  string             `json:"profile"`
	Imported int                `json:"imported"`
	Items    []itemResponse     `json:"items"`
	Rejected []rejectedResponse `json:"rejected"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	username := auth.Username(r.Context())
	if username == "" {
		username = r.FormValue("username")
	}

	report, err := h.importSvc.Import(r.Context(), file, username)
	if err != nil {
		if errors.Is(err, importer.ErrUnknownFormat) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(report)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func toResponse(report *importer.Report) importResponse {
	resp := importResponse{
		Profile:  report.Profile,
		Imported: len(report.Imported),
		Items:    make([]itemResponse, 0, len(report.Imported)),
		Rejected: make([]rejectedResponse, 0, len(report.Rejected)),
	}

	for _, it := range report.Imported {
		resp.Items = append(resp.Items, toItem(it))
	}

	for _, rej := range report.Rejected {
		resp.Rejected = append(resp.Rejected, rejectedResponse{Line: rej.Line, Reason: rej.Reason})
	}

	return resp
}

func toItem(it *item.Item) itemResponse {
	return itemResponse{
		ID:      it.ID,
		Barcode: it.Barcode,
		Name:    it.Name,
		Expiry:  it.Expiry.String(),
		SavedAt: it.SavedAt,
	}
}
