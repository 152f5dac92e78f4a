package expiry

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/freshness"
)

type Handler struct {
	clock func() time.Time
}

func NewHandler(clock func() time.Time) *Handler {
	if clock == nil {
		clock = time.Now
	}

	return &Handler{clock: clock}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/parse", h.parse)
}

type parseRequest struct {
	Text string `json:"text"`
	// AsOf is the YYYY-MM-DD day to classify against; today when empty.
	AsOf string `json:"as_of,omitempty"`
}

type parseResponse struct {
	Date  string          `json:"date"`
	Rule  string          `json:"rule"`
	Tier  string          `json:"tier"`
	Days  int             `json:"days"`
	Badge freshness.Badge `json:"badge"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	asOf := expiry.DateOf(h.clock())

	if s := strings.TrimSpace(req.AsOf); s != "" {
		d, err := expiry.ParseISO(s)
		if err != nil {
			http.Error(w, "invalid as_of, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		asOf = d
	}

	w.Header().Set("Content-Type", "application/json")

	date, rule, ok := expiry.ParseWithRule(req.Text, asOf.Year)
	if !ok {
		w.WriteHeader(http.StatusUnprocessableEntity)

		if err := json.NewEncoder(w).Encode(errorResponse{Error: "no expiry date found in text"}); err != nil {
			slog.Error("failed to encode response", "error", err)
		}

		return
	}

	tier := freshness.Classify(date, asOf)
	days, _ := freshness.Days(tier)

	resp := parseResponse{
		Date:  date.String(),
		Rule:  rule,
		Tier:  tier.Name(),
		Days:  days,
		Badge: freshness.BadgeFor(tier),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
