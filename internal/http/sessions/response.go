package sessions

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/shelflife/internal/acquisition"
	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/freshness"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
	"github.com/MrJamesThe3rd/shelflife/internal/product"
)

type productResponse struct {
	Barcode    string `json:"barcode"`
	Name       string `json:"name,omitempty"`
	Brand      string `json:"brand,omitempty"`
	Quantity   string `json:"quantity,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	Categories string `json:"categories,omitempty"`
	NutriScore string `json:"nutri_score,omitempty"`
}

type freshnessResponse struct {
	Tier  string          `json:"tier"`
	Days  int             `json:"days"`
	Badge freshness.Badge `json:"badge"`
}

type sessionResponse struct {
	ID         uuid.UUID          `json:"id"`
	Generation uint64             `json:"generation"`
	Stage      acquisition.Stage  `json:"stage"`
	Error      string             `json:"error,omitempty"`
	Busy       bool               `json:"busy"`
	CanAdvance bool               `json:"can_advance"`
	Committed  bool               `json:"committed"`
	Barcode    string             `json:"barcode,omitempty"`
	Product    *productResponse   `json:"product,omitempty"`
	ExpiryRaw  string             `json:"expiry_raw,omitempty"`
	Expiry     string             `json:"expiry,omitempty"`
	Freshness  *freshnessResponse `json:"freshness,omitempty"`
}

type committedResponse struct {
	ID      uuid.UUID `json:"id"`
	Barcode string    `json:"barcode"`
	Name    string    `json:"name,omitempty"`
	Expiry  string    `json:"expiry"`
	SavedAt time.Time `json:"saved_at"`
}

func toProduct(p *product.Product) *productResponse {
	if p == nil {
		return nil
	}

	return &productResponse{
		Barcode:    p.Barcode,
		Name:       p.Name,
		Brand:      p.Brand,
		Quantity:   p.Quantity,
		ImageURL:   p.ImageURL,
		Categories: p.Categories,
		NutriScore: p.NutriScore,
	}
}

func toResponse(id uuid.UUID, snap acquisition.Snapshot, asOf expiry.Date) sessionResponse {
	resp := sessionResponse{
		ID:         id,
		Generation: snap.Generation,
		Stage:      snap.Stage,
		Error:      snap.Err,
		Busy:       snap.Busy,
		CanAdvance: snap.CanAdvance,
		Committed:  snap.Committed,
		Barcode:    snap.Record.Barcode,
		Product:    toProduct(snap.Record.Product),
		ExpiryRaw:  snap.Record.RawExpiry,
		Expiry:     snap.Record.Expiry.String(),
	}

	if !snap.Record.Expiry.IsZero() {
		tier := freshness.Classify(snap.Record.Expiry, asOf)
		days, _ := freshness.Days(tier)

		resp.Freshness = &freshnessResponse{
			Tier:  tier.Name(),
			Days:  days,
			Badge: freshness.BadgeFor(tier),
		}
	}

	return resp
}

func toCommitted(it *item.Item) committedResponse {
	return committedResponse{
		ID:      it.ID,
		Barcode: it.Barcode,
		Name:    it.Name,
		Expiry:  it.Expiry.String(),
		SavedAt: it.SavedAt,
	}
}
