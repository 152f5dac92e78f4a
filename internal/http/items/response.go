package items

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/freshness"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
)

type freshnessResponse struct {
	Tier  string          `json:"tier"`
	Days  *int            `json:"days,omitempty"`
	Badge freshness.Badge `json:"badge"`
}

type itemResponse struct {
	ID            uuid.UUID         `json:"id"`
	Username      string            `json:"username,omitempty"`
	Barcode       string            `json:"barcode"`
	Name          string            `json:"name,omitempty"`
	Brand         string            `json:"brand,omitempty"`
	Quantity      string            `json:"quantity,omitempty"`
	QuantityValue *string           `json:"quantity_value,omitempty"`
	QuantityUnit  string            `json:"quantity_unit,omitempty"`
	ImageURL      string            `json:"image_url,omitempty"`
	Categories    string            `json:"categories,omitempty"`
	NutriScore    string            `json:"nutri_score,omitempty"`
	Expiry        string            `json:"expiry"`
	ExpiryRaw     string            `json:"expiry_raw,omitempty"`
	SavedAt       time.Time         `json:"saved_at"`
	Freshness     freshnessResponse `json:"freshness"`
}

func toFreshness(d, asOf expiry.Date) freshnessResponse {
	tier := freshness.Classify(d, asOf)

	resp := freshnessResponse{
		Tier:  tier.Name(),
		Badge: freshness.BadgeFor(tier),
	}

	if days, ok := freshness.Days(tier); ok {
		resp.Days = &days
	}

	return resp
}

func toResponse(it *item.Item, asOf expiry.Date) itemResponse {
	resp := itemResponse{
		ID:           it.ID,
		Username:     it.Username,
		Barcode:      it.Barcode,
		Name:         it.Name,
		Brand:        it.Brand,
		Quantity:     it.Quantity,
		QuantityUnit: it.QuantityUnit,
		ImageURL:     it.ImageURL,
		Categories:   it.Categories,
		NutriScore:   it.NutriScore,
		Expiry:       it.Expiry.String(),
		ExpiryRaw:    it.ExpiryRaw,
		SavedAt:      it.SavedAt,
		Freshness:    toFreshness(it.Expiry, asOf),
	}

	if it.QuantityValue.Valid {
		resp.QuantityValue = new(it.QuantityValue.Decimal.String())
	}

	return resp
}

func toResponseList(items []*item.Item, asOf expiry.Date) []itemResponse {
	resp := make([]itemResponse, len(items))
	for i, it := range items {
		resp[i] = toResponse(it, asOf)
	}

	return resp
}
